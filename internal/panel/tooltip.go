package panel

import "github.com/couchcryptid/climate-choropleth/internal/scale"

// TooltipOffset is added to the pointer position so the tooltip does not
// cover the cursor.
var TooltipOffset = scale.Point{X: 30, Y: -30}

// TooltipView is a snapshot of the shared tooltip surface.
type TooltipView struct {
	Visible    bool    `json:"visible"`
	Owner      string  `json:"owner,omitempty"`
	Text       string  `json:"text,omitempty"`
	Background string  `json:"background,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// Tooltip is the single surface shared by both panels. The last Show wins;
// Move and Hide only apply for the current owner.
type Tooltip struct {
	view TooltipView
}

// NewTooltip returns a hidden tooltip.
func NewTooltip() *Tooltip {
	return &Tooltip{}
}

// Show takes ownership of the tooltip for owner and displays text at
// pointer plus TooltipOffset.
func (t *Tooltip) Show(owner, text, background string, pointer scale.Point) {
	t.view = TooltipView{
		Visible:    true,
		Owner:      owner,
		Text:       text,
		Background: background,
		X:          pointer.X + TooltipOffset.X,
		Y:          pointer.Y + TooltipOffset.Y,
	}
}

// Update replaces text and background if owner is displaying the tooltip.
// Position and ownership are unchanged.
func (t *Tooltip) Update(owner, text, background string) bool {
	if !t.view.Visible || t.view.Owner != owner {
		return false
	}
	t.view.Text = text
	t.view.Background = background
	return true
}

// Move repositions the tooltip if owner is displaying it.
func (t *Tooltip) Move(owner string, pointer scale.Point) bool {
	if !t.view.Visible || t.view.Owner != owner {
		return false
	}
	t.view.X = pointer.X + TooltipOffset.X
	t.view.Y = pointer.Y + TooltipOffset.Y
	return true
}

// Hide clears the tooltip if owner is displaying it. Another panel's
// tooltip is left alone.
func (t *Tooltip) Hide(owner string) bool {
	if !t.view.Visible || t.view.Owner != owner {
		return false
	}
	t.view = TooltipView{}
	return true
}

// View returns the current state.
func (t *Tooltip) View() TooltipView {
	return t.view
}
