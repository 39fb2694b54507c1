package panel

import (
	"fmt"
	"strconv"

	"github.com/couchcryptid/climate-choropleth/internal/domain"
	"github.com/couchcryptid/climate-choropleth/internal/scale"
)

// Hover emphasizes region, shows its value in the shared tooltip near
// pointer and marks the value on the legend. Regions without a value show
// "no data" and no marker.
func (p *Panel) Hover(region string, pointer scale.Point) error {
	switch p.state {
	case Error:
		return ErrPanelFailed
	case Loading:
		return ErrNotReady
	}
	if !p.hasRegion(region) {
		return fmt.Errorf("hover %q: %w", region, domain.ErrRegionNotFound)
	}
	p.applyHover(region, pointer)
	p.metrics.Hovers.WithLabelValues(p.id).Inc()
	p.publish(domain.EventHover, region)
	return nil
}

func (p *Panel) applyHover(region string, pointer scale.Point) {
	text, background, marker := p.hoverContent(region)
	p.marker = marker
	p.hovering = true
	p.hovered = region
	p.tooltip.Show(p.id, text, background, pointer)
}

// refreshHover updates the tooltip and marker after a re-render. Once
// another panel has taken the tooltip only the marker is cleared.
func (p *Panel) refreshHover() {
	text, background, marker := p.hoverContent(p.hovered)
	if !p.tooltip.Update(p.id, text, background) {
		p.marker = nil
		return
	}
	p.marker = marker
}

func (p *Panel) hoverContent(region string) (text, background string, marker *Marker) {
	spec := p.metric.Spec()
	s := p.byMetric[p.metric].scale

	text = region + ": no data"
	background = scale.NoDataColor
	if v, ok := p.row.Value(region); ok {
		text = fmt.Sprintf("%s: %s %s", region, strconv.FormatFloat(v, 'f', -1, 64), spec.Unit)
		background = s.HexFor(v)
		marker = &Marker{Points: s.Marker(v), Fill: background}
	}
	return text, background, marker
}

// PointerMove makes the tooltip follow the pointer while a region is
// hovered. It is a no-op otherwise.
func (p *Panel) PointerMove(pointer scale.Point) error {
	if p.state == Error {
		return ErrPanelFailed
	}
	if !p.hovering {
		return nil
	}
	p.tooltip.Move(p.id, pointer)
	return nil
}

// HoverEnd restores full opacity, removes the legend marker and hides the
// tooltip if this panel owns it. It never fails.
func (p *Panel) HoverEnd() {
	p.hovering = false
	p.hovered = ""
	p.marker = nil
	p.tooltip.Hide(p.id)
}

// Hovered returns the hovered region name.
func (p *Panel) Hovered() (string, bool) {
	return p.hovered, p.hovering
}

func (p *Panel) hasRegion(name string) bool {
	for _, r := range p.regions {
		if r.Name == name {
			return true
		}
	}
	return false
}
