package domain

import "time"

// Interaction event kinds.
const (
	EventSelectMetric = "select_metric"
	EventSelectYear   = "select_year"
	EventHover        = "hover"
	EventRender       = "render"
)

// InteractionEvent records one user-visible change on a panel.
type InteractionEvent struct {
	Panel  string    `json:"panel"`
	Kind   string    `json:"kind"`
	Metric string    `json:"metric"`
	Year   int       `json:"year"`
	Region string    `json:"region,omitempty"`
	At     time.Time `json:"at"`
}

// NewInteractionEvent stamps an event with the package clock.
func NewInteractionEvent(panel, kind string, m Metric, year int, region string) InteractionEvent {
	return InteractionEvent{
		Panel:  panel,
		Kind:   kind,
		Metric: m.String(),
		Year:   year,
		Region: region,
		At:     clock.Now(),
	}
}
