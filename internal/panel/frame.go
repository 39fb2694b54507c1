package panel

import (
	"github.com/couchcryptid/climate-choropleth/internal/domain"
	"github.com/couchcryptid/climate-choropleth/internal/scale"
)

// RegionView is one region as the rendering layer draws it.
type RegionView struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Fill    string   `json:"fill"`
	Opacity float64  `json:"opacity"`
	Value   *float64 `json:"value,omitempty"`
}

// Marker is the legend indicator for the hovered value.
type Marker struct {
	Points [3]scale.Point `json:"points"`
	Fill   string         `json:"fill"`
}

// MetricOption is one entry of the metric selector.
type MetricOption struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Enabled  bool   `json:"enabled"`
	Selected bool   `json:"selected"`
	Error    string `json:"error,omitempty"`
}

// Diagnostics lists name mismatches between the boundary set and one
// metric table. Mismatched regions render as no data.
type Diagnostics struct {
	RegionsWithoutColumn []string `json:"regions_without_column,omitempty"`
	ColumnsWithoutRegion []string `json:"columns_without_region,omitempty"`
}

// Empty reports whether every region matched a column and vice versa.
func (d Diagnostics) Empty() bool {
	return len(d.RegionsWithoutColumn) == 0 && len(d.ColumnsWithoutRegion) == 0
}

// Frame is the complete visual state of one panel.
type Frame struct {
	Panel   string         `json:"panel"`
	State   string         `json:"state"`
	Error   string         `json:"error,omitempty"`
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Metric  string         `json:"metric"`
	Label   string         `json:"label"`
	Unit    string         `json:"unit"`
	Year    int            `json:"year"`
	Years   []int          `json:"years"`
	Metrics []MetricOption `json:"metrics"`

	Regions []RegionView  `json:"regions,omitempty"`
	Range   *domain.Range `json:"range,omitempty"`
	Legend  *scale.Legend `json:"legend,omitempty"`
	Marker  *Marker       `json:"marker,omitempty"`
	Hovered string        `json:"hovered,omitempty"`

	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}

// Frame snapshots the panel. Regions and legend are present only after the
// first successful render.
func (p *Panel) Frame() Frame {
	spec := p.metric.Spec()
	f := Frame{
		Panel:   p.id,
		State:   p.state.String(),
		Width:   p.width,
		Height:  p.height,
		Metric:  spec.Key,
		Label:   spec.Label,
		Unit:    spec.Unit,
		Year:    p.year,
		Years:   append([]int(nil), p.years...),
		Metrics: make([]MetricOption, 0, len(domain.Metrics)),
		Hovered: p.hovered,
	}
	if p.err != nil {
		f.Error = p.err.Error()
	}
	for _, m := range domain.Metrics {
		ms := p.byMetric[m]
		opt := MetricOption{
			Key:      m.Spec().Key,
			Label:    m.Spec().Label,
			Enabled:  ms.dataset != nil && p.state != Error,
			Selected: m == p.metric,
		}
		if ms.failed != nil {
			opt.Error = ms.failed.Error()
		}
		f.Metrics = append(f.Metrics, opt)
	}

	if p.state != Ready || !p.rendered {
		return f
	}

	f.Regions = make([]RegionView, len(p.regions))
	for i, r := range p.regions {
		rv := RegionView{Name: r.Name, Path: p.paths[i], Fill: p.fills[i], Opacity: p.opacity(r.Name)}
		if v, ok := p.row.Value(r.Name); ok {
			rv.Value = &v
		}
		f.Regions[i] = rv
	}
	ms := p.byMetric[p.metric]
	rng := ms.dataset.GlobalRange()
	f.Range = &rng
	lg := p.legend
	f.Legend = &lg
	if p.marker != nil {
		mk := *p.marker
		f.Marker = &mk
	}
	if d, ok := p.diagnostics[p.metric]; ok && !d.Empty() {
		f.Diagnostics = &d
	}
	return f
}

func (p *Panel) opacity(region string) float64 {
	if p.hovering && region != p.hovered {
		return DimmedOpacity
	}
	return 1
}
