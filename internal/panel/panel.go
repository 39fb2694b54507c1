// Package panel holds the state of one choropleth map with its legend and
// its share of the tooltip. A Panel is not safe for concurrent use; one
// goroutine drives it.
package panel

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/couchcryptid/climate-choropleth/internal/domain"
	"github.com/couchcryptid/climate-choropleth/internal/geo"
	"github.com/couchcryptid/climate-choropleth/internal/observability"
	"github.com/couchcryptid/climate-choropleth/internal/scale"
)

// DimmedOpacity applies to every region except the hovered one.
const DimmedOpacity = 0.7

var (
	// ErrNotReady means the initial render has not happened yet.
	ErrNotReady = errors.New("panel not ready")

	// ErrPanelFailed means the panel is in the terminal error state.
	ErrPanelFailed = errors.New("panel failed")
)

// State is the panel lifecycle: Loading until both the projection and the
// default metric are available, then Ready, and Error on failure.
type State int

const (
	Loading State = iota
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configure a Panel.
type Options struct {
	ID          string
	Width       int // map viewport
	Height      int
	LegendWidth int
	Years       []int // selector years; the first is the initial selection
	Tooltip     *Tooltip
	Logger      *slog.Logger
	Metrics     *observability.Metrics
	Emit        func(domain.InteractionEvent) // optional
}

type metricState struct {
	dataset *domain.Dataset
	scale   *scale.RangeScale
	failed  error
}

// Panel is one map, legend, and selector set.
type Panel struct {
	id            string
	width, height int
	legendWidth   int
	years         []int
	tooltip       *Tooltip
	logger        *slog.Logger
	metrics       *observability.Metrics
	emit          func(domain.InteractionEvent)

	state State
	err   error

	regions   []domain.Region
	paths     []string
	projector *geo.Projector
	byMetric  [len(domain.Metrics)]metricState

	metric   domain.Metric
	year     int
	row      domain.Row
	rendered bool
	fills    []string
	legend   scale.Legend

	hovering bool
	hovered  string
	marker   *Marker

	diagnostics map[domain.Metric]Diagnostics
}

// New creates a panel in the Loading state.
func New(opts Options) *Panel {
	years := slices.Clone(opts.Years)
	sort.Ints(years)
	p := &Panel{
		id:          opts.ID,
		width:       opts.Width,
		height:      opts.Height,
		legendWidth: opts.LegendWidth,
		years:       years,
		tooltip:     opts.Tooltip,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		emit:        opts.Emit,
		metric:      domain.DefaultMetric,
		diagnostics: make(map[domain.Metric]Diagnostics),
	}
	if p.tooltip == nil {
		p.tooltip = NewTooltip()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.metrics == nil {
		p.metrics = observability.NewMetricsForTesting()
	}
	if len(years) > 0 {
		p.year = years[0]
	}
	p.logger = p.logger.With("panel", p.id)
	p.setState(Loading)
	return p
}

// ID returns the panel identifier.
func (p *Panel) ID() string { return p.id }

// State returns the lifecycle state.
func (p *Panel) State() State { return p.state }

// Err returns the failure that moved the panel into Error, if any.
func (p *Panel) Err() error { return p.err }

// Selection returns the selected metric and year.
func (p *Panel) Selection() (domain.Metric, int) { return p.metric, p.year }

// Diagnostics returns the name mismatches found when m was first rendered.
func (p *Panel) Diagnostics(m domain.Metric) (Diagnostics, bool) {
	d, ok := p.diagnostics[m]
	return d, ok
}

// GeometryLoaded fits the projection to regions and caches every region
// path. It may start the initial render.
func (p *Panel) GeometryLoaded(regions []domain.Region) {
	if p.state == Error || p.projector != nil {
		return
	}
	params, err := geo.Fit(regions, p.width, p.height)
	if err != nil {
		p.fail(fmt.Errorf("fit projection: %w", err))
		return
	}
	p.projector = geo.NewProjector(params)
	p.regions = regions
	p.paths = make([]string, len(regions))
	for i, r := range regions {
		p.paths[i] = p.projector.Project(r)
	}
	p.logger.Debug("projection fitted", "regions", len(regions), "scale", params.Scale)
	p.maybeStart()
}

// GeometryFailed moves the panel into Error.
func (p *Panel) GeometryFailed(err error) {
	p.fail(fmt.Errorf("load boundaries: %w", err))
}

// DatasetLoaded builds the metric's scale from its global range. It may
// start the initial render.
func (p *Panel) DatasetLoaded(m domain.Metric, ds *domain.Dataset) {
	if p.state == Error || p.byMetric[m].dataset != nil {
		return
	}
	spec := m.Spec()
	stops, err := scale.Stops(spec.Stops)
	if err != nil {
		p.fail(fmt.Errorf("%s color stops: %w", m, err))
		return
	}
	rng := ds.GlobalRange()
	s, err := scale.Build(rng.Min, rng.Max, p.legendWidth, stops)
	if err != nil {
		p.fail(fmt.Errorf("%s scale: %w", m, err))
		return
	}
	p.byMetric[m] = metricState{dataset: ds, scale: s}
	p.logger.Debug("dataset ready", "metric", m.String(), "min", rng.Min, "max", rng.Max)
	p.maybeStart()
}

// DatasetFailed records a table failure. The default metric and malformed
// tables fail the panel; other metrics stay disabled.
func (p *Panel) DatasetFailed(m domain.Metric, err error) {
	if p.state == Error {
		return
	}
	var dfe *domain.DataFormatError
	if m == domain.DefaultMetric || errors.As(err, &dfe) {
		p.fail(fmt.Errorf("load %s: %w", m, err))
		return
	}
	p.byMetric[m].failed = err
	p.logger.Warn("metric unavailable", "metric", m.String(), "error", err)
}

// maybeStart performs the initial render once the projection and the
// default dataset are both in place, whichever arrived last.
func (p *Panel) maybeStart() {
	if p.state != Loading || p.projector == nil || p.byMetric[domain.DefaultMetric].dataset == nil {
		return
	}
	p.setState(Ready)
	p.logger.Info("panel ready", "metric", p.metric.String(), "year", p.year)
	_ = p.Render()
}

// SelectMetric switches the active metric and re-renders. While Loading
// the selection is recorded for the initial render.
func (p *Panel) SelectMetric(m domain.Metric) error {
	if p.state == Error {
		return ErrPanelFailed
	}
	if !m.Valid() || p.byMetric[m].dataset == nil {
		return fmt.Errorf("select %s: %w", m, domain.ErrMetricUnavailable)
	}
	p.metric = m
	if p.state == Loading {
		return nil
	}
	if err := p.Render(); err != nil {
		return err
	}
	p.publish(domain.EventSelectMetric, "")
	return nil
}

// SelectYear switches the year and re-renders. Years outside the selector
// range are rejected without a state change.
func (p *Panel) SelectYear(year int) error {
	if p.state == Error {
		return ErrPanelFailed
	}
	if _, ok := slices.BinarySearch(p.years, year); !ok {
		return fmt.Errorf("select year %d: %w", year, domain.ErrYearNotFound)
	}
	p.year = year
	if p.state == Loading {
		return nil
	}
	if err := p.Render(); err != nil {
		return err
	}
	p.publish(domain.EventSelectYear, "")
	return nil
}

// Render recolors every region from the selected row and rebuilds the
// legend. A year missing from the dataset fails the panel rather than
// showing stale colors.
func (p *Panel) Render() error {
	switch p.state {
	case Error:
		return ErrPanelFailed
	case Loading:
		return ErrNotReady
	}

	ms := p.byMetric[p.metric]
	row, err := ms.dataset.RowForYear(p.year)
	if err != nil {
		p.metrics.RenderErrors.WithLabelValues(p.id).Inc()
		err = fmt.Errorf("render: %w", err)
		p.fail(err)
		return err
	}

	p.diagnose(p.metric, ms.dataset)
	p.row = row
	if len(p.fills) != len(p.regions) {
		p.fills = make([]string, len(p.regions))
	}
	for i, r := range p.regions {
		if v, ok := row.Value(r.Name); ok {
			p.fills[i] = ms.scale.HexFor(v)
		} else {
			p.fills[i] = scale.NoDataColor
		}
	}
	p.legend = ms.scale.Legend()
	p.rendered = true

	if p.hovering {
		p.refreshHover()
	}

	p.metrics.Renders.WithLabelValues(p.id).Inc()
	p.publish(domain.EventRender, "")
	return nil
}

// diagnose compares region names with table columns once per metric.
func (p *Panel) diagnose(m domain.Metric, ds *domain.Dataset) {
	if _, done := p.diagnostics[m]; done {
		return
	}
	var d Diagnostics
	names := make(map[string]struct{}, len(p.regions))
	for _, r := range p.regions {
		names[r.Name] = struct{}{}
		if !ds.HasColumn(r.Name) {
			d.RegionsWithoutColumn = append(d.RegionsWithoutColumn, r.Name)
		}
	}
	for _, col := range ds.Columns() {
		if _, ok := names[col]; !ok {
			d.ColumnsWithoutRegion = append(d.ColumnsWithoutRegion, col)
		}
	}
	sort.Strings(d.RegionsWithoutColumn)
	p.diagnostics[m] = d

	if !d.Empty() {
		p.metrics.RegionMismatches.WithLabelValues(m.String()).
			Add(float64(len(d.RegionsWithoutColumn) + len(d.ColumnsWithoutRegion)))
		p.logger.Warn("region names do not match table columns",
			"metric", m.String(),
			"regions_without_column", d.RegionsWithoutColumn,
			"columns_without_region", d.ColumnsWithoutRegion,
		)
	}
}

func (p *Panel) fail(err error) {
	if p.state == Error {
		return
	}
	p.err = err
	p.setState(Error)
	p.hovering = false
	p.hovered = ""
	p.marker = nil
	p.tooltip.Hide(p.id)
	p.logger.Error("panel failed", "error", err)
}

func (p *Panel) setState(s State) {
	p.state = s
	p.metrics.PanelState.WithLabelValues(p.id).Set(float64(s))
}

func (p *Panel) publish(kind, region string) {
	if p.emit == nil {
		return
	}
	p.emit(domain.NewInteractionEvent(p.id, kind, p.metric, p.year, region))
}
