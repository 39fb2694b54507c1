// Package app composes two choropleth panels that share one tooltip, loads
// their data concurrently and serializes every panel operation on a single
// event loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/climate-choropleth/internal/domain"
	"github.com/couchcryptid/climate-choropleth/internal/observability"
	"github.com/couchcryptid/climate-choropleth/internal/panel"
	"github.com/couchcryptid/climate-choropleth/internal/scale"
)

// Panel identifiers.
const (
	Left  = "left"
	Right = "right"
)

var (
	// ErrUnknownPanel means the side is neither Left nor Right.
	ErrUnknownPanel = errors.New("unknown panel")

	// ErrStopped means the event loop has exited.
	ErrStopped = errors.New("panel pair stopped")

	// ErrAlreadyRunning means Run was called more than once.
	ErrAlreadyRunning = errors.New("panel pair already running")

	// ErrInvalidViewport means a resize asked for a non-positive size.
	ErrInvalidViewport = errors.New("invalid viewport")
)

// Options configure a Pair.
type Options struct {
	Width       int
	Height      int
	LegendWidth int
	Years       []int
	Sources     Sources
	Fetcher     Fetcher
	Publisher   *Publisher // optional
	Logger      *slog.Logger
	Metrics     *observability.Metrics
}

// Pair is the composition root for the comparison view.
type Pair struct {
	left, right *panel.Panel
	tooltip     *panel.Tooltip
	opts        Options
	emit        func(domain.InteractionEvent)
	fetcher     Fetcher
	sources     Sources
	publisher   *Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics

	running atomic.Bool
	runCtx  context.Context // owned by the loop
	ops     chan func()
	stopped chan struct{}
	loads   sync.WaitGroup
	status  atomic.Pointer[status]
}

type status struct {
	left, right panel.State
	leftErr     error
	rightErr    error
}

// New constructs both panels in the Loading state. Nothing is fetched
// until Run.
func New(opts Options) *Pair {
	p := &Pair{
		tooltip:   panel.NewTooltip(),
		opts:      opts,
		fetcher:   opts.Fetcher,
		sources:   opts.Sources,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		ops:       make(chan func()),
		stopped:   make(chan struct{}),
	}
	if p.publisher != nil {
		p.emit = p.publisher.Publish
	}
	p.left = p.newPanel(Left)
	p.right = p.newPanel(Right)
	p.refreshStatus()
	return p
}

func (p *Pair) newPanel(id string) *panel.Panel {
	return panel.New(panel.Options{
		ID:          id,
		Width:       p.opts.Width,
		Height:      p.opts.Height,
		LegendWidth: p.opts.LegendWidth,
		Years:       p.opts.Years,
		Tooltip:     p.tooltip,
		Logger:      p.logger,
		Metrics:     p.metrics,
		Emit:        p.emit,
	})
}

// Run issues the loads and processes panel operations until ctx is
// cancelled. A Pair runs at most once; later calls return ErrAlreadyRunning.
func (p *Pair) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	p.logger.Info("panel pair started",
		"boundaries", p.sources.Boundaries,
		"tables", len(p.sources.Tables),
	)
	defer close(p.stopped)

	p.runCtx = ctx
	p.startLoads(ctx)
	for {
		select {
		case <-ctx.Done():
			p.loads.Wait()
			p.logger.Info("panel pair stopping", "reason", ctx.Err())
			return nil
		case op := <-p.ops:
			op()
			p.refreshStatus()
		}
	}
}

// Resize rebuilds both panels for a new viewport and reloads every source.
// Selections and hover state start over; the tooltip is hidden.
func (p *Pair) Resize(ctx context.Context, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize to %dx%d: %w", width, height, ErrInvalidViewport)
	}
	return p.Do(ctx, func() error {
		p.tooltip.Hide(Left)
		p.tooltip.Hide(Right)
		p.opts.Width, p.opts.Height = width, height
		p.left = p.newPanel(Left)
		p.right = p.newPanel(Right)
		p.logger.Info("panels resized", "width", width, "height", height)
		p.startLoads(p.runCtx)
		return nil
	})
}

// Do runs fn on the event loop and waits for its result.
func (p *Pair) Do(ctx context.Context, fn func() error) error {
	res := make(chan error, 1)
	select {
	case p.ops <- func() { res <- fn() }:
	case <-p.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post hands a load completion to the loop. It gives up once ctx is done.
func (p *Pair) post(ctx context.Context, fn func()) {
	select {
	case p.ops <- fn:
	case <-ctx.Done():
	}
}

// CheckReadiness returns nil once both panels finished their initial
// render, or an error describing why the view is not ready.
func (p *Pair) CheckReadiness(_ context.Context) error {
	st := p.status.Load()
	switch {
	case st.left == panel.Error:
		return fmt.Errorf("left panel failed: %w", st.leftErr)
	case st.right == panel.Error:
		return fmt.Errorf("right panel failed: %w", st.rightErr)
	case st.left != panel.Ready || st.right != panel.Ready:
		return fmt.Errorf("panels loading (left %s, right %s)", st.left, st.right)
	}
	return nil
}

func (p *Pair) refreshStatus() {
	p.status.Store(&status{
		left:     p.left.State(),
		right:    p.right.State(),
		leftErr:  p.left.Err(),
		rightErr: p.right.Err(),
	})
}

func (p *Pair) panels() [2]*panel.Panel {
	return [2]*panel.Panel{p.left, p.right}
}

func (p *Pair) panel(side string) (*panel.Panel, error) {
	switch side {
	case Left:
		return p.left, nil
	case Right:
		return p.right, nil
	}
	return nil, fmt.Errorf("%q: %w", side, ErrUnknownPanel)
}

// on runs fn against one panel on the loop. The panel is resolved on the
// loop since Resize replaces both.
func (p *Pair) on(ctx context.Context, side string, fn func(*panel.Panel) error) error {
	if side != Left && side != Right {
		return fmt.Errorf("%q: %w", side, ErrUnknownPanel)
	}
	return p.Do(ctx, func() error {
		pn, err := p.panel(side)
		if err != nil {
			return err
		}
		return fn(pn)
	})
}

// SelectMetric changes one panel's metric.
func (p *Pair) SelectMetric(ctx context.Context, side string, m domain.Metric) error {
	return p.on(ctx, side, func(pn *panel.Panel) error { return pn.SelectMetric(m) })
}

// SelectYear changes one panel's year.
func (p *Pair) SelectYear(ctx context.Context, side string, year int) error {
	return p.on(ctx, side, func(pn *panel.Panel) error { return pn.SelectYear(year) })
}

// Hover emphasizes a region on one panel and takes over the tooltip.
func (p *Pair) Hover(ctx context.Context, side, region string, pointer scale.Point) error {
	return p.on(ctx, side, func(pn *panel.Panel) error { return pn.Hover(region, pointer) })
}

// PointerMove moves the tooltip while one panel is hovered.
func (p *Pair) PointerMove(ctx context.Context, side string, pointer scale.Point) error {
	return p.on(ctx, side, func(pn *panel.Panel) error { return pn.PointerMove(pointer) })
}

// HoverEnd clears one panel's hover state.
func (p *Pair) HoverEnd(ctx context.Context, side string) error {
	return p.on(ctx, side, func(pn *panel.Panel) error {
		pn.HoverEnd()
		return nil
	})
}

// Frame snapshots one panel.
func (p *Pair) Frame(ctx context.Context, side string) (panel.Frame, error) {
	var f panel.Frame
	err := p.on(ctx, side, func(pn *panel.Panel) error {
		f = pn.Frame()
		return nil
	})
	return f, err
}

// Frames snapshots both panels and the tooltip in one loop turn.
func (p *Pair) Frames(ctx context.Context) (left, right panel.Frame, tip panel.TooltipView, err error) {
	err = p.Do(ctx, func() error {
		left = p.left.Frame()
		right = p.right.Frame()
		tip = p.tooltip.View()
		return nil
	})
	return left, right, tip, err
}

// Tooltip snapshots the shared tooltip.
func (p *Pair) Tooltip(ctx context.Context) (panel.TooltipView, error) {
	var v panel.TooltipView
	err := p.Do(ctx, func() error {
		v = p.tooltip.View()
		return nil
	})
	return v, err
}
