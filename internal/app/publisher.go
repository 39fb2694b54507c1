package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-choropleth/internal/domain"
	"github.com/couchcryptid/climate-choropleth/internal/observability"
)

// EventLoader writes a batch of interaction events to the event stream.
type EventLoader interface {
	LoadBatch(ctx context.Context, events []domain.InteractionEvent) error
}

const (
	publishQueue    = 1024
	publishAttempts = 3
	initialBackoff  = 200 * time.Millisecond
	maxBackoff      = 5 * time.Second
)

// Publisher batches interaction events off the event loop and hands them to
// an EventLoader when the batch is full or the flush interval elapses.
type Publisher struct {
	loader        EventLoader
	events        chan domain.InteractionEvent
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewPublisher creates a Publisher. Call Run to start delivery.
func NewPublisher(loader EventLoader, batchSize int, flushInterval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	return &Publisher{
		loader:        loader,
		events:        make(chan domain.InteractionEvent, publishQueue),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        logger,
		metrics:       metrics,
	}
}

// Publish enqueues an event without blocking. Events are dropped while the
// queue is full.
func (p *Publisher) Publish(e domain.InteractionEvent) {
	select {
	case p.events <- e:
	default:
		p.metrics.EventPublishErrors.Inc()
		p.logger.Warn("event queue full, dropping interaction event", "panel", e.Panel, "kind", e.Kind)
	}
}

// Run delivers events until ctx is cancelled, then flushes what is queued.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("event publisher started", "batch_size", p.batchSize, "flush_interval", p.flushInterval)
	p.metrics.EventsEnabled.Set(1)
	defer p.metrics.EventsEnabled.Set(0)

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.InteractionEvent, 0, p.batchSize)
	for {
		select {
		case <-ctx.Done():
			batch = p.drain(batch)
			flushCtx, cancel := context.WithTimeout(context.Background(), p.flushInterval+time.Second)
			p.flush(flushCtx, batch)
			cancel()
			p.logger.Info("event publisher stopping", "reason", ctx.Err())
			return nil
		case e := <-p.events:
			batch = append(batch, e)
			if len(batch) >= p.batchSize {
				p.flush(ctx, batch)
				batch = make([]domain.InteractionEvent, 0, p.batchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				p.flush(ctx, batch)
				batch = make([]domain.InteractionEvent, 0, p.batchSize)
			}
		}
	}
}

func (p *Publisher) drain(batch []domain.InteractionEvent) []domain.InteractionEvent {
	for {
		select {
		case e := <-p.events:
			batch = append(batch, e)
		default:
			return batch
		}
	}
}

// flush writes the batch, retrying with exponential backoff. A batch that
// still fails is dropped.
func (p *Publisher) flush(ctx context.Context, batch []domain.InteractionEvent) {
	if len(batch) == 0 {
		return
	}
	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			p.metrics.EventsPublished.Add(float64(len(batch)))
			return
		}
		p.metrics.EventPublishErrors.Inc()
		if attempt == publishAttempts || ctx.Err() != nil {
			p.logger.Error("load event batch failed, dropping", "error", err, "batch_size", len(batch), "attempts", attempt)
			return
		}
		p.logger.Warn("load event batch failed, retrying", "error", err, "batch_size", len(batch), "backoff", backoff)
		if !sleepWithContext(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
