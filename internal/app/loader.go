package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/climate-choropleth/internal/adapter/csvtable"
	"github.com/couchcryptid/climate-choropleth/internal/domain"
	"github.com/couchcryptid/climate-choropleth/internal/geo"
)

const boundariesSource = "boundaries"

// startLoads issues the boundary load and one load per metric table. Each
// completion is handed to the event loop; none waits for another.
func (p *Pair) startLoads(ctx context.Context) {
	p.loads.Add(1 + len(domain.Metrics))

	go func() {
		defer p.loads.Done()
		regions, err := p.loadBoundaries(ctx)
		p.post(ctx, func() {
			for _, pn := range p.panels() {
				if err != nil {
					pn.GeometryFailed(err)
				} else {
					pn.GeometryLoaded(regions)
				}
			}
		})
	}()

	for _, m := range domain.Metrics {
		go func() {
			defer p.loads.Done()
			ds, err := p.loadTable(ctx, m)
			p.post(ctx, func() {
				for _, pn := range p.panels() {
					if err != nil {
						pn.DatasetFailed(m, err)
					} else {
						pn.DatasetLoaded(m, ds)
					}
				}
			})
		}()
	}
}

func (p *Pair) loadBoundaries(ctx context.Context) ([]domain.Region, error) {
	src := p.sources.Boundaries
	start := time.Now()
	regions, err := func() ([]domain.Region, error) {
		data, err := p.fetcher.Fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		return geo.ParseBoundaries(data)
	}()
	p.observeLoad(boundariesSource, start, err)
	if err != nil {
		p.logger.Error("boundary load failed", "source", src, "error", err)
		return nil, err
	}
	p.logger.Info("boundaries loaded", "source", src, "regions", len(regions))
	return regions, nil
}

func (p *Pair) loadTable(ctx context.Context, m domain.Metric) (*domain.Dataset, error) {
	src := p.sources.Tables[m]
	start := time.Now()
	ds, err := func() (*domain.Dataset, error) {
		data, err := p.fetcher.Fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		rows, err := parseTable(src, data)
		if err != nil {
			return nil, err
		}
		return domain.LoadDataset(m, rows)
	}()
	p.observeLoad(m.String(), start, err)
	if err != nil {
		p.logger.Error("table load failed", "metric", m.String(), "source", src, "error", err)
		return nil, fmt.Errorf("%s table: %w", m, err)
	}
	rng := ds.GlobalRange()
	p.logger.Info("table loaded",
		"metric", m.String(),
		"source", src,
		"years", len(ds.Years()),
		"min", rng.Min,
		"max", rng.Max,
	)
	return ds, nil
}

// parseTable reads raw DWD exports (.txt) and converted tables alike.
func parseTable(src string, data []byte) ([]domain.RawRow, error) {
	if strings.HasSuffix(strings.ToLower(src), ".txt") {
		return csvtable.ParseDWD(src, data)
	}
	return csvtable.Parse(src, data)
}

func (p *Pair) observeLoad(source string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.metrics.Loads.WithLabelValues(source, outcome).Inc()
	p.metrics.LoadDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
}
