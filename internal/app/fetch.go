package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/climate-choropleth/internal/config"
	"github.com/couchcryptid/climate-choropleth/internal/domain"
)

// Fetcher retrieves a boundary file or metric table by source.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// Dispatch routes http(s) sources to Remote and everything else to Local.
type Dispatch struct {
	Remote Fetcher
	Local  Fetcher
}

func (d Dispatch) Fetch(ctx context.Context, source string) ([]byte, error) {
	if isURL(source) {
		return d.Remote.Fetch(ctx, source)
	}
	return d.Local.Fetch(ctx, source)
}

// Sources names where the boundaries and every metric table come from.
type Sources struct {
	Boundaries string
	Tables     [len(domain.Metrics)]string
}

// SourcesFromConfig resolves each metric's table file against the data
// directory, which may itself be a URL.
func SourcesFromConfig(cfg *config.Config) Sources {
	s := Sources{Boundaries: cfg.BoundarySource}
	for _, m := range domain.Metrics {
		s.Tables[m] = joinSource(cfg.DataDir, m.Spec().TableFile)
	}
	return s
}

func joinSource(dir, file string) string {
	if isURL(dir) {
		return strings.TrimRight(dir, "/") + "/" + file
	}
	return filepath.Join(dir, file)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
