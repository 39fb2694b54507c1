// Command validate checks that a data directory can drive both panels: every
// metric table parses, covers the selector years, builds a color scale, and
// names the same regions as the boundary file.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data-dir data \
//	  -boundaries data/boundaries.geojson \
//	  -year-first 1991 -year-last 2019
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/climate-choropleth/internal/adapter/csvtable"
	"github.com/couchcryptid/climate-choropleth/internal/domain"
	"github.com/couchcryptid/climate-choropleth/internal/geo"
	"github.com/couchcryptid/climate-choropleth/internal/scale"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "", "directory containing the three metric tables")
	boundaries := flag.String("boundaries", "", "path to the boundary GeoJSON file")
	first := flag.Int("year-first", 1991, "first selector year")
	last := flag.Int("year-last", 2019, "last selector year")
	width := flag.Int("legend-width", 400, "legend width in pixels")
	flag.Parse()

	if *dataDir == "" || *boundaries == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataDir, *boundaries, *first, *last, *width); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir, boundaryPath string, first, last, legendWidth int) int {
	fmt.Println("=== Climate Data Validation ===")
	fmt.Println()

	data, err := os.ReadFile(boundaryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read boundaries: %v\n", err)
		return 1
	}
	regions, err := geo.ParseBoundaries(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse boundaries: %v\n", err)
		return 1
	}

	parsing := &phase{name: "Phase 1: Table Parsing"}
	datasets := loadDatasets(parsing, dataDir)

	phases := []*phase{
		parsing,
		validateGeometry(regions),
		validateYears(datasets, first, last),
		validateScales(datasets, legendWidth),
		validateRegions(datasets, regions),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Regions: %d, tables: %d of %d\n", len(regions), len(datasets), len(domain.Metrics))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Table Parsing ──

func loadDatasets(p *phase, dir string) map[domain.Metric]*domain.Dataset {
	out := make(map[domain.Metric]*domain.Dataset, len(domain.Metrics))
	for _, m := range domain.Metrics {
		path := filepath.Join(dir, m.Spec().TableFile)
		data, err := os.ReadFile(path)
		if err != nil {
			p.errorf("%s: %v", m, err)
			continue
		}
		rows, err := csvtable.Parse(filepath.Base(path), data)
		if err != nil {
			p.errorf("%s: %v", m, err)
			continue
		}
		ds, err := domain.LoadDataset(m, rows)
		if err != nil {
			p.errorf("%s: %v", m, err)
			continue
		}
		out[m] = ds
	}
	return out
}

// ── Phase 2: Geometry ──

func validateGeometry(regions []domain.Region) *phase {
	p := &phase{name: "Phase 2: Boundary Geometry"}
	if _, err := geo.Fit(regions, 400, 600); err != nil {
		p.errorf("fit projection: %v", err)
	}
	return p
}

// ── Phase 3: Year Coverage ──
// A selector year missing from a table fails the panel when chosen.

func validateYears(datasets map[domain.Metric]*domain.Dataset, first, last int) *phase {
	p := &phase{name: "Phase 3: Year Coverage"}
	if last < first {
		p.errorf("year range %d-%d is inverted", first, last)
		return p
	}
	for _, m := range domain.Metrics {
		ds, ok := datasets[m]
		if !ok {
			continue
		}
		var missing []string
		for y := first; y <= last; y++ {
			if _, err := ds.RowForYear(y); err != nil {
				missing = append(missing, fmt.Sprint(y))
			}
		}
		if len(missing) > 0 {
			p.errorf("%s: missing years %s", m, strings.Join(missing, ", "))
		}
	}
	return p
}

// ── Phase 4: Color Scales ──

func validateScales(datasets map[domain.Metric]*domain.Dataset, width int) *phase {
	p := &phase{name: "Phase 4: Color Scales"}
	for _, m := range domain.Metrics {
		ds, ok := datasets[m]
		if !ok {
			continue
		}
		stops, err := scale.Stops(m.Spec().Stops)
		if err != nil {
			p.errorf("%s: %v", m, err)
			continue
		}
		rng := ds.GlobalRange()
		if _, err := scale.Build(rng.Min, rng.Max, width, stops); err != nil {
			p.errorf("%s: %v", m, err)
		}
		if rng.Min == rng.Max {
			p.errorf("%s: every value is %g, the legend has no extent", m, rng.Min)
		}
	}
	return p
}

// ── Phase 5: Region Alignment ──
// Mismatched names are not fatal at runtime but render as no data.

func validateRegions(datasets map[domain.Metric]*domain.Dataset, regions []domain.Region) *phase {
	p := &phase{name: "Phase 5: Region Alignment"}
	names := make(map[string]bool, len(regions))
	for _, r := range regions {
		names[r.Name] = true
	}
	for _, m := range domain.Metrics {
		ds, ok := datasets[m]
		if !ok {
			continue
		}
		for _, r := range regions {
			if !ds.HasColumn(r.Name) {
				p.errorf("%s: region %q has no column", m, r.Name)
			}
		}
		for _, col := range ds.Columns() {
			if !names[col] {
				p.errorf("%s: column %q matches no region", m, col)
			}
		}
	}
	return p
}
