// Command genmock writes data fixtures for local runs and tests: three
// synthetic metric tables over two regions plus a matching boundary file,
// or, with -from-dwd, the three tables converted from raw DWD exports.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock
//	go run ./cmd/genmock -out data -from-dwd ../dwd-downloads
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/climate-choropleth/internal/adapter/csvtable"
	"github.com/couchcryptid/climate-choropleth/internal/domain"
	"github.com/couchcryptid/climate-choropleth/internal/geo"
)

// BoundaryFile is the fixture name written next to the tables.
const BoundaryFile = "boundaries.geojson"

// fixture regions, west to east in longitude, north over south in latitude.
var regions = []struct {
	name  string
	bound orb.Bound
}{
	{"Nord", orb.Bound{Min: orb.Point{8, 52}, Max: orb.Point{12, 54.5}}},
	{"Süd", orb.Bound{Min: orb.Point{8, 47.5}, Max: orb.Point{12, 52}}},
}

// base is each metric's mean and spread for the synthetic tables.
var base = map[domain.Metric]struct{ mean, spread, trend float64 }{
	domain.Temperature:   {mean: 8.8, spread: 0.8, trend: 0.04},
	domain.Sunshine:      {mean: 1600, spread: 150, trend: 3},
	domain.Precipitation: {mean: 780, spread: 120, trend: 0},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory")
	fromDWD := flag.String("from-dwd", "", "directory containing raw DWD regional_averages_*_year.txt exports")
	first := flag.Int("year-first", 1991, "first synthetic year")
	last := flag.Int("year-last", 2019, "last synthetic year")
	seed := flag.Uint64("seed", 1, "random seed for synthetic values")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *last < *first {
		return fmt.Errorf("-year-last %d is before -year-first %d", *last, *first)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	if *fromDWD != "" {
		return convertDWD(*fromDWD, *out)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	for _, m := range domain.Metrics {
		rows := synthesize(m, *first, *last, rng)
		if err := writeTable(filepath.Join(*out, m.Spec().TableFile), rows); err != nil {
			return fmt.Errorf("writing %s: %w", m, err)
		}
		log.Printf("%s: %d years", m, len(rows))
	}

	path := filepath.Join(*out, BoundaryFile)
	if err := writeBoundaries(path); err != nil {
		return fmt.Errorf("writing boundaries: %w", err)
	}
	log.Printf("wrote boundary fixture: %s", path)
	return nil
}

func synthesize(m domain.Metric, first, last int, rng *rand.Rand) []domain.RawRow {
	b := base[m]
	rows := make([]domain.RawRow, 0, last-first+1)
	for year := first; year <= last; year++ {
		row := domain.RawRow{domain.YearColumn: strconv.Itoa(year)}
		for i, r := range regions {
			// Southern regions run warmer and sunnier.
			offset := float64(i) * b.spread / 2
			v := b.mean + offset + b.trend*float64(year-first) + rng.NormFloat64()*b.spread/3
			row[r.name] = strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeBoundaries(path string) error {
	fc := geojson.NewFeatureCollection()
	for _, r := range regions {
		f := geojson.NewFeature(r.bound.ToPolygon())
		f.Properties[geo.NameProperty] = r.name
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func convertDWD(dir, out string) error {
	for _, m := range domain.Metrics {
		table := m.Spec().TableFile
		src := filepath.Join(dir, strings.TrimSuffix(table, filepath.Ext(table))+".txt")
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("read %s: %w", src, err)
		}
		rows, err := csvtable.ParseDWD(filepath.Base(src), data)
		if err != nil {
			return err
		}
		if err := writeTable(filepath.Join(out, table), rows); err != nil {
			return fmt.Errorf("writing %s: %w", m, err)
		}
		log.Printf("%s: converted %d rows from %s", m, len(rows), src)
	}
	return nil
}

func writeTable(path string, rows []domain.RawRow) error {
	var buf bytes.Buffer
	if err := csvtable.Write(&buf, rows); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}
