package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// YearColumn is the header of the year field in every metric table.
const YearColumn = "Jahr"

// RawRow is one parsed table row keyed by column header. Cells are the
// unconverted strings; an empty string marks a missing value.
type RawRow map[string]string

// Row holds one year's values for every region of one metric.
// Regions with a missing cell are absent from Values.
type Row struct {
	Year   int
	Values map[string]float64
}

// Value returns the region's value and whether one was reported.
func (r Row) Value(region string) (float64, bool) {
	v, ok := r.Values[region]
	return v, ok
}

// Range is a closed value interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Dataset is one metric's rows for every year plus the global range.
// It is immutable once loaded.
type Dataset struct {
	metric   Metric
	rows     []Row
	byYear   map[int]int
	columns  []string
	global   Range
	LoadedAt time.Time
}

// LoadDataset converts parsed table rows into a Dataset. Rows are ordered by
// year regardless of input order.
func LoadDataset(m Metric, rows []RawRow) (*Dataset, error) {
	source := m.String()
	ds := &Dataset{
		metric: m,
		rows:   make([]Row, 0, len(rows)),
		byYear: make(map[int]int, len(rows)),
	}

	columns := make(map[string]struct{})
	for i, raw := range rows {
		yearCell, ok := raw[YearColumn]
		if !ok {
			return nil, &DataFormatError{Source: source, Row: i + 1, Reason: "missing " + YearColumn + " field"}
		}
		year, err := strconv.Atoi(strings.TrimSpace(yearCell))
		if err != nil {
			return nil, &DataFormatError{Source: source, Row: i + 1, Reason: fmt.Sprintf("invalid year %q", yearCell)}
		}
		if _, dup := ds.byYear[year]; dup {
			return nil, &DataFormatError{Source: source, Row: i + 1, Reason: fmt.Sprintf("duplicate year %d", year)}
		}

		row := Row{Year: year, Values: make(map[string]float64, len(raw))}
		for col, cell := range raw {
			if col == YearColumn {
				continue
			}
			columns[col] = struct{}{}
			if v, ok := parseCell(cell); ok {
				row.Values[col] = v
			}
		}
		ds.byYear[year] = len(ds.rows)
		ds.rows = append(ds.rows, row)
	}

	global, ok := foldRange(ds.rows)
	if !ok {
		return nil, &DataFormatError{Source: source, Reason: "table has no numeric values"}
	}
	ds.global = global

	sort.Slice(ds.rows, func(i, j int) bool { return ds.rows[i].Year < ds.rows[j].Year })
	for i, row := range ds.rows {
		ds.byYear[row.Year] = i
	}

	ds.columns = make([]string, 0, len(columns))
	for col := range columns {
		ds.columns = append(ds.columns, col)
	}
	sort.Strings(ds.columns)
	ds.LoadedAt = clock.Now()
	return ds, nil
}

// parseCell returns the numeric value of a cell. Empty and non-numeric cells
// are missing.
func parseCell(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// foldRange is a commutative min/max over every present value. It reports
// false when no value is present at all.
func foldRange(rows []Row) (Range, bool) {
	var r Range
	seen := false
	for _, row := range rows {
		for _, v := range row.Values {
			if !seen {
				r = Range{Min: v, Max: v}
				seen = true
				continue
			}
			r.Min = math.Min(r.Min, v)
			r.Max = math.Max(r.Max, v)
		}
	}
	return r, seen
}

// Metric returns the metric this dataset holds.
func (d *Dataset) Metric() Metric { return d.metric }

// GlobalRange returns the min and max across all years and regions.
func (d *Dataset) GlobalRange() Range { return d.global }

// RowForYear returns the row for an exact year match.
func (d *Dataset) RowForYear(year int) (Row, error) {
	i, ok := d.byYear[year]
	if !ok {
		return Row{}, fmt.Errorf("%s %d: %w", d.metric, year, ErrYearNotFound)
	}
	return d.rows[i], nil
}

// Years returns the covered years in ascending order.
func (d *Dataset) Years() []int {
	years := make([]int, len(d.rows))
	for i, row := range d.rows {
		years[i] = row.Year
	}
	return years
}

// Columns returns the sorted region columns, excluding the year column.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// HasColumn reports whether the table has a column for region.
func (d *Dataset) HasColumn(region string) bool {
	i := sort.SearchStrings(d.columns, region)
	return i < len(d.columns) && d.columns[i] == region
}
