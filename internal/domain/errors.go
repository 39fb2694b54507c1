package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrYearNotFound means the selected year has no row in the active dataset.
	ErrYearNotFound = errors.New("year not found")

	// ErrRegionNotFound means a region name is unknown to the boundary set
	// or has no column in the active table.
	ErrRegionNotFound = errors.New("region not found")

	// ErrMetricUnavailable means the metric's table has not finished loading.
	ErrMetricUnavailable = errors.New("metric not available")
)

// DataFormatError reports a malformed metric table.
type DataFormatError struct {
	Source string // table name or metric key
	Row    int    // 1-based data row, 0 when not row specific
	Reason string
}

func (e *DataFormatError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("data format: %s row %d: %s", e.Source, e.Row, e.Reason)
	}
	return fmt.Sprintf("data format: %s: %s", e.Source, e.Reason)
}

// GeometryError reports empty or degenerate boundary geometry.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "geometry: " + e.Reason
}
