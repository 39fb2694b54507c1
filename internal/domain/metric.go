package domain

import (
	"fmt"
	"strings"
)

// Metric identifies one of the three climate statistics shown on the map.
type Metric int

const (
	Temperature Metric = iota
	Sunshine
	Precipitation
)

// DefaultMetric is rendered first; the initial render waits for its table.
const DefaultMetric = Temperature

// Metrics lists every metric in selector order.
var Metrics = [...]Metric{Temperature, Sunshine, Precipitation}

// MetricSpec is the fixed per-metric record.
type MetricSpec struct {
	Key       string   // stable identifier used in the API, e.g. "temperature"
	Label     string   // German selector label
	Unit      string   // appended to tooltip values
	TableFile string   // converted DWD table name
	Stops     []string // ordered CSS color names, low to high
}

var specs = [...]MetricSpec{
	Temperature: {
		Key:       "temperature",
		Label:     "Temperatur",
		Unit:      "°C",
		TableFile: "regional_averages_tm_year.csv",
		Stops:     []string{"lightblue", "red"},
	},
	Sunshine: {
		Key:       "sunshine",
		Label:     "Sonnenscheindauer",
		Unit:      "h",
		TableFile: "regional_averages_sd_year.csv",
		Stops:     []string{"darkblue", "yellow"},
	},
	Precipitation: {
		Key:       "precipitation",
		Label:     "Niederschlag",
		Unit:      "mm",
		TableFile: "regional_averages_rr_year.csv",
		Stops:     []string{"lightyellow", "green", "blue"},
	},
}

// Spec returns the record for m. It panics on an unknown metric since the
// set is closed.
func (m Metric) Spec() MetricSpec {
	if !m.Valid() {
		panic(fmt.Sprintf("domain: unknown metric %d", int(m)))
	}
	return specs[m]
}

// Valid reports whether m is one of the enumerated metrics.
func (m Metric) Valid() bool {
	return m >= Temperature && m <= Precipitation
}

func (m Metric) String() string {
	if !m.Valid() {
		return fmt.Sprintf("metric(%d)", int(m))
	}
	return specs[m].Key
}

// ParseMetric accepts a metric key or its display label, case-insensitively.
func ParseMetric(s string) (Metric, error) {
	s = strings.TrimSpace(s)
	for _, m := range Metrics {
		spec := specs[m]
		if strings.EqualFold(s, spec.Key) || strings.EqualFold(s, spec.Label) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}
