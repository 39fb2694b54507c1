// Package domain models regional climate statistics for the choropleth view.
//
// # Data Source
//
// The tables originate from the Deutscher Wetterdienst (DWD) regional
// averages exports, one file per metric:
//
//	regional_averages_tm_year   air temperature, annual mean (°C)
//	regional_averages_sd_year   sunshine duration, annual sum (h)
//	regional_averages_rr_year   precipitation, annual sum (mm)
//
// After conversion each table has a "Jahr" (year) column followed by one
// column per federal state. Column names are the display names used by the
// boundary file's properties.name, so a cell is looked up by region name.
// Aggregate columns such as "Deutschland" have no matching region and are
// ignored by the map.
//
// # Missing Values
//
// Empty cells mean the value was not reported for that year. They are never
// coerced to zero: a missing cell is absent from the parsed [Row] and takes
// no part in the global range. Non-numeric cells are treated the same way.
//
// # Global Range
//
// Every [Dataset] carries the minimum and maximum over all years and all
// regions combined. Color scales and legends are built from this range, so
// the meaning of a color does not change when the selected year changes.
// See [Dataset.GlobalRange].
//
// # Metrics
//
// The set of metrics is closed. [Metric] enumerates them and [Metric.Spec] returns
// the fixed per-metric record: label, unit, table file and color stops.
package domain
