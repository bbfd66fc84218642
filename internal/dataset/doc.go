// Package dataset implements the clinic mortality pipeline: schema
// validation, period normalization, numeric coercion, rate derivation,
// range filtering, and summary aggregation over the two-clinic historical
// tables.
//
// A Dataset is built once per load from a raw ingest.Table and is immutable
// afterwards; filtering and summarizing produce derived views, never
// in-place mutations. Rows whose period cannot be normalized or whose count
// fields fail numeric coercion are dropped rather than failing the load,
// and the drop count is reported so callers can warn when loss is
// significant.
//
// Typical flow:
//
//	ds, err := dataset.Build(dataset.Yearly, table)
//	if err != nil {
//	    // *dataset.SchemaError lists every missing column
//	}
//	subset := ds.FilterRange(from, to)
//	summary := dataset.Summarize(subset)
package dataset
