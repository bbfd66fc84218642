package dataset

import (
	"sort"
	"strconv"
	"strings"

	"clinicpulse/internal/ingest"
)

// ObservationRecord holds one period's normalized data for both cohorts.
// Cohort A is Clinic 1, cohort B is Clinic 2. PeriodLabel preserves the
// source text verbatim for display; PeriodKey is the orderable form used
// for sorting and range filtering.
type ObservationRecord struct {
	PeriodLabel string    `json:"period_label"`
	PeriodKey   PeriodKey `json:"period_key"`
	BirthsA     float64   `json:"births_a"`
	DeathsA     float64   `json:"deaths_a"`
	BirthsB     float64   `json:"births_b"`
	DeathsB     float64   `json:"deaths_b"`
	RateA       float64   `json:"rate_a"`
	RateB       float64   `json:"rate_b"`
}

// Dataset is the ordered result of one load. Records are sorted by
// PeriodKey ascending; records sharing a key keep their input order and are
// distinguished by PeriodLabel ("1847 (Before)" vs "1847 (After)").
// A Dataset is immutable after Build — derived views copy, they never
// mutate.
type Dataset struct {
	Variant Variant             `json:"variant"`
	Records []ObservationRecord `json:"records"`
	// Dropped counts source rows discarded because their period failed to
	// normalize or a count field failed numeric coercion. Exposed so the
	// caller can warn users when data loss is significant.
	Dropped int `json:"dropped_rows"`
}

// Build runs the full pipeline over a raw table: schema validation, then
// per-row period normalization and numeric coercion, then rate derivation
// and ordering. Row-level failures drop the row and increment Dropped;
// only a schema mismatch fails the load.
func Build(variant Variant, table *ingest.Table) (*Dataset, error) {
	if err := variant.Validate(table); err != nil {
		return nil, err
	}

	periodIdx, _ := table.ColumnIndex(variant.PeriodColumn())
	countCols := variant.CountColumns()
	var countIdx [4]int
	for i, col := range countCols {
		countIdx[i], _ = table.ColumnIndex(col)
	}

	ds := &Dataset{Variant: variant}
	for _, row := range table.Rows {
		rawPeriod := table.Cell(row, periodIdx)
		key, ok := variant.ParsePeriod(rawPeriod)
		if !ok {
			ds.Dropped++
			continue
		}

		// All four counts must coerce or the whole row goes; partial rows
		// are never retained.
		var counts [4]float64
		ok = true
		for i, idx := range countIdx {
			counts[i], ok = coerceCount(table.Cell(row, idx))
			if !ok {
				break
			}
		}
		if !ok {
			ds.Dropped++
			continue
		}

		ds.Records = append(ds.Records, ObservationRecord{
			PeriodLabel: rawPeriod,
			PeriodKey:   key,
			BirthsA:     counts[0],
			DeathsA:     counts[1],
			BirthsB:     counts[2],
			DeathsB:     counts[3],
			RateA:       Rate(counts[1], counts[0]),
			RateB:       Rate(counts[3], counts[2]),
		})
	}

	sort.SliceStable(ds.Records, func(i, j int) bool {
		return ds.Records[i].PeriodKey < ds.Records[j].PeriodKey
	})

	return ds, nil
}

// coerceCount coerces a raw count cell to a number. Empty and non-numeric
// values fail; thousands separators are tolerated. Negative values coerce
// and pass through.
func coerceCount(raw string) (float64, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Bounds returns the minimum and maximum period keys of the Dataset. The
// third result is false for an empty Dataset.
func (d *Dataset) Bounds() (min, max PeriodKey, ok bool) {
	if len(d.Records) == 0 {
		return 0, 0, false
	}
	return d.Records[0].PeriodKey, d.Records[len(d.Records)-1].PeriodKey, true
}

// FilterRange returns the records whose period key lies within [from, to],
// inclusive on both bounds, in dataset order. Bounds are not clamped: a
// range outside the dataset simply yields an empty or partial result,
// which is valid, not an error.
func (d *Dataset) FilterRange(from, to PeriodKey) []ObservationRecord {
	subset := make([]ObservationRecord, 0, len(d.Records))
	for _, rec := range d.Records {
		if rec.PeriodKey >= from && rec.PeriodKey <= to {
			subset = append(subset, rec)
		}
	}
	return subset
}
