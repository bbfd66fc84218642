package dataset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"clinicpulse/internal/ingest"
)

// PeriodKey is the normalized, totally-ordered representation of a period.
// Yearly sources use the plain year (1847); monthly sources use the date
// packed as yyyymmdd (20200315). Keys from different variants are never
// mixed within one Dataset.
type PeriodKey int64

// Variant selects which of the two accepted column schemas a deployment
// ingests. It carries the schema's required columns and its period-parsing
// strategy; it is chosen once at configuration time, never auto-detected.
type Variant int

const (
	// Yearly ingests free-text year labels ("1847", "1847 (Before)").
	Yearly Variant = iota
	// Monthly ingests calendar date strings.
	Monthly
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// Date layouts accepted for the monthly variant, most specific first.
var monthLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01",
	"01/2006",
	"Jan 2006",
	"January 2006",
}

// ParseVariant resolves a configuration string to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yearly", "year":
		return Yearly, nil
	case "monthly", "month":
		return Monthly, nil
	default:
		return Yearly, fmt.Errorf("unknown dataset variant: %q", s)
	}
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	if v == Monthly {
		return "monthly"
	}
	return "yearly"
}

// PeriodColumn returns the column holding the raw period value.
func (v Variant) PeriodColumn() string {
	if v == Monthly {
		return "month"
	}
	return "Year"
}

// CountColumns returns the four count columns in births-A, deaths-A,
// births-B, deaths-B order.
func (v Variant) CountColumns() [4]string {
	if v == Monthly {
		return [4]string{"births_clinic1", "deaths_clinic1", "births_clinic2", "deaths_clinic2"}
	}
	return [4]string{
		"Births in Clinic 1",
		"Deaths in Clinic 1",
		"Births in Clinic 2",
		"Deaths in Clinic 2",
	}
}

// RequiredColumns returns the full required-column set for the variant.
func (v Variant) RequiredColumns() []string {
	counts := v.CountColumns()
	return append([]string{v.PeriodColumn()}, counts[:]...)
}

// ParsePeriod normalizes a raw period value into an orderable key. The
// yearly variant extracts the first run of four consecutive digits from the
// label; the monthly variant parses the value as a calendar date. A false
// result means the row carries no usable period and is dropped by Build.
func (v Variant) ParsePeriod(raw string) (PeriodKey, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	if v == Monthly {
		for _, layout := range monthLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return dateKey(t), true
			}
		}
		return 0, false
	}

	match := yearPattern.FindString(raw)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return PeriodKey(year), true
}

// ParseKey parses a filter bound supplied by the caller ("1847" for yearly,
// a date string for monthly) into a PeriodKey. Unlike ParsePeriod it is
// strict: a malformed bound is a caller error, not missing data.
func (v Variant) ParseKey(s string) (PeriodKey, error) {
	s = strings.TrimSpace(s)
	if v == Monthly {
		for _, layout := range monthLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return dateKey(t), nil
			}
		}
		return 0, fmt.Errorf("invalid monthly period bound: %q", s)
	}

	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid yearly period bound: %q", s)
	}
	return PeriodKey(year), nil
}

// FormatKey renders a key for display and API responses.
func (v Variant) FormatKey(k PeriodKey) string {
	if v == Monthly {
		year := int(k / 10000)
		month := time.Month(k / 100 % 100)
		day := int(k % 100)
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	}
	return strconv.FormatInt(int64(k), 10)
}

func dateKey(t time.Time) PeriodKey {
	return PeriodKey(t.Year()*10000 + int(t.Month())*100 + t.Day())
}

// SchemaError reports required columns missing from a raw table. All
// missing columns are collected into one failure so the user can fix the
// source in a single pass.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Missing, ", "))
}

// Validate checks that the table exposes every required column for the
// variant. It is a gate, not a transform: on success the table passes
// through untouched. The column check is exact and case-sensitive, and all
// missing columns are reported at once in schema order.
func (v Variant) Validate(table *ingest.Table) error {
	var missing []string
	for _, col := range v.RequiredColumns() {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}
