package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicpulse/internal/ingest"
)

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("yearly")
	require.NoError(t, err)
	assert.Equal(t, Yearly, v)

	v, err = ParseVariant(" Monthly ")
	require.NoError(t, err)
	assert.Equal(t, Monthly, v)

	_, err = ParseVariant("weekly")
	assert.Error(t, err)
}

func TestYearlyParsePeriod(t *testing.T) {
	tests := []struct {
		raw  string
		want PeriodKey
		ok   bool
	}{
		{raw: "1847", want: 1847, ok: true},
		{raw: "1847 (Before)", want: 1847, ok: true},
		{raw: "Year of 1846, pre-intervention", want: 1846, ok: true},
		{raw: "18471850", want: 1847, ok: true}, // first 4-digit run wins
		{raw: "no digits here", ok: false},
		{raw: "184", ok: false},
		{raw: "", ok: false},
		{raw: "   ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			key, ok := Yearly.ParsePeriod(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, key)
			}
		})
	}
}

func TestMonthlyParsePeriod(t *testing.T) {
	tests := []struct {
		raw  string
		want PeriodKey
		ok   bool
	}{
		{raw: "1841-01-01", want: 18410101, ok: true},
		{raw: "1841/03/15", want: 18410315, ok: true},
		{raw: "1841-06", want: 18410601, ok: true},
		{raw: "not a date", ok: false},
		{raw: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			key, ok := Monthly.ParsePeriod(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, key)
			}
		})
	}
}

func TestMonthlyKeysOrderChronologically(t *testing.T) {
	dec, ok := Monthly.ParsePeriod("1841-12-01")
	require.True(t, ok)
	jan, ok := Monthly.ParsePeriod("1842-01-01")
	require.True(t, ok)
	assert.Less(t, dec, jan)
}

func TestParseKey(t *testing.T) {
	key, err := Yearly.ParseKey("1847")
	require.NoError(t, err)
	assert.Equal(t, PeriodKey(1847), key)

	// Filter bounds are strict, unlike row normalization.
	_, err = Yearly.ParseKey("1847 (Before)")
	assert.Error(t, err)

	key, err = Monthly.ParseKey("1841-03-01")
	require.NoError(t, err)
	assert.Equal(t, PeriodKey(18410301), key)

	_, err = Monthly.ParseKey("springtime")
	assert.Error(t, err)
}

func TestFormatKey(t *testing.T) {
	assert.Equal(t, "1847", Yearly.FormatKey(1847))
	assert.Equal(t, "1841-03-15", Monthly.FormatKey(18410315))
}

func TestValidateReportsAllMissingColumns(t *testing.T) {
	table := &ingest.Table{Header: []string{"Year", "Births in Clinic 2"}}

	err := Yearly.Validate(table)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{
		"Births in Clinic 1",
		"Deaths in Clinic 1",
		"Deaths in Clinic 2",
	}, schemaErr.Missing)
	assert.Contains(t, schemaErr.Error(), "Deaths in Clinic 1")
}

func TestValidateCaseSensitive(t *testing.T) {
	table := &ingest.Table{Header: []string{
		"year", // wrong case
		"Births in Clinic 1",
		"Deaths in Clinic 1",
		"Births in Clinic 2",
		"Deaths in Clinic 2",
	}}

	var schemaErr *SchemaError
	require.ErrorAs(t, Yearly.Validate(table), &schemaErr)
	assert.Equal(t, []string{"Year"}, schemaErr.Missing)
}

func TestValidatePassesWithExtraColumns(t *testing.T) {
	table := &ingest.Table{Header: append(Yearly.RequiredColumns(), "Notes")}
	assert.NoError(t, Yearly.Validate(table))
}

func TestMonthlyRequiredColumns(t *testing.T) {
	assert.Equal(t, []string{
		"month",
		"births_clinic1",
		"deaths_clinic1",
		"births_clinic2",
		"deaths_clinic2",
	}, Monthly.RequiredColumns())
}
