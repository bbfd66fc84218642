package dataset

// SummaryMetrics is the KPI reduction over a period subset: pooled totals
// and an overall rate per cohort. It is derived on demand, never stored.
type SummaryMetrics struct {
	Periods      int     `json:"periods"`
	TotalBirthsA float64 `json:"total_births_a"`
	TotalDeathsA float64 `json:"total_deaths_a"`
	RateA        float64 `json:"rate_a"`
	TotalBirthsB float64 `json:"total_births_b"`
	TotalDeathsB float64 `json:"total_deaths_b"`
	RateB        float64 `json:"rate_b"`
}

// Summarize reduces a subset to totals and overall rates. The overall rate
// is computed on pooled totals, not as the mean of per-period rates, so
// periods with small denominators do not skew it. An empty subset yields
// all zeros, never an error.
func Summarize(subset []ObservationRecord) SummaryMetrics {
	var m SummaryMetrics
	for _, rec := range subset {
		m.TotalBirthsA += rec.BirthsA
		m.TotalDeathsA += rec.DeathsA
		m.TotalBirthsB += rec.BirthsB
		m.TotalDeathsB += rec.DeathsB
	}
	m.Periods = len(subset)
	m.RateA = Rate(m.TotalDeathsA, m.TotalBirthsA)
	m.RateB = Rate(m.TotalDeathsB, m.TotalBirthsB)
	return m
}
