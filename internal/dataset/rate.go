package dataset

// Rate returns deaths divided by births. When births is zero the rate is
// defined as exactly 0 regardless of deaths, so downstream aggregation
// never sees NaN or Inf. Negative inputs pass through arithmetically; the
// result is then outside [0,1] and interpreting it is the caller's
// responsibility.
func Rate(deaths, births float64) float64 {
	if births == 0 {
		return 0
	}
	return deaths / births
}
