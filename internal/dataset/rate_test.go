package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name   string
		deaths float64
		births float64
		want   float64
	}{
		{name: "typical", deaths: 5, births: 100, want: 0.05},
		{name: "zero deaths", deaths: 0, births: 250, want: 0},
		{name: "zero births", deaths: 0, births: 0, want: 0},
		{name: "zero births nonzero deaths", deaths: 12, births: 0, want: 0},
		{name: "all deaths", deaths: 90, births: 90, want: 1},
		{name: "negative births pass through", deaths: 5, births: -100, want: -0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rate(tt.deaths, tt.births)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.False(t, math.IsNaN(got))
			assert.False(t, math.IsInf(got, 0))
		})
	}
}
