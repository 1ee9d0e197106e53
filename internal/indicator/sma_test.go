package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
		want   float64
	}{
		{
			name:   "exact window",
			prices: []float64{1, 2, 3, 4, 5},
			period: 5,
			want:   3,
		},
		{
			name:   "uses most recent samples",
			prices: []float64{100, 100, 100, 10, 20, 30},
			period: 3,
			want:   20,
		},
		{
			name:   "short history averages everything",
			prices: []float64{10, 20},
			period: 5,
			want:   15,
		},
		{
			name:   "single sample",
			prices: []float64{42.5},
			period: 20,
			want:   42.5,
		},
		{
			name:   "empty input",
			prices: nil,
			period: 10,
			want:   0,
		},
		{
			name:   "zero period",
			prices: []float64{1, 2, 3},
			period: 0,
			want:   0,
		},
		{
			name:   "drops invalid samples",
			prices: []float64{0, -5, math.NaN(), 10, 20, 30},
			period: 3,
			want:   20,
		},
		{
			name:   "only invalid samples",
			prices: []float64{0, -1, math.Inf(1)},
			period: 3,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.prices, tt.period)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

// The average of any price series must sit inside [min, max] of the
// valid samples regardless of the window size.
func TestMovingAverageBounds(t *testing.T) {
	prices := []float64{148.2, 151.7, 149.9, 153.4, 150.1, 147.6, 152.3}

	for period := 1; period <= len(prices)+3; period++ {
		got := MovingAverage(prices, period)
		assert.GreaterOrEqual(t, got, 147.6, "period %d", period)
		assert.LessOrEqual(t, got, 153.4, "period %d", period)
	}
}
