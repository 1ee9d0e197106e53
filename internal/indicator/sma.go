package indicator

import "math"

// MovingAverage returns the simple arithmetic mean of the most recent
// period samples. Non-positive and non-finite samples are dropped
// before the window is applied. When fewer valid samples than period
// exist the mean of everything available is returned, so freshly
// listed symbols with a short history still get a usable value.
// Returns 0 when no valid samples remain.
func MovingAverage(prices []float64, period int) float64 {
	if len(prices) == 0 || period <= 0 {
		return 0
	}

	valid := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0) {
			valid = append(valid, p)
		}
	}

	if len(valid) == 0 {
		return 0
	}

	window := valid
	if len(valid) >= period {
		window = valid[len(valid)-period:]
	}

	sum := 0.0
	for _, p := range window {
		sum += p
	}
	return sum / float64(len(window))
}
