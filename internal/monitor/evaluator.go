package monitor

// Evaluate reports whether the exit signal is active for a position
// side given the latest price and moving average. A long position
// signals when price drops below the average, a short position when
// price rises above it. Equality is never a signal.
func Evaluate(direction Direction, price, ma float64) bool {
	if price <= 0 || ma <= 0 {
		return false
	}

	switch direction {
	case DirectionLong:
		return price < ma
	case DirectionShort:
		return price > ma
	default:
		return false
	}
}
