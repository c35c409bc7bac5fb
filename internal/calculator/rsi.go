package calculator

// RSI computes the Wilder-smoothed relative strength index at each index.
// The first value appears once window+1 prices exist. When the average loss
// is zero the RSI is 100.
func RSI(prices []float64, window int) []*float64 {
	out := make([]*float64, len(prices))
	if window <= 0 || len(prices) < window+1 {
		return out
	}

	// Initial average gain/loss over the first `window` changes
	var avgGain, avgLoss float64
	for i := 1; i <= window; i++ {
		gain, loss := split(prices[i] - prices[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)
	out[window] = ptr(rsiValue(avgGain, avgLoss))

	// Wilder smoothing for remaining prices
	p := float64(window)
	for i := window + 1; i < len(prices); i++ {
		gain, loss := split(prices[i] - prices[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = ptr(rsiValue(avgGain, avgLoss))
	}
	return out
}

func split(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	// guard against rounding just outside the band
	switch {
	case rsi < 0:
		return 0
	case rsi > 100:
		return 100
	}
	return rsi
}
