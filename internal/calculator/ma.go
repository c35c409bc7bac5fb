package calculator

// SMA computes the simple moving average of the trailing window ending at each index.
// Entries before the first full window are nil.
func SMA(prices []float64, window int) []*float64 {
	out := make([]*float64, len(prices))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(prices); i++ {
		out[i] = ptr(mean(prices[i-window+1 : i+1]))
	}
	return out
}

// EMA computes the exponential moving average, seeded with SMA(window) at the
// first index where it is defined. alpha = 2/(window+1).
func EMA(prices []float64, window int) []*float64 {
	out := make([]*float64, len(prices))
	if window <= 0 || len(prices) < window {
		return out
	}
	alpha := 2.0 / float64(window+1)
	prev := mean(prices[:window])
	out[window-1] = ptr(prev)
	for i := window; i < len(prices); i++ {
		prev = prices[i]*alpha + prev*(1-alpha)
		out[i] = ptr(prev)
	}
	return out
}

// TrailingMean returns the mean of the last n prices, or nil if fewer exist.
func TrailingMean(prices []float64, n int) *float64 {
	if n <= 0 || len(prices) < n {
		return nil
	}
	return ptr(mean(prices[len(prices)-n:]))
}

// PercentDiff returns (latest - ref) / ref * 100. A nil or zero reference yields nil.
func PercentDiff(latest float64, ref *float64) *float64 {
	if ref == nil || *ref == 0 {
		return nil
	}
	return ptr((latest - *ref) / *ref * 100)
}

// Last returns the final entry of an indicator series.
func Last(series []*float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	return series[len(series)-1]
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func ptr(v float64) *float64 { return &v }
