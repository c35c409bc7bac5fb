package calculator

// MACDSeries holds the MACD line, its signal line and the histogram, index-aligned with the prices.
type MACDSeries struct {
	Line   []*float64
	Signal []*float64
	Hist   []*float64
}

// MACD computes EMA(fast) - EMA(slow) and an SMA-seeded EMA(signal) of that line.
func MACD(prices []float64, fast, slow, signal int) MACDSeries {
	n := len(prices)
	res := MACDSeries{
		Line:   make([]*float64, n),
		Signal: make([]*float64, n),
		Hist:   make([]*float64, n),
	}
	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)

	start := -1
	var line []float64
	for i := 0; i < n; i++ {
		if fastEMA[i] == nil || slowEMA[i] == nil {
			continue
		}
		if start < 0 {
			start = i
		}
		v := *fastEMA[i] - *slowEMA[i]
		res.Line[i] = ptr(v)
		line = append(line, v)
	}
	if start < 0 {
		return res
	}

	sig := EMA(line, signal)
	for j, s := range sig {
		if s == nil {
			continue
		}
		i := start + j
		res.Signal[i] = s
		res.Hist[i] = ptr(*res.Line[i] - *s)
	}
	return res
}
