package calculator

import "math"

// Band is one Bollinger band reading.
type Band struct {
	Mid         float64
	Upper       float64
	Lower       float64
	PositionPct float64 // not clamped: <0 or >100 is a breakout
}

// StdDev computes the sample standard deviation (n-1) of the trailing window at each index.
// A window of identical prices has a deviation of exactly 0.
func StdDev(prices []float64, window int) []*float64 {
	out := make([]*float64, len(prices))
	if window < 2 {
		return out
	}
	for i := window - 1; i < len(prices); i++ {
		w := prices[i-window+1 : i+1]
		if flat(w) {
			out[i] = ptr(0)
			continue
		}
		m := mean(w)
		sq := 0.0
		for _, v := range w {
			sq += (v - m) * (v - m)
		}
		out[i] = ptr(math.Sqrt(sq / float64(window-1)))
	}
	return out
}

// Bollinger computes SMA(window) +/- k standard deviations and the position of
// each price inside the band. Entries before the first full window are nil.
func Bollinger(prices []float64, window int, k float64) []*Band {
	out := make([]*Band, len(prices))
	mids := SMA(prices, window)
	sds := StdDev(prices, window)
	for i := range prices {
		if mids[i] == nil || sds[i] == nil {
			continue
		}
		mid, half := *mids[i], k**sds[i]
		lower, upper := mid-half, mid+half
		out[i] = &Band{
			Mid:         mid,
			Upper:       upper,
			Lower:       lower,
			PositionPct: BandPosition(prices[i], lower, upper),
		}
	}
	return out
}

// BandPosition returns where current sits between lower and upper, in percent.
// A collapsed band (flat window) puts the price in the middle.
func BandPosition(current, lower, upper float64) float64 {
	if upper == lower {
		return 50
	}
	return (current - lower) / (upper - lower) * 100
}

// flat reports whether every value equals the first. Checked on the raw
// values: the float mean of a repeated 78.3 is off by an ulp.
func flat(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
