package model

import "math"

// IndicatorSet holds the technical indicators computed at the latest observed point.
// A nil field means the history was shorter than that indicator's window.
type IndicatorSet struct {
	SMA7                 *float64 `json:"sma7"`
	SMA20                *float64 `json:"sma20"`
	SMA30                *float64 `json:"sma30"`
	EMA12                *float64 `json:"ema12"`
	EMA26                *float64 `json:"ema26"`
	MACD                 *float64 `json:"macd"`
	MACDSignal           *float64 `json:"macd_signal"`
	MACDHist             *float64 `json:"macd_hist"`
	RSI14                *float64 `json:"rsi14"`
	BollingerPositionPct *float64 `json:"boll_position_pct"`
	WeeklyAvg            *float64 `json:"weekly_avg"`
	WeeklyDiffPct        *float64 `json:"weekly_difference_pct"`
	MonthlyAvg           *float64 `json:"monthly_avg"`
	MonthlyDiffPct       *float64 `json:"monthly_difference_pct"`
	SMA20DistancePct     *float64 `json:"sma20_distance_pct"`
}

// Finite reports whether every present indicator is a finite number.
func (s IndicatorSet) Finite() bool {
	for _, v := range []*float64{
		s.SMA7, s.SMA20, s.SMA30, s.EMA12, s.EMA26,
		s.MACD, s.MACDSignal, s.MACDHist, s.RSI14, s.BollingerPositionPct,
		s.WeeklyAvg, s.WeeklyDiffPct, s.MonthlyAvg, s.MonthlyDiffPct, s.SMA20DistancePct,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return false
		}
	}
	return true
}
