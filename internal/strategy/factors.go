package strategy

import (
	"fmt"
	"math"

	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
)

// Signal names, in tie-break order.
const (
	SignalRSI       = "rsi"
	SignalBollinger = "bollinger"
	SignalSMA20     = "sma20"
	SignalWeekly    = "weekly"
	SignalMonthly   = "monthly"
	SignalTrend     = "trend"
)

// Base weights; they sum to 100 when every signal is present.
var Weights = []struct {
	Name   string
	Weight float64
}{
	{SignalRSI, 25},
	{SignalBollinger, 20},
	{SignalSMA20, 15},
	{SignalWeekly, 10},
	{SignalMonthly, 10},
	{SignalTrend, 20},
}

// Scale factors mapping percentages onto the 0~100 contribution.
const (
	// points of contribution per 1% distance from an average
	distancePointsPerPct = 10.0
	// points of contribution per 1% of EMA12 over EMA26
	trendPointsPerPct = 25.0
)

// signal is one raw input before weighting.
type signal struct {
	name         string
	value        float64
	contribution float64
	commentary   string
	phrase       string
}

// extractSignals returns the present signals keyed by name.
func extractSignals(ind model.IndicatorSet) map[string]signal {
	out := make(map[string]signal, len(Weights))
	if s, ok := scoreRSI(ind.RSI14); ok {
		out[s.name] = s
	}
	if s, ok := scoreBollinger(ind.BollingerPositionPct); ok {
		out[s.name] = s
	}
	if s, ok := scoreDistance(SignalSMA20, "20-day average", ind.SMA20DistancePct); ok {
		out[s.name] = s
	}
	if s, ok := scoreDistance(SignalWeekly, "weekly average", ind.WeeklyDiffPct); ok {
		out[s.name] = s
	}
	if s, ok := scoreDistance(SignalMonthly, "monthly average", ind.MonthlyDiffPct); ok {
		out[s.name] = s
	}
	if s, ok := scoreTrend(ind.EMA12, ind.EMA26); ok {
		out[s.name] = s
	}
	return out
}

// scoreRSI inverts the RSI: oversold raises the score.
func scoreRSI(rsi *float64) (signal, bool) {
	if rsi == nil {
		return signal{}, false
	}
	var phrase string
	switch {
	case *rsi <= 30:
		phrase = fmt.Sprintf("RSI indicates oversold conditions (RSI %.1f)", *rsi)
	case *rsi >= 70:
		phrase = fmt.Sprintf("RSI indicates overbought conditions (RSI %.1f)", *rsi)
	case *rsi < 50:
		phrase = fmt.Sprintf("RSI shows weak momentum (RSI %.1f)", *rsi)
	default:
		phrase = fmt.Sprintf("RSI shows firm momentum (RSI %.1f)", *rsi)
	}
	return signal{
		name:         SignalRSI,
		value:        *rsi,
		contribution: clamp(100 - *rsi),
		commentary:   fmt.Sprintf("RSI=%.1f", *rsi),
		phrase:       phrase,
	}, true
}

// scoreBollinger inverts the band position: near the lower band raises the score.
func scoreBollinger(pos *float64) (signal, bool) {
	if pos == nil {
		return signal{}, false
	}
	var phrase string
	switch {
	case *pos < 0:
		phrase = fmt.Sprintf("price has broken below the lower Bollinger band (%.0f%%)", *pos)
	case *pos <= 20:
		phrase = fmt.Sprintf("price is near the lower Bollinger band (%.0f%%)", *pos)
	case *pos > 100:
		phrase = fmt.Sprintf("price has broken above the upper Bollinger band (%.0f%%)", *pos)
	case *pos >= 80:
		phrase = fmt.Sprintf("price is near the upper Bollinger band (%.0f%%)", *pos)
	default:
		phrase = fmt.Sprintf("price sits inside the Bollinger band (%.0f%%)", *pos)
	}
	return signal{
		name:         SignalBollinger,
		value:        *pos,
		contribution: clamp(100 - *pos),
		commentary:   fmt.Sprintf("position=%.0f%%", *pos),
		phrase:       phrase,
	}, true
}

// scoreDistance maps a percentage above/below an average: below raises the score.
func scoreDistance(name, label string, pct *float64) (signal, bool) {
	if pct == nil {
		return signal{}, false
	}
	var phrase string
	switch {
	case *pct < 0:
		phrase = fmt.Sprintf("price is %.1f%% below its %s", -*pct, label)
	case *pct > 0:
		phrase = fmt.Sprintf("price is %.1f%% above its %s", *pct, label)
	default:
		phrase = fmt.Sprintf("price is at its %s", label)
	}
	return signal{
		name:         name,
		value:        *pct,
		contribution: clamp(50 - distancePointsPerPct**pct),
		commentary:   fmt.Sprintf("%+.2f%%", *pct),
		phrase:       phrase,
	}, true
}

// scoreTrend follows the EMA12/EMA26 spread: an uptrend raises the score.
func scoreTrend(fast, slow *float64) (signal, bool) {
	if fast == nil || slow == nil || *slow == 0 {
		return signal{}, false
	}
	spread := (*fast - *slow) / *slow * 100
	var phrase string
	switch {
	case spread > 0:
		phrase = fmt.Sprintf("EMA12 is %.2f%% above EMA26, an uptrend", spread)
	case spread < 0:
		phrase = fmt.Sprintf("EMA12 is %.2f%% below EMA26, a downtrend", -spread)
	default:
		phrase = "EMA12 and EMA26 are flat"
	}
	return signal{
		name:         SignalTrend,
		value:        spread,
		contribution: clamp(50 + trendPointsPerPct*spread),
		commentary:   fmt.Sprintf("EMA spread %+.2f%%", spread),
		phrase:       phrase,
	}, true
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
