package calculator

import "github.com/thivinthegreat/gold-rate-tracker/internal/model"

// Indicator windows.
const (
	WeeklyWindow    = 7
	SMA20Window     = 20
	MonthlyWindow   = 30
	EMAFast         = 12
	EMASlow         = 26
	MACDSignal      = 9
	RSIWindow       = 14
	BollingerWindow = 20
	BollingerK      = 2.0
)

// Compute returns the indicator set at the last of the given prices.
// Prices are the observed readings of one metal in date order.
func Compute(prices []float64) model.IndicatorSet {
	var ind model.IndicatorSet
	if len(prices) == 0 {
		return ind
	}
	latest := prices[len(prices)-1]

	ind.SMA7 = Last(SMA(prices, WeeklyWindow))
	ind.SMA20 = Last(SMA(prices, SMA20Window))
	ind.SMA30 = Last(SMA(prices, MonthlyWindow))
	ind.EMA12 = Last(EMA(prices, EMAFast))
	ind.EMA26 = Last(EMA(prices, EMASlow))

	macd := MACD(prices, EMAFast, EMASlow, MACDSignal)
	ind.MACD = Last(macd.Line)
	ind.MACDSignal = Last(macd.Signal)
	ind.MACDHist = Last(macd.Hist)

	ind.RSI14 = Last(RSI(prices, RSIWindow))

	if bands := Bollinger(prices, BollingerWindow, BollingerK); bands[len(bands)-1] != nil {
		ind.BollingerPositionPct = ptr(bands[len(bands)-1].PositionPct)
	}

	ind.WeeklyAvg = TrailingMean(prices, WeeklyWindow)
	ind.WeeklyDiffPct = PercentDiff(latest, ind.WeeklyAvg)
	ind.MonthlyAvg = TrailingMean(prices, MonthlyWindow)
	ind.MonthlyDiffPct = PercentDiff(latest, ind.MonthlyAvg)
	ind.SMA20DistancePct = PercentDiff(latest, ind.SMA20)

	return ind
}
