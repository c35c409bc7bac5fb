package strategy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/thivinthegreat/gold-rate-tracker/internal/calculator"
	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
)

// Tiers maps a buy score to a recommendation, highest band first.
var Tiers = []struct {
	MinScore       int
	Recommendation model.Recommendation
}{
	{80, model.StrongBuy},
	{60, model.Buy},
	{40, model.Hold},
	{20, model.Sell},
}

// DefaultTier is the recommendation for scores below every band.
var DefaultTier = model.StrongSell

// mapTier maps a buy score to a Recommendation.
func mapTier(score int) model.Recommendation {
	for _, t := range Tiers {
		if score >= t.MinScore {
			return t.Recommendation
		}
	}
	return DefaultTier
}

// Score combines an indicator set into a buy score, label and reasoning.
// Weights of missing signals are redistributed proportionally over the
// present ones. ok is false when no signal is present.
func Score(ind model.IndicatorSet) (model.Decision, bool) {
	present := extractSignals(ind)
	if len(present) == 0 {
		return model.Decision{}, false
	}

	var baseTotal float64
	for _, w := range Weights {
		if _, ok := present[w.Name]; ok {
			baseTotal += w.Weight
		}
	}

	type ranked struct {
		sig       signal
		dominance float64
		order     int
	}
	var (
		total   float64
		signals []model.SignalScore
		ranking []ranked
	)
	for i, w := range Weights {
		s, ok := present[w.Name]
		if !ok {
			continue
		}
		applied := w.Weight * 100 / baseTotal
		weighted := applied * s.contribution / 100
		total += weighted
		signals = append(signals, model.SignalScore{
			Name:         s.name,
			Value:        s.value,
			Contribution: s.contribution,
			Weight:       applied,
			Weighted:     weighted,
			Commentary:   s.commentary,
		})
		ranking = append(ranking, ranked{sig: s, dominance: applied * math.Abs(s.contribution-50), order: i})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].dominance != ranking[j].dominance {
			return ranking[i].dominance > ranking[j].dominance
		}
		return ranking[i].order < ranking[j].order
	})
	phrases := []string{ranking[0].sig.phrase}
	if len(ranking) > 1 {
		phrases = append(phrases, ranking[1].sig.phrase)
	}

	score := int(math.Round(total))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return model.Decision{
		BuyScore:       score,
		Recommendation: mapTier(score),
		Reasoning:      strings.Join(phrases, "; "),
		Signals:        signals,
	}, true
}

// Evaluate computes the decision record for a series at its latest observed point.
// Missing readings are skipped. It fails with model.ErrInsufficientHistory when
// nothing can be scored, and with model.ErrBadPrice when a price or indicator
// does not fit a float64.
func Evaluate(series *model.PriceSeries) (*model.DecisionRecord, error) {
	observed := series.Observed()
	if len(observed) == 0 {
		return nil, fmt.Errorf("%s: no observed prices: %w", series.Metal, model.ErrInsufficientHistory)
	}

	prices := make([]float64, len(observed))
	for i, p := range observed {
		prices[i], _ = p.Price.Decimal.Float64()
		if math.IsInf(prices[i], 0) || prices[i] == 0 {
			return nil, fmt.Errorf("%s %s: price %s out of range: %w",
				series.Metal, p.Date.Format(model.DateLayout), p.Price.Decimal, model.ErrBadPrice)
		}
	}

	ind := calculator.Compute(prices)
	if !ind.Finite() {
		return nil, fmt.Errorf("%s: indicators overflow: %w", series.Metal, model.ErrBadPrice)
	}
	decision, ok := Score(ind)
	if !ok {
		return nil, fmt.Errorf("%s: %d observed prices, no signal available: %w",
			series.Metal, len(observed), model.ErrInsufficientHistory)
	}

	last := observed[len(observed)-1]
	rec := &model.DecisionRecord{
		Metal:          series.Metal,
		Date:           last.Date,
		Price:          last.Price.Decimal,
		BuyScore:       decision.BuyScore,
		Recommendation: decision.Recommendation,
		Reasoning:      decision.Reasoning,
		Signals:        decision.Signals,
		IndicatorSet:   ind,
	}

	if len(observed) > 1 {
		prev := observed[len(observed)-2].Price.Decimal
		change := last.Price.Decimal.Sub(prev)
		rec.PreviousPrice = model.NullDecimalOf(prev)
		rec.Change = model.NullDecimalOf(change)
		if !prev.IsZero() {
			pct, _ := change.Div(prev).Float64()
			pct *= 100
			rec.ChangePct = &pct
		}
		switch change.Sign() {
		case 1:
			rec.Direction = model.DirectionUp
		case -1:
			rec.Direction = model.DirectionDown
		default:
			rec.Direction = model.DirectionSame
		}
	}
	return rec, nil
}
