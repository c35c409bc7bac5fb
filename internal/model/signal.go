package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Recommendation is the label derived from a buy score.
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG_BUY"
	Buy        Recommendation = "BUY"
	Hold       Recommendation = "HOLD"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG_SELL"
)

// Direction compares the latest observed price with the previous one.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionSame Direction = "same"
)

// SignalScore is one weighted input to the buy score.
type SignalScore struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"` // 0~100, higher favours buying
	Weight       float64 `json:"weight"`       // applied weight after renormalisation
	Weighted     float64 `json:"weighted"`
	Commentary   string  `json:"commentary"`
}

// Decision is the scorer's output for one IndicatorSet.
type Decision struct {
	BuyScore       int
	Recommendation Recommendation
	Reasoning      string
	Signals        []SignalScore
}

// DecisionRecord is the daily decision for one metal.
type DecisionRecord struct {
	Metal          Metal               `json:"metal"`
	Date           time.Time           `json:"-"`
	Price          decimal.Decimal     `json:"price"`
	PreviousPrice  decimal.NullDecimal `json:"previous_price"`
	Change         decimal.NullDecimal `json:"change"`
	ChangePct      *float64            `json:"change_pct"`
	Direction      Direction           `json:"direction,omitempty"`
	BuyScore       int                 `json:"buy_score"`
	Recommendation Recommendation      `json:"recommendation"`
	Reasoning      string              `json:"reasoning"`
	Signals        []SignalScore       `json:"signals"`
	IndicatorSet
}

// MarshalJSON renders Date as a calendar day.
func (r DecisionRecord) MarshalJSON() ([]byte, error) {
	type alias DecisionRecord
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{Date: r.Date.Format(DateLayout), alias: alias(r)})
}
