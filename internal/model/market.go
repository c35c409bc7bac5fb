package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Metal identifies a tracked metal, e.g. "gold" or "silver".
type Metal string

const (
	Gold   Metal = "gold"
	Silver Metal = "silver"
)

// DateLayout is the canonical calendar-day format used in output.
const DateLayout = "2006-01-02"

// PricePoint is a single daily reading. An invalid Price is an explicit missing value.
type PricePoint struct {
	Date  time.Time
	Price decimal.NullDecimal
}

// Missing reports whether the reading is absent.
func (p PricePoint) Missing() bool { return !p.Price.Valid }

// PriceSeries is the ordered daily history of one metal.
// Dates are strictly ascending and unique; gaps are allowed.
type PriceSeries struct {
	Metal  Metal
	Points []PricePoint
}

// NewPriceSeries sorts the points by date and rejects duplicate dates.
func NewPriceSeries(metal Metal, points []PricePoint) (*PriceSeries, error) {
	sorted := make([]PricePoint, len(points))
	for i, p := range points {
		sorted[i] = PricePoint{Date: Day(p.Date), Price: p.Price}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return nil, fmt.Errorf("%s %s: %w", metal, sorted[i].Date.Format(DateLayout), ErrDuplicateDate)
		}
	}
	return &PriceSeries{Metal: metal, Points: sorted}, nil
}

// Len returns the number of points, missing readings included.
func (s *PriceSeries) Len() int { return len(s.Points) }

// Suffix returns the last n points. n <= 0 or n >= Len returns the full series.
func (s *PriceSeries) Suffix(n int) *PriceSeries {
	if n <= 0 || n >= len(s.Points) {
		return s
	}
	return &PriceSeries{Metal: s.Metal, Points: s.Points[len(s.Points)-n:]}
}

// Range returns the points with start <= date <= end.
func (s *PriceSeries) Range(start, end time.Time) *PriceSeries {
	start, end = Day(start), Day(end)
	lo := sort.Search(len(s.Points), func(i int) bool { return !s.Points[i].Date.Before(start) })
	hi := sort.Search(len(s.Points), func(i int) bool { return s.Points[i].Date.After(end) })
	if lo >= hi {
		return &PriceSeries{Metal: s.Metal}
	}
	return &PriceSeries{Metal: s.Metal, Points: s.Points[lo:hi]}
}

// Observed returns the non-missing points in date order.
func (s *PriceSeries) Observed() []PricePoint {
	out := make([]PricePoint, 0, len(s.Points))
	for _, p := range s.Points {
		if !p.Missing() {
			out = append(out, p)
		}
	}
	return out
}

// Day truncates t to a UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NullDecimalOf wraps a present decimal value.
func NullDecimalOf(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
