// Package history loads per-metal daily price series from the tabular history
// file maintained by the upstream scraper.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
)

// Schema declares once how each history column is typed.
// Dates are parsed with DateLayouts, price columns as decimals, and a cell equal
// to one of MissingMarkers is an explicit missing reading.
type Schema struct {
	DateColumn     string
	DateLayouts    []string
	MissingMarkers []string
	Metals         map[model.Metal]string // metal -> price column
}

// DefaultSchema matches the scraper's history.csv: date,gold,silver,...
func DefaultSchema() Schema {
	return Schema{
		DateColumn:     "date",
		DateLayouts:    []string{"2006-01-02", "02/01/2006"},
		MissingMarkers: []string{"", "NA", "N/A", "NaN", "nan", "null", "None", "-"},
		Metals: map[model.Metal]string{
			model.Gold:   "gold",
			model.Silver: "silver",
		},
	}
}

// Validate checks that the schema can drive a load.
func (s Schema) Validate() error {
	if s.DateColumn == "" {
		return fmt.Errorf("schema: date column is required")
	}
	if len(s.DateLayouts) == 0 {
		return fmt.Errorf("schema: at least one date layout is required")
	}
	if len(s.Metals) == 0 {
		return fmt.Errorf("schema: at least one metal column is required")
	}
	for m, col := range s.Metals {
		if col == "" {
			return fmt.Errorf("schema: metal %s has no column", m)
		}
		if col == s.DateColumn {
			return fmt.Errorf("schema: metal %s reuses the date column", m)
		}
	}
	return nil
}

func (s Schema) parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	// the scraper writes "05/11/2025 10:00 AM" style cells; only the day matters
	if i := strings.IndexByte(v, ' '); i > 0 {
		v = v[:i]
	}
	for _, layout := range s.DateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, model.ErrBadDate
}

func (s Schema) isMissing(v string) bool {
	v = strings.TrimSpace(v)
	for _, m := range s.MissingMarkers {
		if v == m {
			return true
		}
	}
	return false
}
