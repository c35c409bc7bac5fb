package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
)

// ErrShortRow marks a history row with fewer cells than the schema needs.
var ErrShortRow = errors.New("row is missing cells")

// Store holds the per-metal series loaded from one history file.
// A metal whose column contained a malformed record has an error instead of a series.
type Store struct {
	metals []model.Metal
	series map[model.Metal]*model.PriceSeries
	errs   map[model.Metal]error
}

// LoadFile opens path and loads it with the given schema.
func LoadFile(path string, schema Schema) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()
	return Load(f, schema)
}

// Load reads a CSV history. Header problems and I/O errors fail the whole load;
// malformed records only fail the metals they touch.
func Load(r io.Reader, schema Schema) (*Store, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[h] = i
	}

	dateIdx, ok := index[schema.DateColumn]
	if !ok {
		return nil, fmt.Errorf("header: missing date column %q", schema.DateColumn)
	}

	s := &Store{
		metals: model.SortedMetals(metalsOf(schema)),
		series: make(map[model.Metal]*model.PriceSeries),
		errs:   make(map[model.Metal]error),
	}
	cols := make(map[model.Metal]int, len(schema.Metals))
	for _, m := range s.metals {
		col := schema.Metals[m]
		i, ok := index[col]
		if !ok {
			return nil, fmt.Errorf("header: missing price column %q for %s", col, m)
		}
		cols[m] = i
	}

	points := make(map[model.Metal][]model.PricePoint, len(s.metals))
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read history: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if dateIdx >= len(row) {
			s.failAll(&model.MalformedRecordError{Line: line, Column: schema.DateColumn, Err: ErrShortRow})
			continue
		}
		date, err := schema.parseDate(row[dateIdx])
		if err != nil {
			s.failAll(&model.MalformedRecordError{Line: line, Column: schema.DateColumn, Value: row[dateIdx], Err: err})
			continue
		}

		for _, m := range s.metals {
			if s.errs[m] != nil {
				continue
			}
			col := cols[m]
			if col >= len(row) {
				s.errs[m] = &model.MalformedRecordError{Metal: m, Line: line, Column: schema.Metals[m], Err: ErrShortRow}
				continue
			}
			price, err := parsePrice(schema, row[col])
			if err != nil {
				s.errs[m] = &model.MalformedRecordError{Metal: m, Line: line, Column: schema.Metals[m], Value: row[col], Err: err}
				continue
			}
			points[m] = append(points[m], model.PricePoint{Date: date, Price: price})
		}
	}

	for _, m := range s.metals {
		if s.errs[m] != nil {
			continue
		}
		series, err := model.NewPriceSeries(m, points[m])
		if err != nil {
			s.errs[m] = err
			continue
		}
		s.series[m] = series
	}
	return s, nil
}

// Metals returns the metals declared by the schema, in name order.
func (s *Store) Metals() []model.Metal {
	return append([]model.Metal(nil), s.metals...)
}

// Series returns the ascending series for a metal, or the error that
// aborted loading it.
func (s *Store) Series(m model.Metal) (*model.PriceSeries, error) {
	if err := s.errs[m]; err != nil {
		return nil, err
	}
	series, ok := s.series[m]
	if !ok {
		return nil, fmt.Errorf("history: unknown metal %q", m)
	}
	return series, nil
}

func (s *Store) failAll(e *model.MalformedRecordError) {
	for _, m := range s.metals {
		if s.errs[m] == nil {
			me := *e
			me.Metal = m
			s.errs[m] = &me
		}
	}
}

func parsePrice(schema Schema, v string) (decimal.NullDecimal, error) {
	if schema.isMissing(v) {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.NullDecimal{}, model.ErrBadPrice
	}
	if !d.IsPositive() {
		return decimal.NullDecimal{}, fmt.Errorf("%w: price must be positive", model.ErrBadPrice)
	}
	if f, _ := d.Float64(); f == 0 || math.IsInf(f, 0) {
		return decimal.NullDecimal{}, fmt.Errorf("%w: price out of range", model.ErrBadPrice)
	}
	return model.NullDecimalOf(d), nil
}

func metalsOf(schema Schema) []model.Metal {
	out := make([]model.Metal, 0, len(schema.Metals))
	for m := range schema.Metals {
		out = append(out, m)
	}
	return out
}
