package report

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thivinthegreat/gold-rate-tracker/internal/history"
	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
)

// historyCSV builds n days of gold and silver prices. badSilverRow, when >= 0,
// replaces that silver cell with a non-numeric value.
func historyCSV(n, badSilverRow int) string {
	var b strings.Builder
	b.WriteString("date,gold,silver\n")
	start := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		gold := 6000 + 300*x*x*x
		silver := fmt.Sprintf("%.2f", 80-5*x*x*x)
		if i == badSilverRow {
			silver = "n/a?"
		}
		fmt.Fprintf(&b, "%s,%.2f,%s\n", start.AddDate(0, 0, i).Format(model.DateLayout), gold, silver)
	}
	return b.String()
}

func assemble(t *testing.T, csv string) *model.Report {
	t.Helper()
	store, err := history.Load(strings.NewReader(csv), history.DefaultSchema())
	require.NoError(t, err)
	return Assemble(Inputs(store))
}

func TestAssemble_AllMetals(t *testing.T) {
	r := assemble(t, historyCSV(30, -1))
	assert.Equal(t, []model.Metal{model.Gold, model.Silver}, r.Metals)
	assert.Empty(t, r.Failed())

	records := r.Records()
	require.Len(t, records, 2)
	assert.Less(t, records[model.Gold].BuyScore, 40)
	assert.GreaterOrEqual(t, records[model.Silver].BuyScore, 60)
}

func TestAssemble_MalformedSilverIsIsolated(t *testing.T) {
	r := assemble(t, historyCSV(30, 12))

	gold, ok := r.Result(model.Gold)
	require.True(t, ok)
	assert.True(t, gold.OK())

	silver, ok := r.Result(model.Silver)
	require.True(t, ok)
	assert.Equal(t, model.StatusMalformed, silver.Status)
	assert.Nil(t, silver.Record)
	assert.Contains(t, silver.Error, "line 14")
	assert.Equal(t, []model.Metal{model.Silver}, r.Failed())
}

func TestAssemble_InsufficientHistory(t *testing.T) {
	r := assemble(t, "date,gold,silver\n2025-10-01,6000,NA\n2025-10-02,6010,NA\n")
	for _, m := range r.Metals {
		res, _ := r.Result(m)
		assert.Equal(t, model.StatusInsufficientHistory, res.Status, m)
	}
}

func TestAssemble_StatusFromError(t *testing.T) {
	r := Assemble([]Input{
		{Metal: model.Gold, Err: &model.MalformedRecordError{Metal: model.Gold, Line: 3, Column: "gold", Err: model.ErrBadPrice}},
		{Metal: model.Silver, Err: fmt.Errorf("silver: %w", model.ErrInsufficientHistory)},
		{Metal: "platinum"},
	})
	assert.Equal(t, []model.Metal{model.Gold, model.Silver, "platinum"}, r.Metals)
	assert.Equal(t, model.StatusMalformed, r.Results[model.Gold].Status)
	assert.Equal(t, model.StatusInsufficientHistory, r.Results[model.Silver].Status)
	assert.Equal(t, model.StatusInsufficientHistory, r.Results["platinum"].Status)
	assert.Empty(t, r.Records())
}

func TestAssemble_OverflowingPriceIsolated(t *testing.T) {
	start := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, 25)
	for i := range points {
		points[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Price: model.NullDecimalOf(decimal.RequireFromString("1e400"))}
	}
	huge, err := model.NewPriceSeries(model.Gold, points)
	require.NoError(t, err)

	store, err := history.Load(strings.NewReader(historyCSV(30, -1)), history.DefaultSchema())
	require.NoError(t, err)
	silver, err := store.Series(model.Silver)
	require.NoError(t, err)

	r := Assemble([]Input{{Metal: model.Gold, Series: huge}, {Metal: model.Silver, Series: silver}})
	assert.Equal(t, model.StatusMalformed, r.Results[model.Gold].Status)
	assert.True(t, r.Results[model.Silver].OK())

	data, err := Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status": "malformed"`)
}

func TestMarshal_ByteIdentical(t *testing.T) {
	csv := historyCSV(60, 40)
	first, err := Marshal(assemble(t, csv))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Marshal(assemble(t, csv))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(first, again), "run %d differs", i)
	}
	assert.Contains(t, string(first), `"status": "malformed"`)
	assert.Contains(t, string(first), `"boll_position_pct"`)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "snapshot.json")
	r := assemble(t, historyCSV(30, -1))
	require.NoError(t, WriteJSON(path, r))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	// overwrite leaves no temp files behind
	require.NoError(t, WriteJSON(path, assemble(t, historyCSV(30, 5))))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSnapshot_PublishSwapsWhole(t *testing.T) {
	var s Snapshot
	assert.Nil(t, s.Current())

	a := assemble(t, historyCSV(30, -1))
	b := assemble(t, historyCSV(30, 3))
	s.Publish(a)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				cur := s.Current()
				if cur != a && cur != b {
					errs <- errors.New("torn snapshot")
					return
				}
			}
		}()
	}
	for j := 0; j < 50; j++ {
		s.Publish(b)
		s.Publish(a)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	assert.Same(t, a, s.Current())
}

func TestSnapshot_ServeHTTP(t *testing.T) {
	var s Snapshot
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	r := assemble(t, historyCSV(30, -1))
	s.Publish(r)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	want, err := Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, string(want), rec.Body.String())
}
