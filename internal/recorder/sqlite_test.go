package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
)

func sampleReport(score int) *model.Report {
	rsi := 72.5
	return &model.Report{
		Metals: []model.Metal{model.Gold, model.Silver},
		Results: map[model.Metal]model.MetalResult{
			model.Gold: {
				Metal:  model.Gold,
				Status: model.StatusOK,
				Record: &model.DecisionRecord{
					Metal:          model.Gold,
					Date:           time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC),
					Price:          decimal.RequireFromString("6150.25"),
					Change:         model.NullDecimalOf(decimal.RequireFromString("12.5")),
					BuyScore:       score,
					Recommendation: model.Sell,
					Reasoning:      "RSI indicates overbought conditions (RSI 72.5)",
					IndicatorSet:   model.IndicatorSet{RSI14: &rsi},
				},
			},
			model.Silver: {
				Metal:  model.Silver,
				Status: model.StatusMalformed,
				Error:  "malformed silver record at line 4",
			},
		},
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	defer rec.Close()

	first := &CycleRun{StartedAt: time.Now(), Duration: 40 * time.Millisecond, Source: "history.csv", Report: sampleReport(31)}
	require.NoError(t, rec.RecordCycle(first))
	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err, "run id is a uuid")

	second := &CycleRun{ID: "fixed-id", StartedAt: time.Now(), Report: sampleReport(27)}
	require.NoError(t, rec.RecordCycle(second))

	got, err := rec.Latest(model.Gold, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "fixed-id", got[0].RunID)
	assert.Equal(t, 27, got[0].BuyScore)
	assert.Equal(t, first.ID, got[1].RunID)
	assert.Equal(t, "2025-11-05", got[1].Date)
	assert.Equal(t, "6150.25", got[1].Price)
	assert.Equal(t, model.Sell, got[1].Recommendation)

	failed, err := rec.Latest(model.Silver, 10)
	require.NoError(t, err)
	assert.Empty(t, failed, "failed metals are stored but not returned as records")

	var n int
	require.NoError(t, rec.db.QueryRow(`SELECT COUNT(*) FROM decision_records WHERE status = 'malformed'`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestSQLiteRecorder_DuplicateRunRollsBack(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	defer rec.Close()

	require.NoError(t, rec.RecordCycle(&CycleRun{ID: "a", StartedAt: time.Now(), Report: sampleReport(30)}))
	assert.Error(t, rec.RecordCycle(&CycleRun{ID: "a", StartedAt: time.Now(), Report: sampleReport(30)}))

	var n int
	require.NoError(t, rec.db.QueryRow(`SELECT COUNT(*) FROM decision_records`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordCycle(&CycleRun{Report: sampleReport(50)}))
	got, err := r.Latest(model.Gold, 5)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, r.Close())
}
