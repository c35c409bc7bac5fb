package metrics

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
)

func partialReport() *model.Report {
	return &model.Report{
		Metals: []model.Metal{model.Gold, model.Silver},
		Results: map[model.Metal]model.MetalResult{
			model.Gold:   {Metal: model.Gold, Status: model.StatusOK, Record: &model.DecisionRecord{Metal: model.Gold, BuyScore: 25}},
			model.Silver: {Metal: model.Silver, Status: model.StatusMalformed, Error: "bad"},
		},
	}
}

func TestObserveCycle(t *testing.T) {
	m := NewMetrics()
	now := time.Date(2025, 11, 5, 18, 30, 0, 0, time.UTC)

	m.ObserveCycle(partialReport(), 20*time.Millisecond, now)
	m.ObserveCycle(nil, time.Millisecond, now)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues(CyclePartial)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues(CycleFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MetalResults.WithLabelValues("silver", "malformed")))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.BuyScore.WithLabelValues("gold")))
	assert.Equal(t, float64(now.Unix()), testutil.ToFloat64(m.LastSuccess))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BuyScore), "failed metals carry no score")
	assert.Equal(t, 1, testutil.CollectAndCount(m.CycleDuration))
}

func TestHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveCycle(partialReport(), time.Millisecond, time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `tracker_buy_score{metal="gold"} 25`)
	assert.Contains(t, string(body), `tracker_cycles_total{status="partial"} 1`)
	assert.NotContains(t, string(body), "go_goroutines", "private registry only")
}

func TestHealthStatus(t *testing.T) {
	h := NewHealthStatus()

	get := func() (int, map[string]string) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		return rec.Code, body
	}

	code, body := get()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "starting", body["status"])

	h.SetCycle(time.Now(), CyclePartial, nil)
	_, body = get()
	assert.Equal(t, "degraded", body["status"])

	h.SetCycle(time.Now(), CycleFailed, errors.New("open history: no such file"))
	code, body = get()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "open history: no such file", body["last_error"])
}
