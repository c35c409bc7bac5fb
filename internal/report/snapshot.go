package report

import (
	"net/http"
	"sync/atomic"

	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
)

// Snapshot holds the most recently published report. Readers always see
// either the previous report or the new one, never a mix.
type Snapshot struct {
	current atomic.Pointer[model.Report]
}

// Publish replaces the current report.
func (s *Snapshot) Publish(r *model.Report) {
	s.current.Store(r)
}

// Current returns the published report, or nil before the first publish.
func (s *Snapshot) Current() *model.Report {
	return s.current.Load()
}

// ServeHTTP writes the current report as JSON, or 503 before the first publish.
func (s *Snapshot) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	r := s.Current()
	if r == nil {
		http.Error(w, "no report published yet", http.StatusServiceUnavailable)
		return
	}
	data, err := Marshal(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
