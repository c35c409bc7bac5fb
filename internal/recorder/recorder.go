package recorder

import (
	"time"

	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
)

// CycleRun describes one update cycle and the report it published.
type CycleRun struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Source    string // history file the cycle read
	Report    *model.Report
}

// StoredRecord is a decision record as read back from storage.
type StoredRecord struct {
	RunID          string
	Metal          model.Metal
	Date           string
	Price          string
	BuyScore       int
	Recommendation model.Recommendation
	Reasoning      string
}

// Recorder persists published reports for later analysis.
type Recorder interface {
	RecordCycle(run *CycleRun) error
	Latest(metal model.Metal, limit int) ([]StoredRecord, error)
	Close() error
}
