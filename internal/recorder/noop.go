package recorder

import "github.com/thivinthegreat/gold-rate-tracker/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(_ *CycleRun) error { return nil }
func (n *NoopRecorder) Latest(_ model.Metal, _ int) ([]StoredRecord, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
