package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/thivinthegreat/gold-rate-tracker/internal/history"
	"github.com/thivinthegreat/gold-rate-tracker/internal/metrics"
	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
	"github.com/thivinthegreat/gold-rate-tracker/internal/notifier"
	"github.com/thivinthegreat/gold-rate-tracker/internal/recorder"
	"github.com/thivinthegreat/gold-rate-tracker/internal/report"
)

// Notifier delivers cycle summaries. *notifier.TelegramNotifier satisfies it.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Paths locates the cycle's input history and output snapshot.
type Paths struct {
	History  string
	Snapshot string
}

// Scheduler runs the update cycle on a cron schedule and answers commands
// from the published snapshot.
type Scheduler struct {
	Cron     *cron.Cron
	Paths    Paths
	Schema   history.Schema
	Snapshot *report.Snapshot
	Notifier Notifier // nil disables notifications
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Health   *metrics.HealthStatus
	Ctx      context.Context

	mu    sync.Mutex
	now   func() time.Time
	store atomic.Pointer[history.Store] // last successfully loaded history
}

// recentDecisions is how many recorded decisions /history lists.
const recentDecisions = 5

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, paths Paths, schema history.Schema, n Notifier, rec recorder.Recorder, m *metrics.Metrics, h *metrics.HealthStatus) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Paths:    paths,
		Schema:   schema,
		Snapshot: &report.Snapshot{},
		Notifier: n,
		Recorder: rec,
		Metrics:  m,
		Health:   h,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// Register schedules the update cycle.
func (s *Scheduler) Register(updateCron string) error {
	if _, err := s.Cron.AddFunc(updateCron, s.RunNow); err != nil {
		return fmt.Errorf("register update task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes one cycle immediately (cron entry, RUN_ON_START, /refresh).
func (s *Scheduler) RunNow() {
	if _, err := s.RunCycle(); err != nil {
		log.Printf("[ERROR] update cycle: %v", err)
	}
}

// RunCycle loads the history, computes every metal and publishes the report.
// Cycles never overlap. When loading fails the previous snapshot stays
// published and the returned report is nil.
func (s *Scheduler) RunCycle() (*model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	log.Printf("[INFO] running update cycle: %s", s.Paths.History)

	store, err := history.LoadFile(s.Paths.History, s.Schema)
	if err != nil {
		s.observe(nil, start, err)
		s.trySend(fmt.Sprintf("❌ history load failed: %v", err))
		return nil, fmt.Errorf("load history: %w", err)
	}

	s.store.Store(store)
	r := report.Assemble(report.Inputs(store))
	s.Snapshot.Publish(r)
	for _, m := range r.Failed() {
		res := r.Results[m]
		log.Printf("[WARN] %s: %s: %s", m, res.Status, res.Error)
	}

	var writeErr error
	if s.Paths.Snapshot != "" {
		if err := report.WriteJSON(s.Paths.Snapshot, r); err != nil {
			writeErr = fmt.Errorf("write snapshot: %w", err)
			log.Printf("[ERROR] %v", writeErr)
		}
	}

	run := &recorder.CycleRun{
		ID:        uuid.NewString(),
		StartedAt: start,
		Duration:  s.now().Sub(start),
		Source:    s.Paths.History,
		Report:    r,
	}
	if err := s.Recorder.RecordCycle(run); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}

	s.observe(r, start, writeErr)
	s.trySend(notifier.FormatReport(r))
	log.Printf("[INFO] update cycle %s done: %d metals, %d failed", run.ID, len(r.Metals), len(r.Failed()))
	return r, writeErr
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	args := strings.Fields(strings.ToLower(command))
	if len(args) == 0 {
		return notifier.FormatHelp(s.metals())
	}
	cmd := args[0]
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i] // "/gold@my_bot" in group chats
	}

	switch cmd {
	case "/report":
		return notifier.FormatReport(s.Snapshot.Current())
	case "/refresh":
		// the cycle itself broadcasts the full report
		r, err := s.RunCycle()
		if r == nil {
			return fmt.Sprintf("❌ refresh failed: %v", err)
		}
		return fmt.Sprintf("✅ refreshed: %d metals, %d failed", len(r.Metals), len(r.Failed()))
	case "/history":
		return s.historyReply(args[1:])
	}

	current := s.Snapshot.Current()
	if current != nil && strings.HasPrefix(cmd, "/") {
		if res, ok := current.Result(model.Metal(strings.TrimPrefix(cmd, "/"))); ok {
			if res.OK() {
				return notifier.FormatRecord(res.Record)
			}
			return notifier.FormatFailure(res)
		}
	}
	return notifier.FormatHelp(s.metals())
}

// historyReply answers "/history <metal> [range]" and "/history <metal> <from> <to>".
func (s *Scheduler) historyReply(args []string) string {
	store := s.store.Load()
	if store == nil {
		return "No history loaded yet."
	}
	if len(args) == 0 || len(args) > 3 {
		return notifier.FormatHelp(s.metals())
	}

	metal := model.Metal(args[0])
	series, err := store.Series(metal)
	if err != nil {
		return fmt.Sprintf("⚠️ %s: %v", metal, err)
	}

	window := "all days"
	switch len(args) {
	case 2:
		n, err := history.ParseRange(args[1])
		if err != nil {
			return fmt.Sprintf("⚠️ %v", err)
		}
		series = series.Suffix(n)
		if n > 0 {
			window = fmt.Sprintf("last %d days", n)
		}
	case 3:
		from, err1 := time.Parse(model.DateLayout, args[1])
		to, err2 := time.Parse(model.DateLayout, args[2])
		if err1 != nil || err2 != nil || to.Before(from) {
			return fmt.Sprintf("⚠️ want /history %s YYYY-MM-DD YYYY-MM-DD", metal)
		}
		series = series.Range(from, to)
		window = args[1] + " to " + args[2]
	}

	recent, err := s.Recorder.Latest(metal, recentDecisions)
	if err != nil {
		log.Printf("[WARN] load recent decisions: %v", err)
	}
	return notifier.FormatHistory(series, window, recent)
}

func (s *Scheduler) metals() []model.Metal {
	if current := s.Snapshot.Current(); current != nil {
		return current.Metals
	}
	return nil
}

func (s *Scheduler) observe(r *model.Report, start time.Time, err error) {
	end := s.now()
	if s.Metrics != nil {
		s.Metrics.ObserveCycle(r, end.Sub(start), end)
	}
	if s.Health == nil {
		return
	}
	status := metrics.CycleOK
	switch {
	case r == nil:
		status = metrics.CycleFailed
	case len(r.Failed()) > 0 || err != nil:
		status = metrics.CyclePartial
	}
	s.Health.SetCycle(end, status, err)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
