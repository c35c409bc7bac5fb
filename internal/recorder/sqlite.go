package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists cycle runs and decision records to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while a cycle writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			duration_ms INTEGER,
			source      TEXT,
			ok_count    INTEGER,
			fail_count  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS decision_records (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL REFERENCES runs(id),
			metal          TEXT NOT NULL,
			status         TEXT NOT NULL,
			date           TEXT,
			price          TEXT,
			change         TEXT,
			buy_score      INTEGER,
			recommendation TEXT,
			reasoning      TEXT,
			rsi14          REAL,
			boll_position  REAL,
			sma20_distance REAL,
			error          TEXT,
			record_json    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_metal ON decision_records(metal, id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordCycle stores the run and one row per metal in a single transaction.
// An empty run ID is replaced with a fresh UUID.
func (r *SQLiteRecorder) RecordCycle(run *CycleRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	rep := run.Report

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	failed := len(rep.Failed())
	if _, err := tx.Exec(`INSERT INTO runs
		(id, started_at, duration_ms, source, ok_count, fail_count)
		VALUES (?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.Duration.Milliseconds(), run.Source,
		len(rep.Metals)-failed, failed,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, m := range rep.Metals {
		res := rep.Results[m]
		var (
			date, price, change, rec, reasoning sql.NullString
			score                               sql.NullInt64
			rsi, boll, dist                     sql.NullFloat64
			body                                sql.NullString
		)
		if res.OK() {
			rd := res.Record
			date = nullString(rd.Date.Format(model.DateLayout))
			price = nullString(rd.Price.String())
			if rd.Change.Valid {
				change = nullString(rd.Change.Decimal.String())
			}
			score = sql.NullInt64{Int64: int64(rd.BuyScore), Valid: true}
			rec = nullString(string(rd.Recommendation))
			reasoning = nullString(rd.Reasoning)
			rsi = nullFloat(rd.RSI14)
			boll = nullFloat(rd.BollingerPositionPct)
			dist = nullFloat(rd.SMA20DistancePct)
			data, err := json.Marshal(rd)
			if err != nil {
				return fmt.Errorf("marshal %s record: %w", m, err)
			}
			body = nullString(string(data))
		}

		if _, err := tx.Exec(`INSERT INTO decision_records
			(run_id, metal, status, date, price, change, buy_score, recommendation,
			 reasoning, rsi14, boll_position, sma20_distance, error, record_json)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			run.ID, string(m), string(res.Status), date, price, change, score, rec,
			reasoning, rsi, boll, dist, res.Error, body,
		); err != nil {
			return fmt.Errorf("insert %s record: %w", m, err)
		}
	}
	return tx.Commit()
}

// Latest returns up to limit successful records for a metal, newest first.
func (r *SQLiteRecorder) Latest(metal model.Metal, limit int) ([]StoredRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, metal, date, price, buy_score, recommendation, reasoning
		FROM decision_records
		WHERE metal = ? AND status = ?
		ORDER BY id DESC LIMIT ?`, string(metal), string(model.StatusOK), limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var (
			s        StoredRecord
			metalCol string
			recCol   string
		)
		if err := rows.Scan(&s.RunID, &metalCol, &s.Date, &s.Price, &s.BuyScore, &recCol, &s.Reasoning); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		s.Metal = model.Metal(metalCol)
		s.Recommendation = model.Recommendation(recCol)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func nullString(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
