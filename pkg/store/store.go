// Package store persists simulation runs to SQLite.
//
// The simulator itself keeps no history: each process holds only its latest
// clock. The store is an external sink that records every emitted
// observation so a run can be inspected after it has finished, in program
// order per process or in Lamport total order across processes.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/daviddao/lamportsim/pkg/model"

	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run id is not in the database.
var ErrRunNotFound = errors.New("run not found")

// timeLayout is fixed width so stored times sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages all SQLite operations with WAL mode for concurrent access.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database and initializes the schema.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		num_procs   INTEGER NOT NULL,
		events      INTEGER NOT NULL DEFAULT 0,
		started_at  TEXT NOT NULL,
		finished_at TEXT
	);

	CREATE TABLE IF NOT EXISTS observations (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id     TEXT NOT NULL REFERENCES runs(id),
		process_id INTEGER NOT NULL,
		seq        INTEGER NOT NULL,
		lamport_ts INTEGER NOT NULL,
		kind       TEXT NOT NULL,
		peer       INTEGER NOT NULL,
		UNIQUE (run_id, process_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_obs_total ON observations(run_id, lamport_ts, process_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ---------------------------------------------------------------------------
// Runs
// ---------------------------------------------------------------------------

// CreateRun records the start of a run.
func (s *Store) CreateRun(r *model.Run) error {
	return withRetry(writePolicy, func() error {
		_, err := s.db.Exec(
			`INSERT INTO runs (id, num_procs, events, started_at) VALUES (?, ?, 0, ?)`,
			r.ID, r.NumProcs, r.StartedAt.UTC().Format(timeLayout),
		)
		return err
	})
}

// FinishRun stamps a run with its final event count and completion time.
func (s *Store) FinishRun(id string, events int64, at time.Time) error {
	return withRetry(writePolicy, func() error {
		res, err := s.db.Exec(
			`UPDATE runs SET events = ?, finished_at = ? WHERE id = ?`,
			events, at.UTC().Format(timeLayout), id,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("finish %s: %w", id, ErrRunNotFound)
		}
		return nil
	})
}

// GetRun retrieves a run by id.
func (s *Store) GetRun(id string) (*model.Run, error) {
	row := s.db.QueryRow(
		`SELECT id, num_procs, events, started_at, COALESCE(finished_at, '') FROM runs WHERE id = ?`, id,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return r, err
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, num_procs, events, started_at, COALESCE(finished_at, '')
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.Run, error) {
	var r model.Run
	var startStr, finishStr string
	if err := row.Scan(&r.ID, &r.NumProcs, &r.Events, &startStr, &finishStr); err != nil {
		return nil, err
	}
	var err error
	r.StartedAt, err = time.Parse(timeLayout, startStr)
	if err != nil {
		return nil, fmt.Errorf("parse started_at for run %s: %w", r.ID, err)
	}
	if finishStr != "" {
		r.FinishedAt, err = time.Parse(timeLayout, finishStr)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at for run %s: %w", r.ID, err)
		}
	}
	return &r, nil
}

// ---------------------------------------------------------------------------
// Observations
// ---------------------------------------------------------------------------

// InsertObservations appends a batch of observations in one transaction.
func (s *Store) InsertObservations(obs []model.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	return withRetry(writePolicy, func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		stmt, err := tx.Prepare(
			`INSERT INTO observations (run_id, process_id, seq, lamport_ts, kind, peer)
			 VALUES (?, ?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, o := range obs {
			if _, err := stmt.Exec(o.RunID, o.ProcessID, o.Seq, o.LamportTS, string(o.Kind), o.Peer); err != nil {
				return fmt.Errorf("insert observation %d/%d: %w", o.ProcessID, o.Seq, err)
			}
		}
		return tx.Commit()
	})
}

// ListObservations returns a run's observations in Lamport total order:
// by timestamp, ties broken by process id.
func (s *Store) ListObservations(runID string) ([]model.Observation, error) {
	rows, err := s.db.Query(
		`SELECT run_id, process_id, seq, lamport_ts, kind, peer
		 FROM observations WHERE run_id = ?
		 ORDER BY lamport_ts ASC, process_id ASC, seq ASC`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanObservations(rows)
}

// ListObservationsForProcess returns one process's observations in program
// order.
func (s *Store) ListObservationsForProcess(runID string, pid int) ([]model.Observation, error) {
	rows, err := s.db.Query(
		`SELECT run_id, process_id, seq, lamport_ts, kind, peer
		 FROM observations WHERE run_id = ? AND process_id = ?
		 ORDER BY seq ASC`, runID, pid,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanObservations(rows)
}

// CountObservations returns the number of observations recorded for a run.
func (s *Store) CountObservations(runID string) int64 {
	var n int64
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM observations WHERE run_id = ?`, runID,
	).Scan(&n); err != nil {
		return 0
	}
	return n
}

func scanObservations(rows *sql.Rows) ([]model.Observation, error) {
	var out []model.Observation
	for rows.Next() {
		var o model.Observation
		var kind string
		if err := rows.Scan(&o.RunID, &o.ProcessID, &o.Seq, &o.LamportTS, &kind, &o.Peer); err != nil {
			return nil, err
		}
		o.Kind = model.EventKind(kind)
		out = append(out, o)
	}
	return out, rows.Err()
}
