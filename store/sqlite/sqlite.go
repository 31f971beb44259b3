/*
Package sqlite provides a SQLite-backed implementation of tracker.Store.

PURPOSE:
  Persists the profile slot, the trip list and the watcher's evaluation runs
  in a single local database file. Nothing leaves the device.

INTERFACES IMPLEMENTED:
  tracker.Store: Profile and trip persistence

KEY TABLES:
  profile:          Single row keyed by slot ("current")
  trips:            One row per trip; replaced as a whole by SaveTrips
  evaluation_runs:  Append-only history written by the eligibility watcher

DATES:
  Calendar dates are stored as YYYY-MM-DD text; timestamps as RFC3339.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer.

USAGE:
  store, err := sqlite.New("./natz.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := tracker.NewService(store, nil)

SEE ALSO:
  - tracker/store.go: Interface definition
  - tracker/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/naturalization-engine/calendar"
	"github.com/warp/naturalization-engine/eligibility"
	"github.com/warp/naturalization-engine/tracker"
)

const currentSlot = "current"

// Store implements tracker.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ tracker.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profile (
		slot TEXT PRIMARY KEY,
		dob TEXT NOT NULL,
		lpr_date TEXT NOT NULL,
		eligibility_path TEXT NOT NULL,
		state TEXT NOT NULL,
		state_residence_date TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		destination TEXT NOT NULL DEFAULT '',
		counts_as_absence INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_trips_position ON trips(position);

	-- Append-only history of watcher evaluations
	CREATE TABLE IF NOT EXISTS evaluation_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		as_of TEXT NOT NULL,
		eligible INTEGER NOT NULL,
		blocker_codes TEXT NOT NULL DEFAULT '',
		earliest_filing_date TEXT,
		lower_risk_filing_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_evaluation_runs_created_at ON evaluation_runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PROFILE (slot "current")
// =============================================================================

// LoadProfile returns the current profile, or nil when none is saved.
func (s *Store) LoadProfile(ctx context.Context) (*eligibility.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dob, lpr, path, state, since string
	err := s.db.QueryRowContext(ctx,
		"SELECT dob, lpr_date, eligibility_path, state, state_residence_date FROM profile WHERE slot = ?",
		currentSlot,
	).Scan(&dob, &lpr, &path, &state, &since)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p := eligibility.Profile{Path: eligibility.Path(path), State: state}
	if p.DateOfBirth, err = calendar.ParseDate(dob); err != nil {
		return nil, fmt.Errorf("profile dob: %w", err)
	}
	if p.LPRDate, err = calendar.ParseDate(lpr); err != nil {
		return nil, fmt.Errorf("profile lpr_date: %w", err)
	}
	if p.StateResidenceSince, err = calendar.ParseDate(since); err != nil {
		return nil, fmt.Errorf("profile state_residence_date: %w", err)
	}
	return &p, nil
}

// SaveProfile upserts the current profile.
func (s *Store) SaveProfile(ctx context.Context, p eligibility.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return upsertProfile(ctx, s.db, p)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

func upsertProfile(ctx context.Context, ex execer, p eligibility.Profile) error {
	query := `
		INSERT INTO profile (slot, dob, lpr_date, eligibility_path, state, state_residence_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			dob = excluded.dob,
			lpr_date = excluded.lpr_date,
			eligibility_path = excluded.eligibility_path,
			state = excluded.state,
			state_residence_date = excluded.state_residence_date,
			updated_at = excluded.updated_at
	`

	_, err := ex.ExecContext(ctx, query,
		currentSlot, p.DateOfBirth.String(), p.LPRDate.String(), string(p.Path),
		p.State, p.StateResidenceSince.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// =============================================================================
// TRIPS (slot "all")
// =============================================================================

// LoadTrips returns all trips in saved order.
func (s *Store) LoadTrips(ctx context.Context) ([]eligibility.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, start_date, end_date, destination, counts_as_absence FROM trips ORDER BY position",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []eligibility.Trip{}
	for rows.Next() {
		var t eligibility.Trip
		var start, end string
		if err := rows.Scan(&t.ID, &start, &end, &t.Destination, &t.CountsAsAbsence); err != nil {
			return nil, err
		}
		if t.Start, err = calendar.ParseDate(start); err != nil {
			return nil, fmt.Errorf("trip %s start_date: %w", t.ID, err)
		}
		if t.End, err = calendar.ParseDate(end); err != nil {
			return nil, fmt.Errorf("trip %s end_date: %w", t.ID, err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// SaveTrips replaces the trip list in one transaction.
func (s *Store) SaveTrips(ctx context.Context, trips []eligibility.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		return replaceTrips(ctx, tx, trips)
	})
}

func replaceTrips(ctx context.Context, ex execer, trips []eligibility.Trip) error {
	if _, err := ex.ExecContext(ctx, "DELETE FROM trips"); err != nil {
		return err
	}

	stmt, err := ex.PrepareContext(ctx, `
		INSERT INTO trips (id, position, start_date, end_date, destination, counts_as_absence)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range trips {
		if _, err := stmt.ExecContext(ctx, t.ID, i, t.Start.String(), t.End.String(), t.Destination, t.CountsAsAbsence); err != nil {
			return fmt.Errorf("insert trip %s: %w", t.ID, err)
		}
	}
	return nil
}

// Replace swaps the profile and the trip list in one transaction. A nil
// profile clears the slot. Evaluation history is kept.
func (s *Store) Replace(ctx context.Context, p *eligibility.Profile, trips []eligibility.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if p == nil {
			if _, err := tx.ExecContext(ctx, "DELETE FROM profile"); err != nil {
				return err
			}
		} else if err := upsertProfile(ctx, tx, *p); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		return replaceTrips(ctx, tx, trips)
	})
}

// Wipe clears all data, including evaluation history.
func (s *Store) Wipe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"trips", "profile", "evaluation_runs"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer sqlTx.Rollback()

	if err := fn(sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// =============================================================================
// EVALUATION RUNS
// =============================================================================

// EvaluationRun is one recorded watcher evaluation.
type EvaluationRun struct {
	ID                  int64
	AsOf                calendar.Date
	Eligible            bool
	BlockerCodes        []eligibility.Code
	EarliestFilingDate  *calendar.Date
	LowerRiskFilingDate *calendar.Date
	CreatedAt           time.Time
}

// NewEvaluationRun summarizes a result for storage.
func NewEvaluationRun(asOf calendar.Date, r eligibility.Result) EvaluationRun {
	return EvaluationRun{
		AsOf:                asOf,
		Eligible:            r.Eligible,
		BlockerCodes:        eligibility.Codes(r.Blockers),
		EarliestFilingDate:  r.EarliestFilingDate,
		LowerRiskFilingDate: r.LowerRiskFilingDate,
	}
}

// SaveEvaluationRun appends a run.
func (s *Store) SaveEvaluationRun(ctx context.Context, run EvaluationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	codes := make([]string, len(run.BlockerCodes))
	for i, c := range run.BlockerCodes {
		codes[i] = string(c)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluation_runs (as_of, eligible, blocker_codes, earliest_filing_date, lower_risk_filing_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.AsOf.String(), run.Eligible, strings.Join(codes, ","),
		nullDate(run.EarliestFilingDate), nullDate(run.LowerRiskFilingDate),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// ListEvaluationRuns returns the most recent runs first.
func (s *Store) ListEvaluationRuns(ctx context.Context, limit int) ([]EvaluationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, as_of, eligible, blocker_codes, earliest_filing_date, lower_risk_filing_date, created_at
		FROM evaluation_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []EvaluationRun{}
	for rows.Next() {
		var r EvaluationRun
		var asOf, codes, createdAt string
		var earliest, lowerRisk sql.NullString
		if err := rows.Scan(&r.ID, &asOf, &r.Eligible, &codes, &earliest, &lowerRisk, &createdAt); err != nil {
			return nil, err
		}
		if r.AsOf, err = calendar.ParseDate(asOf); err != nil {
			return nil, fmt.Errorf("evaluation run %d as_of: %w", r.ID, err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("evaluation run %d created_at: %w", r.ID, err)
		}
		if r.EarliestFilingDate, err = parseNullDate(earliest); err != nil {
			return nil, fmt.Errorf("evaluation run %d earliest_filing_date: %w", r.ID, err)
		}
		if r.LowerRiskFilingDate, err = parseNullDate(lowerRisk); err != nil {
			return nil, fmt.Errorf("evaluation run %d lower_risk_filing_date: %w", r.ID, err)
		}
		if codes != "" {
			for _, c := range strings.Split(codes, ",") {
				r.BlockerCodes = append(r.BlockerCodes, eligibility.Code(c))
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestEvaluationRun returns the newest run, or nil when there is none.
func (s *Store) LatestEvaluationRun(ctx context.Context) (*EvaluationRun, error) {
	runs, err := s.ListEvaluationRuns(ctx, 1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// Helper functions

func nullDate(d *calendar.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(ns sql.NullString) (*calendar.Date, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := calendar.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
