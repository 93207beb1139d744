// Package store persists reconciliation runs, merged records and profiles
// in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/profile"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	primary_source TEXT NOT NULL,
	records INTEGER NOT NULL,
	summary TEXT NOT NULL,
	stats JSON
);
CREATE TABLE IF NOT EXISTS records (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	position INTEGER NOT NULL,
	join_key TEXT NOT NULL DEFAULT '',
	data JSON NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS records_join_key ON records(join_key);
CREATE TABLE IF NOT EXISTS profiles (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	position INTEGER NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	party TEXT NOT NULL DEFAULT '',
	networth REAL NOT NULL DEFAULT 0,
	data JSON NOT NULL,
	PRIMARY KEY (run_id, position)
);`

// Run is the stored summary of one reconciliation run.
type Run struct {
	RunID      string                   `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time                `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time                `json:"finished_at" yaml:"finished_at"`
	Primary    string                   `json:"primary" yaml:"primary"`
	Records    int                      `json:"records" yaml:"records"`
	Summary    string                   `json:"summary" yaml:"summary"`
	Stats      []reconciler.SourceStats `json:"stats" yaml:"stats"`
}

// Record is one stored merged record.
type Record struct {
	Position int
	Key      string
	Data     json.RawMessage
}

// Store is a SQLite-backed run store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	// one writer; SQLite serializes anyway
	db.SetMaxOpenConns(1)
	s, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("open", path, err)
	}
	return s, nil
}

// New wraps an open database and creates the tables.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a result and its profiles in one transaction. profiles may
// be empty; when present it must be parallel to result.Records.
func (s *Store) SaveRun(ctx context.Context, result *reconciler.Result, profiles []profile.Profile) (err error) {
	if result == nil {
		return errors.NewValidationError("result", nil, "result is required")
	}
	runID := result.Metadata.RunID
	if runID == "" {
		return errors.NewValidationError("run_id", runID, "run id is required")
	}
	if len(profiles) > 0 && len(profiles) != len(result.Records) {
		return errors.NewValidationError("profiles", len(profiles), "profiles must match merged records")
	}

	stats, err := json.Marshal(append([]reconciler.SourceStats{result.Primary}, result.Secondaries...))
	if err != nil {
		return errors.WrapResource("save", "run", runID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapResource("save", "run", runID, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (
		run_id, started_at, finished_at, primary_source, records, summary, stats
	) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID,
		result.Metadata.StartTime.UTC().Format(time.RFC3339Nano),
		result.Metadata.EndTime.UTC().Format(time.RFC3339Nano),
		result.Primary.Source.String(),
		len(result.Records),
		result.Summary(),
		string(stats),
	)
	if err != nil {
		return errors.WrapResource("save", "run", runID, err)
	}

	recStmt, err := tx.PrepareContext(ctx, `INSERT INTO records (run_id, position, join_key, data) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.WrapResource("save", "records", runID, err)
	}
	defer func() { _ = recStmt.Close() }()

	for i, rec := range result.Records {
		data, mErr := rec.MarshalJSON()
		if mErr != nil {
			return errors.WrapResource("save", "record", runID, mErr)
		}
		var key string
		if i < len(result.Keys) {
			key = result.Keys[i]
		}
		if _, err = recStmt.ExecContext(ctx, runID, i, key, string(data)); err != nil {
			return errors.WrapResource("save", "record", runID, err)
		}
	}

	profStmt, err := tx.PrepareContext(ctx, `INSERT INTO profiles (run_id, position, name, state, party, networth, data) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.WrapResource("save", "profiles", runID, err)
	}
	defer func() { _ = profStmt.Close() }()

	for i, p := range profiles {
		data, mErr := json.Marshal(p)
		if mErr != nil {
			return errors.WrapResource("save", "profile", runID, mErr)
		}
		if _, err = profStmt.ExecContext(ctx, runID, i, p.Name, p.State, p.Party, p.NetWorth, string(data)); err != nil {
			return errors.WrapResource("save", "profile", runID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.WrapResource("save", "run", runID, err)
	}
	return nil
}

// Run returns a stored run.
func (s *Store) Run(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, started_at, finished_at, primary_source, records, summary, stats
		FROM runs
		WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("run", runID)
	}
	if err != nil {
		return nil, errors.WrapResource("get", "run", runID, err)
	}
	return run, nil
}

// Runs returns the most recent runs first.
func (s *Store) Runs(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, started_at, finished_at, primary_source, records, summary, stats
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.WrapResource("list", "runs", "", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.WrapResource("list", "runs", "", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapResource("list", "runs", "", err)
	}
	return runs, nil
}

// Records returns the merged records of a run in primary order.
func (s *Store) Records(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, join_key, data
		FROM records
		WHERE run_id = ?
		ORDER BY position`, runID)
	if err != nil {
		return nil, errors.WrapResource("list", "records", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var (
			r    Record
			data string
		)
		if err := rows.Scan(&r.Position, &r.Key, &data); err != nil {
			return nil, errors.WrapResource("list", "records", runID, err)
		}
		r.Data = json.RawMessage(data)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapResource("list", "records", runID, err)
	}
	return out, nil
}

// Profiles returns the profiles of a run in primary order.
func (s *Store) Profiles(ctx context.Context, runID string) ([]profile.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data
		FROM profiles
		WHERE run_id = ?
		ORDER BY position`, runID)
	if err != nil {
		return nil, errors.WrapResource("list", "profiles", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []profile.Profile
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.WrapResource("list", "profiles", runID, err)
		}
		var p profile.Profile
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, errors.WrapParse("json", "profiles", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapResource("list", "profiles", runID, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run               Run
		started, finished string
		stats             sql.NullString
	)
	if err := row.Scan(&run.RunID, &started, &finished, &run.Primary, &run.Records, &run.Summary, &stats); err != nil {
		return nil, err
	}
	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return nil, err
	}
	if stats.Valid && stats.String != "" {
		if err := json.Unmarshal([]byte(stats.String), &run.Stats); err != nil {
			return nil, err
		}
	}
	return &run, nil
}
