package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/mapleads-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	query        TEXT NOT NULL,
	location     TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	result_count INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT '',
	started_at   DATETIME NOT NULL,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Migrate creates the run-history schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// CreateRun inserts a new run in the running state.
func (s *SQLiteStore) CreateRun(ctx context.Context, req model.SearchRequest) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.NewString(),
		Query:     req.Query,
		Location:  req.Location,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, query, location, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Query, run.Location, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: create run")
	}
	return run, nil
}

// CompleteRun records the final state of a run.
func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, resultCount int, runErr string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, result_count = ?, error = ?, completed_at = ? WHERE id = ?`,
		status, resultCount, runErr, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: complete run")
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, location, status, result_count, error, started_at, completed_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		var completed sql.NullTime
		if err := rows.Scan(&run.ID, &run.Query, &run.Location, &run.Status,
			&run.ResultCount, &run.Error, &run.StartedAt, &completed); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if completed.Valid {
			run.CompletedAt = &completed.Time
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate runs")
	}
	return runs, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
