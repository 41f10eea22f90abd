package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jdimyadi/bimrl/internal/timeutil"
)

// Index run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// IndexRun records one indexing pass over a model.
type IndexRun struct {
	RunID        string     `json:"run_id"`
	ModelID      string     `json:"model_id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ElementCount int        `json:"element_count"`
	FailedCount  int        `json:"failed_count"`
	CellCount    int        `json:"cell_count"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// RunStore provides persistence for index runs.
type RunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db, clock: timeutil.RealClock{}}
}

// SetClock replaces the clock used for run timestamps.
func (s *RunStore) SetClock(c timeutil.Clock) {
	s.clock = c
}

// Start inserts a running index run for modelID with a fresh id.
func (s *RunStore) Start(ctx context.Context, modelID string) (*IndexRun, error) {
	run := &IndexRun{
		RunID:     uuid.New().String(),
		ModelID:   modelID,
		StartedAt: s.clock.Now(),
		Status:    RunRunning,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bimrl_index_runs (run_id, model_id, started_at, status)
		VALUES (?, ?, ?, ?)`,
		run.RunID, run.ModelID, run.StartedAt.UnixNano(), run.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("insert index run: %w", err)
	}
	return run, nil
}

// Finish stores the final counters of run. A non-nil runErr marks the run
// failed.
func (s *RunStore) Finish(ctx context.Context, run *IndexRun, runErr error) error {
	now := s.clock.Now()
	run.FinishedAt = &now
	run.Status = RunCompleted
	run.ErrorMessage = ""
	if runErr != nil {
		run.Status = RunFailed
		run.ErrorMessage = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE bimrl_index_runs
		SET finished_at = ?, element_count = ?, failed_count = ?, cell_count = ?,
			status = ?, error_message = ?
		WHERE run_id = ?`,
		now.UnixNano(), run.ElementCount, run.FailedCount, run.CellCount,
		run.Status, nullString(run.ErrorMessage), run.RunID,
	)
	if err != nil {
		return fmt.Errorf("finish index run %s: %w", run.RunID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish index run %s: %w", run.RunID, ErrNotFound)
	}
	return nil
}

// Get returns the run with the given id.
func (s *RunStore) Get(ctx context.Context, runID string) (*IndexRun, error) {
	runs, err := s.list(ctx, `WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("index run %s: %w", runID, ErrNotFound)
	}
	return runs[0], nil
}

// List returns the most recent runs of modelID, newest first.
func (s *RunStore) List(ctx context.Context, modelID string, limit int) ([]*IndexRun, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.list(ctx, `WHERE model_id = ? ORDER BY started_at DESC LIMIT ?`, modelID, limit)
}

func (s *RunStore) list(ctx context.Context, where string, args ...any) ([]*IndexRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, model_id, started_at, finished_at, element_count,
			failed_count, cell_count, status, error_message
		FROM bimrl_index_runs `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query index runs: %w", err)
	}
	defer rows.Close()

	var runs []*IndexRun
	for rows.Next() {
		var (
			run        IndexRun
			startedAt  int64
			finishedAt sql.NullInt64
			errMsg     sql.NullString
		)
		if err := rows.Scan(&run.RunID, &run.ModelID, &startedAt, &finishedAt,
			&run.ElementCount, &run.FailedCount, &run.CellCount, &run.Status, &errMsg,
		); err != nil {
			return nil, fmt.Errorf("scan index run: %w", err)
		}
		run.StartedAt = time.Unix(0, startedAt)
		if finishedAt.Valid {
			t := time.Unix(0, finishedAt.Int64)
			run.FinishedAt = &t
		}
		run.ErrorMessage = errMsg.String
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index runs: %w", err)
	}
	return runs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
