package postgres

import (
	"context"
	"fmt"

	"github.com/vietddude/collector/internal/core/domain"
)

// RunRepo persists finalized run summaries.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a run repository.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

const insertRun = `
INSERT INTO runs (id, started_at, duration_ms, attempted, succeeded, failed, total_records)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const insertRunOutcome = `
INSERT INTO run_outcomes (run_id, symbol, outcome, cause, records, sink_error)
VALUES ($1, $2, $3, $4, $5, $6)`

// SaveRun writes the run summary and every per-symbol outcome.
func (r *RunRepo) SaveRun(ctx context.Context, run *domain.Run) error {
	m := run.Metrics()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertRun,
		run.ID, run.StartedAt.UTC(), m.Duration.Milliseconds(),
		m.Attempted, m.Succeeded, m.Failed, m.TotalRecords,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for symbol, res := range run.Outcomes() {
		if _, err := tx.ExecContext(ctx, insertRunOutcome,
			run.ID, symbol, string(res.Outcome), res.Cause, res.Records, res.SinkErr,
		); err != nil {
			return fmt.Errorf("insert outcome %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
