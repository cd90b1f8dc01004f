// Package storage defines the persistence boundary for accepted datasets
// and run summaries.
package storage

import (
	"context"

	"github.com/vietddude/collector/internal/core/domain"
	"github.com/vietddude/collector/internal/validation"
)

// Sink durably persists accepted datasets. It is append-capable but not
// assumed to deduplicate across runs; the orchestrator guarantees at most
// one Submit per symbol per run.
type Sink interface {
	Submit(ctx context.Context, symbol string, ds *domain.Dataset, report *validation.Report) error
}

// RunRepository persists finalized run summaries.
type RunRepository interface {
	SaveRun(ctx context.Context, run *domain.Run) error
}

// CandlePruner deletes candles older than a cutoff date. Used by the
// retention worker.
type CandlePruner interface {
	DeleteBefore(ctx context.Context, cutoff string) (int64, error)
}
