package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/collector/internal/infra/storage"
)

// Pruner deletes candles older than the retention period.
type Pruner struct {
	retention time.Duration
	store     storage.CandlePruner
	log       *slog.Logger
}

// NewPruner creates a pruner. A non-positive retention disables it.
func NewPruner(retention time.Duration, store storage.CandlePruner, log *slog.Logger) *Pruner {
	if log == nil {
		log = slog.Default()
	}
	return &Pruner{retention: retention, store: store, log: log}
}

// Start runs the pruner loop until the context is cancelled.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 || p.store == nil {
		return
	}

	// Check interval scales with retention, bounded to [1m, 1h].
	interval := min(p.retention/10, time.Hour)
	interval = max(interval, time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	cutoff := time.Now().Add(-p.retention).Format("2006-01-02")
	deleted, err := p.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		p.log.Error("prune failed", "cutoff", cutoff, "error", err)
		return
	}
	if deleted > 0 {
		p.log.Info("pruned old candles", "cutoff", cutoff, "deleted", deleted)
	}
}
