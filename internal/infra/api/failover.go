package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/collector/internal/core/domain"
	"github.com/vietddude/collector/internal/infra/retry"
	"github.com/vietddude/collector/internal/pipeline/metrics"
)

// Failover tries an ordered list of providers for one logical fetch. Each
// provider carries its own limiter and retry budget; the chain advances on
// transient exhaustion and quota errors and stops on fatal ones, since an
// invalid request stays invalid on every provider.
type Failover struct {
	clients []*Client
	log     *slog.Logger
}

// NewFailover creates a failover over clients in priority order.
func NewFailover(clients []*Client, log *slog.Logger) *Failover {
	if log == nil {
		log = slog.Default()
	}
	return &Failover{clients: clients, log: log}
}

// Fetch tries each provider in order until one returns a dataset.
func (f *Failover) Fetch(ctx context.Context, req domain.Request) (*domain.Dataset, error) {
	var lastErr error
	for i, c := range f.clients {
		ds, err := c.Fetch(ctx, req)
		if err == nil {
			return ds, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, err
		}
		if Classify(err) == retry.Fatal {
			return nil, err
		}
		if i < len(f.clients)-1 {
			metrics.ProviderFailovers.WithLabelValues(c.Name()).Inc()
			f.log.Warn("provider failed, trying next",
				"provider", c.Name(),
				"symbol", req.Symbol,
				"error", err,
			)
		}
	}
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
