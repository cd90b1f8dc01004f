// Package pipeline fans the symbol universe across bounded concurrent
// workers. Each worker runs fetch -> validate -> submit for one symbol;
// one symbol's failure never affects its siblings.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/collector/internal/core/domain"
	"github.com/vietddude/collector/internal/infra/storage"
	"github.com/vietddude/collector/internal/pipeline/metrics"
	"github.com/vietddude/collector/internal/validation"
)

// Fetcher is the fetch-client boundary.
type Fetcher interface {
	Fetch(ctx context.Context, req domain.Request) (*domain.Dataset, error)
}

// Validator is the validation-engine boundary.
type Validator interface {
	Validate(ds *domain.Dataset) *validation.Report
}

// Config holds orchestration bounds.
type Config struct {
	MaxConcurrency int
	// BatchTimeout bounds the whole run. Symbols still pending at the
	// deadline are marked fetch-failed with a cancelled cause. 0 = none.
	BatchTimeout time.Duration
	// ForwardInvalid submits datasets that failed validation anyway,
	// leaving an audit entry on the run.
	ForwardInvalid bool
}

// Orchestrator drives one collection run.
type Orchestrator struct {
	cfg       Config
	fetcher   Fetcher
	validator Validator
	sink      storage.Sink
	log       *slog.Logger
}

// New creates an orchestrator.
func New(cfg Config, fetcher Fetcher, validator Validator, sink storage.Sink, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{cfg: cfg, fetcher: fetcher, validator: validator, sink: sink, log: log}
}

// Run processes every symbol and returns the finalized run. The only
// errors Run itself returns are configuration problems detected before any
// task starts.
func (o *Orchestrator) Run(ctx context.Context, symbols []string, tmpl domain.Request) (*domain.Run, error) {
	if len(symbols) == 0 {
		return nil, errors.New("pipeline: empty symbol set")
	}
	if o.cfg.MaxConcurrency < 1 {
		return nil, fmt.Errorf("pipeline: max_concurrency must be >= 1, got %d", o.cfg.MaxConcurrency)
	}

	if o.cfg.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.BatchTimeout)
		defer cancel()
	}

	run := domain.NewRun()
	o.log.Info("run started",
		"run_id", run.ID,
		"symbols", len(symbols),
		"concurrency", o.cfg.MaxConcurrency,
	)

	g := new(errgroup.Group)
	g.SetLimit(o.cfg.MaxConcurrency)

	for _, symbol := range symbols {
		// The deadline stops scheduling new tasks; in-flight attempts
		// finish within their own per-call timeout.
		if ctx.Err() != nil {
			run.Record(symbol, domain.SymbolResult{
				Outcome: domain.OutcomeFetchFailed,
				Cause:   "cancelled before start",
			})
			metrics.SymbolsProcessed.WithLabelValues(string(domain.OutcomeFetchFailed)).Inc()
			continue
		}

		g.Go(func() error {
			res := o.processSymbol(ctx, run, symbol, tmpl)
			run.Record(symbol, res)
			metrics.SymbolsProcessed.WithLabelValues(string(res.Outcome)).Inc()
			return nil // isolation: worker errors never cancel siblings
		})
	}

	_ = g.Wait()
	run.Finalize()

	m := run.Metrics()
	o.log.Info("run finished",
		"run_id", run.ID,
		"attempted", m.Attempted,
		"succeeded", m.Succeeded,
		"failed", m.Failed,
		"records", m.TotalRecords,
		"duration", m.Duration,
	)
	return run, nil
}

// processSymbol is one worker's sequential pipeline: fetch, validate,
// classify, submit.
func (o *Orchestrator) processSymbol(ctx context.Context, run *domain.Run, symbol string, tmpl domain.Request) domain.SymbolResult {
	if ctx.Err() != nil {
		return domain.SymbolResult{
			Outcome: domain.OutcomeFetchFailed,
			Cause:   "cancelled before start",
		}
	}

	req := domain.Request{Symbol: symbol, Endpoint: tmpl.Endpoint, Params: tmpl.Params}

	ds, err := o.fetcher.Fetch(ctx, req)
	if err != nil {
		o.log.Warn("fetch failed", "symbol", symbol, "error", err)
		return domain.SymbolResult{
			Outcome: domain.OutcomeFetchFailed,
			Cause:   err.Error(),
		}
	}
	metrics.RecordsFetched.Add(float64(len(ds.Candles)))

	report := o.validator.Validate(ds)
	if !report.Passed && !o.cfg.ForwardInvalid {
		return domain.SymbolResult{
			Outcome: domain.OutcomeValidationFailed,
			Cause:   summarize(report),
			Records: len(ds.Candles),
		}
	}

	res := domain.SymbolResult{
		Outcome: domain.OutcomeSuccess,
		Records: len(ds.Candles),
	}
	if !report.Passed {
		// Override in effect: forward anyway, classified as rejected.
		res.Outcome = domain.OutcomeValidationFailed
		res.Cause = summarize(report)
		run.Audit(fmt.Sprintf("forwarded invalid dataset for %s under override", symbol))
		o.log.Warn("forwarding invalid dataset under override", "symbol", symbol)
	}

	if err := o.submit(ctx, symbol, ds, report); err != nil {
		// Sink errors are recorded but do not reclassify the outcome.
		o.log.Error("sink submit failed", "symbol", symbol, "error", err)
		res.SinkErr = err.Error()
	}
	return res
}

// submit forwards one accepted (or overridden) dataset exactly once.
func (o *Orchestrator) submit(ctx context.Context, symbol string, ds *domain.Dataset, report *validation.Report) error {
	return o.sink.Submit(ctx, symbol, ds, report)
}

func summarize(r *validation.Report) string {
	return fmt.Sprintf("validation failed: basic=%d financial_errors=%d temporal_errors=%d",
		len(r.Basic.Violations), r.Financial.Errors(), r.Temporal.Errors())
}
