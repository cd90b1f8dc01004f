package validation

import (
	"log/slog"
	"time"

	"github.com/vietddude/collector/internal/calendar"
	"github.com/vietddude/collector/internal/core/domain"
	"github.com/vietddude/collector/internal/pipeline/metrics"
)

// Config holds validation thresholds.
type Config struct {
	// MaxDailyChangePct flags day-over-day close moves above this
	// percentage as outlier warnings.
	MaxDailyChangePct float64
	// Market selects the trading calendar.
	Market string
	// Timezone is the reference timezone for temporal comparison.
	Timezone string
}

// Engine runs the three passes over a dataset. The same input always
// produces an identical violation list.
type Engine struct {
	cfg Config
	cal calendar.Calendar
	loc *time.Location
	log *slog.Logger
}

// NewEngine creates an engine. An unparseable timezone falls back to UTC.
func NewEngine(cfg Config, cal calendar.Calendar, log *slog.Logger) *Engine {
	if cfg.MaxDailyChangePct <= 0 {
		cfg.MaxDailyChangePct = 20
	}
	if log == nil {
		log = slog.Default()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil || cfg.Timezone == "" {
		loc = time.UTC
	}
	return &Engine{cfg: cfg, cal: cal, loc: loc, log: log}
}

// Validate runs all passes and assembles the report. The report passes iff
// the basic pass is clean and financial/temporal have no error-severity
// findings. Warnings never fail a report.
func (e *Engine) Validate(ds *domain.Dataset) *Report {
	r := &Report{
		Symbol:    ds.Symbol,
		Basic:     basicPass(ds),
		Financial: financialPass(ds, e.cfg.MaxDailyChangePct),
		Temporal:  temporalPass(ds, e.cal, e.cfg.Market, e.loc),
	}
	r.Passed = len(r.Basic.Violations) == 0 &&
		r.Financial.Errors() == 0 &&
		r.Temporal.Errors() == 0

	for _, v := range r.Violations() {
		metrics.ValidationViolations.WithLabelValues(string(v.Pass), string(v.Severity)).Inc()
	}
	if !r.Passed {
		e.log.Warn("dataset rejected",
			"symbol", ds.Symbol,
			"basic", len(r.Basic.Violations),
			"financial_errors", r.Financial.Errors(),
			"temporal_errors", r.Temporal.Errors(),
		)
	}
	return r
}
