package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome is the terminal classification of one symbol within a run.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeFetchFailed      Outcome = "fetch_failed"
	OutcomeValidationFailed Outcome = "validation_failed"
)

// SymbolResult records how a single symbol finished.
type SymbolResult struct {
	Outcome Outcome
	Cause   string // failure detail, empty on success
	Records int
	SinkErr string // sink error, recorded but does not change Outcome
}

// RunMetrics aggregates counters across a run. Aggregation is commutative:
// the totals do not depend on symbol completion order.
type RunMetrics struct {
	Attempted    int
	Succeeded    int
	Failed       int
	TotalRecords int
	Duration     time.Duration
}

// Run is the observable artifact of one pipeline execution. It is mutated
// only by the orchestrator while workers complete and becomes immutable
// after Finalize.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time

	mu        sync.Mutex
	outcomes  map[string]SymbolResult
	metrics   RunMetrics
	audit     []string
	finalized bool
}

// NewRun creates a run in its mutable, in-progress state.
func NewRun() *Run {
	return &Run{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		outcomes:  make(map[string]SymbolResult),
	}
}

// Record stores a symbol's terminal result and folds it into the metrics.
// Recording after Finalize is a no-op.
func (r *Run) Record(symbol string, res SymbolResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return
	}
	r.outcomes[symbol] = res
	r.metrics.Attempted++
	if res.Outcome == OutcomeSuccess {
		r.metrics.Succeeded++
	} else {
		r.metrics.Failed++
	}
	r.metrics.TotalRecords += res.Records
}

// Audit appends a run-level audit note, e.g. when the invalid-data
// forwarding override is exercised.
func (r *Run) Audit(note string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return
	}
	r.audit = append(r.audit, note)
}

// Finalize seals the run. Further Record/Audit calls are ignored.
func (r *Run) Finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return
	}
	r.metrics.Duration = time.Since(r.StartedAt)
	r.finalized = true
}

// Outcome returns the recorded result for a symbol.
func (r *Run) Outcome(symbol string) (SymbolResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.outcomes[symbol]
	return res, ok
}

// Outcomes returns a copy of all per-symbol results.
func (r *Run) Outcomes() map[string]SymbolResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]SymbolResult, len(r.outcomes))
	for k, v := range r.outcomes {
		out[k] = v
	}
	return out
}

// Metrics returns the aggregated counters.
func (r *Run) Metrics() RunMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metrics
}

// AuditLog returns a copy of the audit entries.
func (r *Run) AuditLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.audit...)
}
