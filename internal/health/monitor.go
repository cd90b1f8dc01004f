// Package health exposes the collector's observable state over HTTP:
// liveness, the latest run summary and prometheus metrics.
package health

import (
	"sync"
	"time"

	"github.com/vietddude/collector/internal/core/domain"
	"github.com/vietddude/collector/internal/infra/ratelimit"
)

// Status grades overall service health.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusIdle     Status = "idle"
)

// Monitor tracks the latest run and quota state.
type Monitor struct {
	mu        sync.RWMutex
	limiter   *ratelimit.Limiter
	lastRun   *domain.Run
	startedAt time.Time
}

// NewMonitor creates a monitor observing the given limiter.
func NewMonitor(limiter *ratelimit.Limiter) *Monitor {
	return &Monitor{limiter: limiter, startedAt: time.Now()}
}

// RecordRun stores the latest finalized run.
func (m *Monitor) RecordRun(run *domain.Run) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRun = run
}

// Snapshot is the detailed health view.
type Snapshot struct {
	Status   Status                    `json:"status"`
	UptimeS  int64                     `json:"uptime_seconds"`
	Quota    []ratelimit.WindowStatus  `json:"quota,omitempty"`
	LastRun  *RunSummary               `json:"last_run,omitempty"`
	Outcomes map[string]domain.Outcome `json:"outcomes,omitempty"`
}

// RunSummary is the serializable slice of a finalized run.
type RunSummary struct {
	ID           string        `json:"id"`
	StartedAt    time.Time     `json:"started_at"`
	Attempted    int           `json:"attempted"`
	Succeeded    int           `json:"succeeded"`
	Failed       int           `json:"failed"`
	TotalRecords int           `json:"total_records"`
	Duration     time.Duration `json:"duration_ns"`
	Audit        []string      `json:"audit,omitempty"`
}

// Check builds the current snapshot. A run with any failures degrades the
// status; no run yet is idle.
func (m *Monitor) Check() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Status:  StatusIdle,
		UptimeS: int64(time.Since(m.startedAt).Seconds()),
	}
	if m.limiter != nil {
		snap.Quota = m.limiter.Status()
	}
	if m.lastRun == nil {
		return snap
	}

	met := m.lastRun.Metrics()
	snap.LastRun = &RunSummary{
		ID:           m.lastRun.ID.String(),
		StartedAt:    m.lastRun.StartedAt,
		Attempted:    met.Attempted,
		Succeeded:    met.Succeeded,
		Failed:       met.Failed,
		TotalRecords: met.TotalRecords,
		Duration:     met.Duration,
		Audit:        m.lastRun.AuditLog(),
	}
	snap.Outcomes = make(map[string]domain.Outcome)
	for sym, res := range m.lastRun.Outcomes() {
		snap.Outcomes[sym] = res.Outcome
	}

	if met.Failed > 0 {
		snap.Status = StatusDegraded
	} else {
		snap.Status = StatusHealthy
	}
	return snap
}
