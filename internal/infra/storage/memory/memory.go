// Package memory provides in-memory storage used when no database is
// configured and by tests.
package memory

import (
	"context"
	"sync"

	"github.com/vietddude/collector/internal/core/domain"
	"github.com/vietddude/collector/internal/validation"
)

// Submission is one recorded Sink.Submit call.
type Submission struct {
	Symbol  string
	Dataset *domain.Dataset
	Report  *validation.Report
}

// Sink records submissions instead of persisting them.
type Sink struct {
	mu          sync.Mutex
	submissions []Submission
	runs        []*domain.Run
	err         error
}

// NewSink creates an empty in-memory sink.
func NewSink() *Sink {
	return &Sink{}
}

// FailWith makes every subsequent Submit return err.
func (s *Sink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Sink) Submit(ctx context.Context, symbol string, ds *domain.Dataset, report *validation.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.submissions = append(s.submissions, Submission{Symbol: symbol, Dataset: ds, Report: report})
	return nil
}

// SaveRun records a finalized run.
func (s *Sink) SaveRun(ctx context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

// Submissions returns a copy of recorded submissions.
func (s *Sink) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Submission(nil), s.submissions...)
}

// SubmissionsFor counts submissions for one symbol.
func (s *Sink) SubmissionsFor(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.submissions {
		if sub.Symbol == symbol {
			n++
		}
	}
	return n
}
