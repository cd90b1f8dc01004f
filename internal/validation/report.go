// Package validation certifies fetched datasets in three independent
// passes: basic structure, financial consistency and temporal sequence.
package validation

import "fmt"

// Pass identifies which validation pass produced a violation.
type Pass string

const (
	PassBasic     Pass = "basic"
	PassFinancial Pass = "financial"
	PassTemporal  Pass = "temporal"
)

// Severity grades a violation.
type Severity string

const (
	// SeverityError fails the report.
	SeverityError Severity = "error"
	// SeverityWarning is recorded but accepted; legitimate volatility and
	// holiday gaps land here.
	SeverityWarning Severity = "warning"
)

// Violation is one finding. Row is the index into the dataset's candles.
type Violation struct {
	Pass     Pass
	Severity Severity
	Code     string
	Row      int
	Message  string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s/%s] %s row %d: %s", v.Pass, v.Severity, v.Code, v.Row, v.Message)
}

// PassResult summarizes one pass.
type PassResult struct {
	Violations []Violation
}

// Errors counts error-severity violations.
func (p PassResult) Errors() int {
	n := 0
	for _, v := range p.Violations {
		if v.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Report is the immutable outcome of validating one dataset. Exactly one
// report exists per dataset that reached validation.
type Report struct {
	Symbol    string
	Basic     PassResult
	Financial PassResult
	Temporal  PassResult
	Passed    bool
}

// Violations returns all findings in deterministic order: basic, then
// financial, then temporal, each in row order.
func (r *Report) Violations() []Violation {
	out := make([]Violation, 0,
		len(r.Basic.Violations)+len(r.Financial.Violations)+len(r.Temporal.Violations))
	out = append(out, r.Basic.Violations...)
	out = append(out, r.Financial.Violations...)
	out = append(out, r.Temporal.Violations...)
	return out
}
