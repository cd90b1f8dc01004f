package validation

import (
	"fmt"
	"math"

	"github.com/vietddude/collector/internal/core/domain"
)

// basicPass checks structural integrity row by row: required fields
// present, numbers finite, and no corruption signals.
func basicPass(ds *domain.Dataset) PassResult {
	var res PassResult
	add := func(sev Severity, code string, row int, msg string) {
		res.Violations = append(res.Violations, Violation{
			Pass: PassBasic, Severity: sev, Code: code, Row: row, Message: msg,
		})
	}

	if len(ds.Candles) == 0 {
		add(SeverityError, "empty_dataset", -1, "dataset has no rows")
		return res
	}

	for i, c := range ds.Candles {
		if c.Date.IsZero() {
			add(SeverityError, "missing_date", i, "row has no date")
		}
		if c.Symbol == "" {
			add(SeverityError, "missing_symbol", i, "row has no symbol")
		}
		for _, f := range []struct {
			name  string
			value float64
		}{
			{"open", c.Open}, {"high", c.High}, {"low", c.Low}, {"close", c.Close},
		} {
			if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
				add(SeverityError, "invalid_value", i,
					fmt.Sprintf("%s is not a finite number", f.name))
			}
		}
		// Zero or negative volume next to a real price is a corruption
		// signal, not a quiet trading day.
		if c.Volume <= 0 && c.Close != 0 {
			add(SeverityError, "volume_price_mismatch", i,
				fmt.Sprintf("volume %d with non-zero close %g", c.Volume, c.Close))
		}
	}
	return res
}
