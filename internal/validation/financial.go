package validation

import (
	"fmt"

	"github.com/vietddude/collector/internal/core/domain"
)

// financialPass checks OHLCV consistency per row and flags extreme
// day-over-day moves. Outliers warn rather than reject: legitimate
// volatility exists.
func financialPass(ds *domain.Dataset, maxChangePct float64) PassResult {
	var res PassResult
	add := func(sev Severity, code string, row int, msg string) {
		res.Violations = append(res.Violations, Violation{
			Pass: PassFinancial, Severity: sev, Code: code, Row: row, Message: msg,
		})
	}

	for i, c := range ds.Candles {
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			add(SeverityError, "non_positive_price", i,
				fmt.Sprintf("o=%g h=%g l=%g c=%g", c.Open, c.High, c.Low, c.Close))
			continue
		}
		if c.Low > c.High {
			add(SeverityError, "low_above_high", i,
				fmt.Sprintf("low %g > high %g", c.Low, c.High))
		}
		if c.Open < c.Low || c.Open > c.High {
			add(SeverityError, "open_outside_range", i,
				fmt.Sprintf("open %g outside [%g, %g]", c.Open, c.Low, c.High))
		}
		if c.Close < c.Low || c.Close > c.High {
			add(SeverityError, "close_outside_range", i,
				fmt.Sprintf("close %g outside [%g, %g]", c.Close, c.Low, c.High))
		}
		if c.Volume < 0 {
			add(SeverityError, "negative_volume", i,
				fmt.Sprintf("volume %d", c.Volume))
		}

		if i > 0 {
			prev := ds.Candles[i-1].Close
			if prev > 0 {
				changePct := (c.Close - prev) / prev * 100
				if changePct < 0 {
					changePct = -changePct
				}
				if changePct > maxChangePct {
					add(SeverityWarning, "extreme_variation", i,
						fmt.Sprintf("close moved %.2f%% vs previous row (threshold %.2f%%)",
							changePct, maxChangePct))
				}
			}
		}
	}
	return res
}
