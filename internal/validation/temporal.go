package validation

import (
	"fmt"
	"time"

	"github.com/vietddude/collector/internal/calendar"
	"github.com/vietddude/collector/internal/core/domain"
)

// temporalPass checks that timestamps strictly increase and that gaps
// between consecutive trading days are explained by the calendar. All
// timestamps are normalized to the reference timezone before comparison;
// rows within the same trading day (intraday series) only need strictly
// increasing clocks.
func temporalPass(ds *domain.Dataset, cal calendar.Calendar, market string, loc *time.Location) PassResult {
	var res PassResult
	add := func(sev Severity, code string, row int, msg string) {
		res.Violations = append(res.Violations, Violation{
			Pass: PassTemporal, Severity: sev, Code: code, Row: row, Message: msg,
		})
	}

	for i := 1; i < len(ds.Candles); i++ {
		prev := normalize(ds.Candles[i-1].Date, loc)
		cur := normalize(ds.Candles[i].Date, loc)

		if cur.Equal(prev) {
			add(SeverityError, "duplicate_date", i,
				fmt.Sprintf("timestamp %s repeats", stamp(cur)))
			continue
		}
		if cur.Before(prev) {
			add(SeverityError, "date_regression", i,
				fmt.Sprintf("timestamp %s precedes %s", stamp(cur), stamp(prev)))
			continue
		}

		prevDay := dateOf(prev)
		curDay := dateOf(cur)
		if curDay.Equal(prevDay) {
			// Same trading day, later clock: valid intraday succession.
			continue
		}

		// Walk the calendar days between the two rows. Missing trading
		// days are unexplained; missing holidays only warn.
		missedTrading := 0
		missedHolidays := 0
		for d := prevDay.AddDate(0, 0, 1); d.Before(curDay); d = d.AddDate(0, 0, 1) {
			switch d.Weekday() {
			case time.Saturday, time.Sunday:
				// Weekends are always expected gaps.
			default:
				if cal.IsTradingDay(d, market) {
					missedTrading++
				} else {
					missedHolidays++
				}
			}
		}
		if missedTrading > 0 {
			add(SeverityError, "unexplained_gap", i,
				fmt.Sprintf("%d trading day(s) missing between %s and %s",
					missedTrading, prevDay.Format("2006-01-02"), curDay.Format("2006-01-02")))
		} else if missedHolidays > 0 {
			add(SeverityWarning, "holiday_gap", i,
				fmt.Sprintf("%d holiday(s) between %s and %s",
					missedHolidays, prevDay.Format("2006-01-02"), curDay.Format("2006-01-02")))
		}
	}
	return res
}

// normalize shifts a timestamp into the reference timezone. Rows that are
// pure dates (midnight) keep their calendar date as-is; converting those
// would move UTC midnight into the prior day.
func normalize(t time.Time, loc *time.Location) time.Time {
	h, m, s := t.Clock()
	if loc != nil && (h != 0 || m != 0 || s != 0) {
		return t.In(loc)
	}
	return t
}

// dateOf truncates a normalized timestamp to its calendar date.
func dateOf(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func stamp(t time.Time) string {
	if h, m, s := t.Clock(); h != 0 || m != 0 || s != 0 {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format("2006-01-02")
}
