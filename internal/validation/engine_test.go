package validation

import (
	"reflect"
	"testing"
	"time"

	"github.com/vietddude/collector/internal/calendar"
	"github.com/vietddude/collector/internal/core/domain"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// tradingWeek returns clean candles for Mon 2025-01-06 .. Fri 2025-01-10.
func tradingWeek(symbol string) []domain.Candle {
	dates := []string{"2025-01-06", "2025-01-07", "2025-01-08", "2025-01-09", "2025-01-10"}
	candles := make([]domain.Candle, len(dates))
	for i, d := range dates {
		base := 100.0 + float64(i)
		candles[i] = domain.Candle{
			Symbol: symbol,
			Date:   day(d),
			Open:   base,
			High:   base + 5,
			Low:    base - 5,
			Close:  base + 2,
			Volume: 1000 + int64(i)*100,
		}
	}
	return candles
}

func newTestEngine() *Engine {
	cal := calendar.NewTableCalendar(map[string][]string{"US": {"2025-01-20"}})
	return NewEngine(Config{MaxDailyChangePct: 20, Market: "US", Timezone: "UTC"}, cal, nil)
}

func dataset(symbol string, candles []domain.Candle) *domain.Dataset {
	return &domain.Dataset{
		Symbol:    symbol,
		Candles:   candles,
		FetchedAt: time.Now(),
		Status:    domain.FetchStatusSuccess,
	}
}

func TestValidate_CleanDatasetPasses(t *testing.T) {
	e := newTestEngine()
	r := e.Validate(dataset("TEST", tradingWeek("TEST")))

	if !r.Passed {
		t.Fatalf("clean dataset should pass, violations: %v", r.Violations())
	}
	if len(r.Violations()) != 0 {
		t.Errorf("expected no violations, got %v", r.Violations())
	}
}

func TestValidate_HighBelowOpenFails(t *testing.T) {
	e := newTestEngine()
	candles := []domain.Candle{{
		Symbol: "TEST", Date: day("2025-01-06"),
		Open: 10, High: 9, Low: 8, Close: 9.5, Volume: 100,
	}}
	r := e.Validate(dataset("TEST", candles))

	if r.Passed {
		t.Fatal("high < open must fail the report")
	}
	found := false
	for _, v := range r.Financial.Violations {
		if v.Code == "open_outside_range" && v.Severity == SeverityError {
			found = true
		}
	}
	if !found {
		t.Errorf("expected open_outside_range error, got %v", r.Financial.Violations)
	}
}

func TestValidate_LowAboveHighIsError(t *testing.T) {
	e := newTestEngine()
	candles := tradingWeek("TEST")
	candles[2].Low = 200
	candles[2].High = 100
	r := e.Validate(dataset("TEST", candles))

	if r.Passed {
		t.Fatal("low > high must fail the report")
	}
	found := false
	for _, v := range r.Financial.Violations {
		if v.Code == "low_above_high" && v.Row == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected low_above_high at row 2, got %v", r.Financial.Violations)
	}
}

func TestValidate_OutlierMoveWarnsButPasses(t *testing.T) {
	e := newTestEngine()
	candles := tradingWeek("TEST")
	// +50% close vs previous row, internally consistent.
	candles[3].Open = 150
	candles[3].High = 160
	candles[3].Low = 140
	candles[3].Close = 155
	candles[4].Open = 155
	candles[4].High = 165
	candles[4].Low = 150
	candles[4].Close = 158
	r := e.Validate(dataset("TEST", candles))

	if !r.Passed {
		t.Fatalf("outlier move should warn, not reject: %v", r.Violations())
	}
	found := false
	for _, v := range r.Financial.Violations {
		if v.Code == "extreme_variation" && v.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("expected extreme_variation warning, got %v", r.Financial.Violations)
	}
}

func TestValidate_NegativeVolumeIsError(t *testing.T) {
	e := newTestEngine()
	candles := tradingWeek("TEST")
	candles[1].Volume = -100
	r := e.Validate(dataset("TEST", candles))

	if r.Passed {
		t.Fatal("negative volume must fail the report")
	}
}

func TestValidate_ZeroVolumeWithPriceIsBasicError(t *testing.T) {
	e := newTestEngine()
	candles := tradingWeek("TEST")
	candles[0].Volume = 0
	r := e.Validate(dataset("TEST", candles))

	if r.Passed {
		t.Fatal("zero volume alongside a real close must fail")
	}
	if len(r.Basic.Violations) == 0 {
		t.Error("expected a basic pass violation")
	}
}

func TestValidate_DuplicateDateIsError(t *testing.T) {
	e := newTestEngine()
	candles := tradingWeek("TEST")
	candles[2].Date = candles[1].Date
	r := e.Validate(dataset("TEST", candles))

	if r.Passed {
		t.Fatal("duplicate dates must fail the report")
	}
	found := false
	for _, v := range r.Temporal.Violations {
		if v.Code == "duplicate_date" || v.Code == "date_regression" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected temporal error, got %v", r.Temporal.Violations)
	}
}

func TestValidate_WeekendGapIsExpected(t *testing.T) {
	e := newTestEngine()
	// Fri 2025-01-10 then Mon 2025-01-13.
	candles := []domain.Candle{
		{Symbol: "TEST", Date: day("2025-01-10"), Open: 100, High: 105, Low: 95, Close: 102, Volume: 1000},
		{Symbol: "TEST", Date: day("2025-01-13"), Open: 102, High: 107, Low: 97, Close: 104, Volume: 1100},
	}
	r := e.Validate(dataset("TEST", candles))

	if !r.Passed {
		t.Errorf("weekend gap should pass, got %v", r.Violations())
	}
	if len(r.Temporal.Violations) != 0 {
		t.Errorf("weekend gap should produce no violations, got %v", r.Temporal.Violations)
	}
}

func TestValidate_HolidayGapWarns(t *testing.T) {
	e := newTestEngine()
	// Fri 2025-01-17 then Tue 2025-01-21; Mon 2025-01-20 is a holiday.
	candles := []domain.Candle{
		{Symbol: "TEST", Date: day("2025-01-17"), Open: 100, High: 105, Low: 95, Close: 102, Volume: 1000},
		{Symbol: "TEST", Date: day("2025-01-21"), Open: 102, High: 107, Low: 97, Close: 104, Volume: 1100},
	}
	r := e.Validate(dataset("TEST", candles))

	if !r.Passed {
		t.Fatalf("holiday gap should warn, not reject: %v", r.Violations())
	}
	found := false
	for _, v := range r.Temporal.Violations {
		if v.Code == "holiday_gap" && v.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("expected holiday_gap warning, got %v", r.Temporal.Violations)
	}
}

func TestValidate_UnexplainedGapIsError(t *testing.T) {
	e := newTestEngine()
	// Mon 2025-01-06 then Thu 2025-01-09: Tue and Wed are trading days.
	candles := []domain.Candle{
		{Symbol: "TEST", Date: day("2025-01-06"), Open: 100, High: 105, Low: 95, Close: 102, Volume: 1000},
		{Symbol: "TEST", Date: day("2025-01-09"), Open: 102, High: 107, Low: 97, Close: 104, Volume: 1100},
	}
	r := e.Validate(dataset("TEST", candles))

	if r.Passed {
		t.Fatal("unexplained gap must fail the report")
	}
	found := false
	for _, v := range r.Temporal.Violations {
		if v.Code == "unexplained_gap" && v.Severity == SeverityError {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unexplained_gap error, got %v", r.Temporal.Violations)
	}
}

func clock(s string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04:05", s)
	return t
}

func intradayCandle(symbol, ts string, base float64) domain.Candle {
	return domain.Candle{
		Symbol: symbol, Date: clock(ts),
		Open: base, High: base + 1, Low: base - 1, Close: base + 0.5, Volume: 500,
	}
}

func TestValidate_IntradaySeriesPasses(t *testing.T) {
	e := newTestEngine()
	candles := []domain.Candle{
		intradayCandle("TEST", "2025-01-06 09:30:00", 100),
		intradayCandle("TEST", "2025-01-06 09:35:00", 100.5),
		intradayCandle("TEST", "2025-01-06 09:40:00", 101),
	}
	r := e.Validate(dataset("TEST", candles))

	if !r.Passed {
		t.Fatalf("increasing intraday timestamps should pass, got %v", r.Violations())
	}
	if len(r.Temporal.Violations) != 0 {
		t.Errorf("expected no temporal violations, got %v", r.Temporal.Violations)
	}
}

func TestValidate_IntradayAcrossDaysPasses(t *testing.T) {
	e := newTestEngine()
	// Last bars of Mon 2025-01-06, first bars of Tue 2025-01-07.
	candles := []domain.Candle{
		intradayCandle("TEST", "2025-01-06 15:55:00", 100),
		intradayCandle("TEST", "2025-01-06 16:00:00", 100.5),
		intradayCandle("TEST", "2025-01-07 09:30:00", 101),
	}
	r := e.Validate(dataset("TEST", candles))

	if !r.Passed {
		t.Fatalf("consecutive-day intraday series should pass, got %v", r.Violations())
	}
}

func TestValidate_IntradayDuplicateTimestampIsError(t *testing.T) {
	e := newTestEngine()
	candles := []domain.Candle{
		intradayCandle("TEST", "2025-01-06 09:30:00", 100),
		intradayCandle("TEST", "2025-01-06 09:30:00", 100.5),
	}
	r := e.Validate(dataset("TEST", candles))

	if r.Passed {
		t.Fatal("repeated intraday timestamp must fail the report")
	}
	found := false
	for _, v := range r.Temporal.Violations {
		if v.Code == "duplicate_date" && v.Severity == SeverityError {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate_date error, got %v", r.Temporal.Violations)
	}
}

func TestValidate_IntradayRegressionIsError(t *testing.T) {
	e := newTestEngine()
	candles := []domain.Candle{
		intradayCandle("TEST", "2025-01-06 09:35:00", 100),
		intradayCandle("TEST", "2025-01-06 09:30:00", 100.5),
	}
	r := e.Validate(dataset("TEST", candles))

	if r.Passed {
		t.Fatal("backwards intraday timestamp must fail the report")
	}
	found := false
	for _, v := range r.Temporal.Violations {
		if v.Code == "date_regression" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected date_regression error, got %v", r.Temporal.Violations)
	}
}

func TestValidate_Deterministic(t *testing.T) {
	e := newTestEngine()
	candles := tradingWeek("TEST")
	candles[1].Low = 200 // error
	candles[3].Close = candles[3].High + 1
	ds := dataset("TEST", candles)

	first := e.Validate(ds).Violations()
	for i := 0; i < 5; i++ {
		again := e.Validate(ds).Violations()
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced different violations:\n%v\nvs\n%v", i, first, again)
		}
	}
}

func TestValidate_EmptyDatasetFails(t *testing.T) {
	e := newTestEngine()
	r := e.Validate(dataset("TEST", nil))
	if r.Passed {
		t.Fatal("empty dataset must fail")
	}
}
