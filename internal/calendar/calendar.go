// Package calendar answers whether a given date is a trading day for a
// market. The temporal validation pass uses it to decide if a gap in a
// series is explained (holiday) or not.
package calendar

import "time"

// Calendar reports trading days.
type Calendar interface {
	IsTradingDay(date time.Time, market string) bool
}

// TableCalendar excludes weekends always and holidays per market from a
// configured table.
type TableCalendar struct {
	holidays map[string]map[string]struct{} // market -> yyyy-mm-dd set
}

// NewTableCalendar builds a calendar from per-market holiday date lists in
// yyyy-mm-dd form. Unknown markets have no holidays beyond weekends.
func NewTableCalendar(holidays map[string][]string) *TableCalendar {
	c := &TableCalendar{holidays: make(map[string]map[string]struct{})}
	for market, dates := range holidays {
		set := make(map[string]struct{}, len(dates))
		for _, d := range dates {
			set[d] = struct{}{}
		}
		c.holidays[market] = set
	}
	return c
}

// IsTradingDay reports whether date is a weekday and not a configured
// holiday for the market.
func (c *TableCalendar) IsTradingDay(date time.Time, market string) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if set, ok := c.holidays[market]; ok {
		if _, holiday := set[date.Format("2006-01-02")]; holiday {
			return false
		}
	}
	return true
}
