// Package upcoming resolves named query periods into concrete date windows
// and orchestrates recurrence expansion and override merging across a
// collection of events.
package upcoming

import (
	"fmt"
	"time"

	"github.com/tshepom/upcoming/calendar"
)

// Period names a query window relative to today, or CUSTOM for explicit
// bounds.
type Period string

const (
	Day    Period = "DAY"
	Week   Period = "WEEK"
	Month  Period = "MONTH"
	Year   Period = "YEAR"
	Custom Period = "CUSTOM"
)

// ParsePeriod converts a period name into a Period.
func ParsePeriod(name string) (Period, error) {
	switch p := Period(name); p {
	case Day, Week, Month, Year, Custom:
		return p, nil
	default:
		return "", &calendar.Error{
			Type:    calendar.ErrInvalidDateRange,
			Message: fmt.Sprintf("unknown period %q", name),
		}
	}
}

// ResolveWindow maps a period to the concrete [from, to] window it denotes
// on the given day. From is the start of its calendar day, To the end of
// its day. CUSTOM requires both bounds of custom and from <= to.
//
// WEEK starts at today minus isoWeekday(today) days, so on a Monday the
// window begins the previous Sunday. That formula is load-bearing for
// existing callers and is kept as is.
func ResolveWindow(period Period, today time.Time, custom *calendar.DateRange) (calendar.DateRange, error) {
	switch period {
	case Day:
		return calendar.DateRange{From: startOfDay(today), To: endOfDay(today)}, nil

	case Week:
		start := today.AddDate(0, 0, -isoWeekday(today))
		end := start.AddDate(0, 0, 6)
		return calendar.DateRange{From: startOfDay(start), To: endOfDay(end)}, nil

	case Month:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		last := first.AddDate(0, 1, -1)
		return calendar.DateRange{From: first, To: endOfDay(last)}, nil

	case Year:
		first := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location())
		next := time.Date(today.Year()+1, 1, 1, 0, 0, 0, 0, today.Location())
		return calendar.DateRange{From: first, To: endOfDay(next)}, nil

	case Custom:
		if custom == nil || custom.From.IsZero() || custom.To.IsZero() {
			return calendar.DateRange{}, &calendar.Error{
				Type:    calendar.ErrInvalidDateRange,
				Message: "custom period requires from and to dates",
			}
		}
		if custom.From.After(custom.To) {
			return calendar.DateRange{}, &calendar.Error{
				Type:    calendar.ErrInvalidDateRange,
				Message: "custom from date after to date",
			}
		}
		return calendar.DateRange{From: startOfDay(custom.From), To: endOfDay(custom.To)}, nil

	default:
		return calendar.DateRange{}, &calendar.Error{
			Type:    calendar.ErrInvalidDateRange,
			Message: fmt.Sprintf("unknown period %q", period),
		}
	}
}

// isoWeekday returns Monday=1 .. Sunday=7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
