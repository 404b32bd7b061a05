// Package recurrence compiles stored recurrence specs into rrule expansion
// parameters and generates the concrete time slots a rule produces within a
// query window.
package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/tshepom/upcoming/calendar"
)

// frequencies maps stored frequency codes onto rrule step constants. The
// tables are built once; Compile only does lookups.
var frequencies = map[calendar.Frequency]rrule.Frequency{
	calendar.Yearly:  rrule.YEARLY,
	calendar.Monthly: rrule.MONTHLY,
	calendar.Weekly:  rrule.WEEKLY,
	calendar.Daily:   rrule.DAILY,
	calendar.Hourly:  rrule.HOURLY,
}

// weekdays maps sequence values onto rrule weekdays, index 0 = Monday.
var weekdays = []rrule.Weekday{
	rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU,
}

// periodRules maps each period rule onto the rrule axis it populates.
var periodRules = map[calendar.PeriodRule]func(seq []int) (func(*rrule.ROption), error){
	calendar.ByYearDay: func(seq []int) (func(*rrule.ROption), error) {
		return func(o *rrule.ROption) { o.Byyearday = seq }, nil
	},
	calendar.ByMonth: func(seq []int) (func(*rrule.ROption), error) {
		return func(o *rrule.ROption) { o.Bymonth = seq }, nil
	},
	calendar.ByMonthDay: func(seq []int) (func(*rrule.ROption), error) {
		return func(o *rrule.ROption) { o.Bymonthday = seq }, nil
	},
	calendar.ByWeekNo: func(seq []int) (func(*rrule.ROption), error) {
		return func(o *rrule.ROption) { o.Byweekno = seq }, nil
	},
	calendar.ByWeekDay: func(seq []int) (func(*rrule.ROption), error) {
		days := make([]rrule.Weekday, 0, len(seq))
		for _, d := range seq {
			if d < 0 || d >= len(weekdays) {
				return nil, fmt.Errorf("weekday %d out of range", d)
			}
			days = append(days, weekdays[d])
		}
		return func(o *rrule.ROption) { o.Byweekday = days }, nil
	},
	calendar.ByHour: func(seq []int) (func(*rrule.ROption), error) {
		return func(o *rrule.ROption) { o.Byhour = seq }, nil
	},
}

// CompiledRule holds the validated expansion parameters of one spec.
type CompiledRule struct {
	freq     rrule.Frequency
	interval int
	count    int       // 0 means unbounded
	until    time.Time // zero means none; an inclusive calendar date
	apply    func(*rrule.ROption)
}

// Until returns the rule's inclusive end date, if one is set.
func (r CompiledRule) Until() (time.Time, bool) {
	return r.until, !r.until.IsZero()
}

// ROption materializes the rrule options for expansion anchored at dtstart.
func (r CompiledRule) ROption(dtstart time.Time) rrule.ROption {
	opt := rrule.ROption{
		Freq:     r.freq,
		Dtstart:  dtstart,
		Interval: r.interval,
		Count:    r.count,
	}
	if !r.until.IsZero() {
		// until is an inclusive date; bound expansion at its last instant
		opt.Until = endOfDay(r.until)
	}
	if r.apply != nil {
		r.apply(&opt)
	}
	return opt
}

// Compile validates spec and translates it into expansion parameters.
// It rejects unknown frequency and period-rule codes and the conflicting
// count+until combination. The until-not-in-past constraint belongs to
// input validation (see ValidateAt) and is not re-checked here.
func Compile(spec *calendar.RecurrenceSpec) (CompiledRule, error) {
	var rule CompiledRule
	if spec == nil {
		return rule, &calendar.Error{
			Type:    calendar.ErrInvalidRecurrence,
			Message: "missing recurrence spec",
		}
	}

	freq, ok := frequencies[spec.Frequency]
	if !ok {
		return rule, &calendar.Error{
			Type:    calendar.ErrInvalidRecurrence,
			Message: fmt.Sprintf("unknown frequency %q", spec.Frequency),
		}
	}
	if spec.Count.IsPresent() && spec.Until.IsPresent() {
		return rule, &calendar.Error{
			Type:    calendar.ErrInvalidRecurrence,
			Message: "count and until both set",
		}
	}

	rule.freq = freq
	rule.interval = spec.Interval.OrElse(1)
	rule.count = spec.Count.OrElse(0)
	rule.until = spec.Until.OrElse(time.Time{})

	if period, ok := spec.Period.Get(); ok {
		build, ok := periodRules[period.Rule]
		if !ok {
			return rule, &calendar.Error{
				Type:    calendar.ErrInvalidRecurrence,
				Message: fmt.Sprintf("unknown period rule %q", period.Rule),
			}
		}
		apply, err := build(period.Sequence)
		if err != nil {
			return rule, &calendar.Error{
				Type:    calendar.ErrInvalidRecurrence,
				Message: "invalid period sequence",
				Err:     err,
			}
		}
		rule.apply = apply
	}

	return rule, nil
}

// ValidateAt checks spec the way creation-time input validation does: it must
// compile, and until may not be earlier than the current date. Expansion
// assumes this held when the spec was stored.
func ValidateAt(spec *calendar.RecurrenceSpec, now time.Time) error {
	if _, err := Compile(spec); err != nil {
		return err
	}
	if until, ok := spec.Until.Get(); ok && dateOf(until).Before(dateOf(now)) {
		return &calendar.Error{
			Type:    calendar.ErrInvalidRecurrence,
			Message: "until in past",
		}
	}
	return nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
