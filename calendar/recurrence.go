package calendar

import (
	"fmt"
	"time"

	"github.com/samber/mo"
)

// Frequency is the base step of a recurrence rule.
type Frequency string

const (
	Yearly  Frequency = "YEARLY"
	Monthly Frequency = "MONTHLY"
	Weekly  Frequency = "WEEKLY"
	Daily   Frequency = "DAILY"
	Hourly  Frequency = "HOURLY"
)

// ParseFrequency converts a stored frequency code into a Frequency.
func ParseFrequency(code string) (Frequency, error) {
	switch f := Frequency(code); f {
	case Yearly, Monthly, Weekly, Daily, Hourly:
		return f, nil
	default:
		return "", &Error{
			Type:    ErrInvalidRecurrence,
			Message: fmt.Sprintf("unknown frequency %q", code),
		}
	}
}

// PeriodRule narrows a frequency step to specific positions within it.
type PeriodRule string

const (
	ByYearDay  PeriodRule = "BY_YEAR_DAY"
	ByMonth    PeriodRule = "BY_MONTH"
	ByMonthDay PeriodRule = "BY_MONTH_DAY"
	ByWeekNo   PeriodRule = "BY_WEEK_NO"
	ByWeekDay  PeriodRule = "BY_WEEK_DAY"
	ByHour     PeriodRule = "BY_HOUR"
)

// ParsePeriodRule converts a stored period rule code into a PeriodRule.
func ParsePeriodRule(code string) (PeriodRule, error) {
	switch r := PeriodRule(code); r {
	case ByYearDay, ByMonth, ByMonthDay, ByWeekNo, ByWeekDay, ByHour:
		return r, nil
	default:
		return "", &Error{
			Type:    ErrInvalidRecurrence,
			Message: fmt.Sprintf("unknown period rule %q", code),
		}
	}
}

// RecurrencePeriod applies Rule to an ordered integer sequence. For
// BY_WEEK_DAY the sequence holds weekday indices with 0 = Monday, so
// [3, 4] means Thursday and Friday.
type RecurrencePeriod struct {
	Rule     PeriodRule `json:"rule"`
	Sequence []int      `json:"sequence"`
}

// RecurrenceSpec is the stored form of a recurrence rule. Interval defaults
// to 1 when absent. Count and Until are mutually exclusive; Until is an
// inclusive end date that must not lie in the past when the spec is created.
type RecurrenceSpec struct {
	Frequency Frequency                   `json:"frequency"`
	Interval  mo.Option[int]              `json:"interval"`
	Count     mo.Option[int]              `json:"count"`
	Until     mo.Option[time.Time]        `json:"until"`
	Period    mo.Option[RecurrencePeriod] `json:"period"`
}
