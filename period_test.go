package upcoming

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tshepom/upcoming/calendar"
)

func TestResolveWindow(t *testing.T) {
	// Wednesday
	today := time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)
	lastInstant := int(time.Second - time.Nanosecond)

	tests := []struct {
		name     string
		period   Period
		custom   *calendar.DateRange
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			name:     "day",
			period:   Day,
			wantFrom: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 1, 10, 23, 59, 59, lastInstant, time.UTC),
		},
		{
			name:   "week from a wednesday",
			period: Week,
			// today minus isoWeekday(3) days: Sunday Jan 7 through Saturday Jan 13
			wantFrom: time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 1, 13, 23, 59, 59, lastInstant, time.UTC),
		},
		{
			name:     "month",
			period:   Month,
			wantFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 1, 31, 23, 59, 59, lastInstant, time.UTC),
		},
		{
			name:     "year runs through jan 1 of the next year",
			period:   Year,
			wantFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2025, 1, 1, 23, 59, 59, lastInstant, time.UTC),
		},
		{
			name:   "custom",
			period: Custom,
			custom: &calendar.DateRange{
				From: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			},
			wantFrom: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 3, 20, 23, 59, 59, lastInstant, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window, err := ResolveWindow(tt.period, today, tt.custom)
			require.NoError(t, err)
			assert.True(t, window.From.Equal(tt.wantFrom), "from: got %v want %v", window.From, tt.wantFrom)
			assert.True(t, window.To.Equal(tt.wantTo), "to: got %v want %v", window.To, tt.wantTo)
		})
	}
}

func TestResolveWindow_WeekOnMonday(t *testing.T) {
	// The week formula subtracts the full ISO weekday, so a Monday query
	// starts the previous Sunday. Existing callers depend on this.
	monday := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)

	window, err := ResolveWindow(Week, monday, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, 13, window.To.Day())
}

func TestResolveWindow_FebruaryLeap(t *testing.T) {
	today := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)

	window, err := ResolveWindow(Month, today, nil)
	require.NoError(t, err)
	assert.Equal(t, 29, window.To.Day())
}

func TestResolveWindow_CustomInvalid(t *testing.T) {
	today := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		custom *calendar.DateRange
	}{
		{name: "missing bounds", custom: nil},
		{
			name:   "missing to",
			custom: &calendar.DateRange{From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		{
			name: "from after to",
			custom: &calendar.DateRange{
				From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWindow(Custom, today, tt.custom)
			require.Error(t, err)
			assert.True(t, calendar.IsErrorType(err, calendar.ErrInvalidDateRange))
		})
	}
}

func TestParsePeriod(t *testing.T) {
	for _, name := range []string{"DAY", "WEEK", "MONTH", "YEAR", "CUSTOM"} {
		period, err := ParsePeriod(name)
		require.NoError(t, err)
		assert.Equal(t, Period(name), period)
	}

	_, err := ParsePeriod("FORTNIGHT")
	require.Error(t, err)
	assert.True(t, calendar.IsErrorType(err, calendar.ErrInvalidDateRange))
}
