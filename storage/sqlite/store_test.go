package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tshepom/upcoming/calendar"
	"github.com/tshepom/upcoming/storage"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "upcoming.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newEvent(t *testing.T, store *Store, spec *calendar.RecurrenceSpec) calendar.Event {
	t.Helper()
	ctx := context.Background()

	cal := calendar.Calendar{Name: "work"}
	require.NoError(t, store.CreateCalendar(ctx, &cal))

	event := calendar.Event{
		CalendarID: cal.ID,
		Title:      "Standup",
		Start:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
		Recurrence: spec,
	}
	require.NoError(t, store.CreateEvent(ctx, &event))
	return event
}

func TestCalendarRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	cal := calendar.Calendar{Name: "work", Color: "#336699", CreatedBy: "alice"}
	require.NoError(t, store.CreateCalendar(ctx, &cal))
	require.NotZero(t, cal.ID)

	dup := calendar.Calendar{Name: "work", CreatedBy: "alice"}
	err := store.CreateCalendar(ctx, &dup)
	require.Error(t, err)
	var serr *storage.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, storage.ErrAlreadyExists, serr.Type)

	other := calendar.Calendar{Name: "work", CreatedBy: "bob"}
	require.NoError(t, store.CreateCalendar(ctx, &other))

	cals, err := store.ListCalendars(ctx)
	require.NoError(t, err)
	require.Len(t, cals, 2)
	assert.Equal(t, "#336699", cals[0].Color)
}

func TestEventRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	spec := &calendar.RecurrenceSpec{
		Frequency: calendar.Weekly,
		Interval:  mo.Some(2),
		Period: mo.Some(calendar.RecurrencePeriod{
			Rule:     calendar.ByWeekDay,
			Sequence: []int{0, 2},
		}),
	}
	event := newEvent(t, store, spec)

	got, err := store.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title)
	assert.Equal(t, "work", got.Calendar)
	assert.True(t, got.Start.Equal(event.Start))
	assert.True(t, got.End.Equal(event.End))
	require.NotNil(t, got.Recurrence)
	assert.Equal(t, calendar.Weekly, got.Recurrence.Frequency)
	assert.Equal(t, 2, got.Recurrence.Interval.MustGet())
	period := got.Recurrence.Period.MustGet()
	assert.Equal(t, calendar.ByWeekDay, period.Rule)
	assert.Equal(t, []int{0, 2}, period.Sequence)

	t.Run("missing event", func(t *testing.T) {
		_, err := store.GetEvent(ctx, 999)
		assert.True(t, storage.IsNotFound(err))
	})

	t.Run("unknown calendar", func(t *testing.T) {
		bad := calendar.Event{
			CalendarID: 999,
			Start:      event.Start,
			End:        event.End,
		}
		err := store.CreateEvent(ctx, &bad)
		assert.True(t, storage.IsNotFound(err))
	})

	t.Run("end before start", func(t *testing.T) {
		bad := calendar.Event{
			CalendarID: event.CalendarID,
			Start:      event.End,
			End:        event.Start,
		}
		err := store.CreateEvent(ctx, &bad)
		require.Error(t, err)
		var serr *storage.Error
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, storage.ErrInvalidInput, serr.Type)
	})
}

func TestEvents_CalendarFilter(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	work := calendar.Calendar{Name: "work"}
	home := calendar.Calendar{Name: "home"}
	require.NoError(t, store.CreateCalendar(ctx, &work))
	require.NoError(t, store.CreateCalendar(ctx, &home))

	for _, e := range []calendar.Event{
		{CalendarID: work.ID, Title: "Standup",
			Start: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)},
		{CalendarID: home.ID, Title: "Dentist",
			Start: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)},
	} {
		event := e
		require.NoError(t, store.CreateEvent(ctx, &event))
	}

	window := calendar.DateRange{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	all, err := store.Events(ctx, window, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	homeOnly, err := store.Events(ctx, window, "home")
	require.NoError(t, err)
	require.Len(t, homeOnly, 1)
	assert.Equal(t, "Dentist", homeOnly[0].Title)
}

func TestPut_SlotIdentityUpsert(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	event := newEvent(t, store, nil)

	slotStart := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	slotEnd := time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC)

	created, err := store.Put(ctx, calendar.Occurrence{
		EventID:       event.ID,
		Title:         "Standup (moved)",
		Start:         slotStart.Add(time.Hour),
		End:           slotEnd.Add(time.Hour),
		OriginalStart: slotStart,
		OriginalEnd:   slotEnd,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	// same slot identity resolves to the same row
	again, err := store.Put(ctx, calendar.Occurrence{
		EventID:       event.ID,
		Title:         "Standup (cancelled)",
		Start:         slotStart,
		End:           slotEnd,
		Cancelled:     true,
		OriginalStart: slotStart,
		OriginalEnd:   slotEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	overrides, err := store.Overrides(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, "Standup (cancelled)", overrides[0].Title)
	assert.True(t, overrides[0].Cancelled)
	assert.True(t, overrides[0].OriginalStart.Equal(slotStart))
}

func TestPut_ByID(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	event := newEvent(t, store, nil)

	slotStart := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	slotEnd := time.Date(2024, 1, 3, 13, 0, 0, 0, time.UTC)
	created, err := store.Put(ctx, calendar.Occurrence{
		EventID:       event.ID,
		Title:         "First",
		Start:         slotStart,
		End:           slotEnd,
		OriginalStart: slotStart,
		OriginalEnd:   slotEnd,
	})
	require.NoError(t, err)

	updated, err := store.Put(ctx, calendar.Occurrence{
		ID:      created.ID,
		EventID: event.ID,
		Title:   "Second",
		Start:   slotStart.Add(time.Hour),
		End:     slotEnd.Add(time.Hour),
		// identity columns are not part of the update
		OriginalStart: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		OriginalEnd:   time.Date(2030, 1, 1, 1, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Second", updated.Title)
	assert.True(t, updated.OriginalStart.Equal(slotStart), "identity survives the edit")
	assert.True(t, updated.OriginalEnd.Equal(slotEnd))

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.Put(ctx, calendar.Occurrence{ID: 999, EventID: event.ID})
		assert.True(t, storage.IsNotFound(err))
	})

	t.Run("get", func(t *testing.T) {
		got, err := store.Get(ctx, event.ID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Second", got.Title)

		_, err = store.Get(ctx, event.ID, 999)
		assert.True(t, storage.IsNotFound(err))
	})
}

func TestTimePrecision(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	event := newEvent(t, store, nil)

	slotStart := time.Date(2024, 6, 15, 9, 30, 0, 123456789, time.UTC)
	slotEnd := time.Date(2024, 6, 15, 10, 30, 0, 987654321, time.UTC)
	created, err := store.Put(ctx, calendar.Occurrence{
		EventID:       event.ID,
		Start:         slotStart,
		End:           slotEnd,
		OriginalStart: slotStart,
		OriginalEnd:   slotEnd,
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, event.ID, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Start.Equal(slotStart), "sub-second precision survives the round trip")
	assert.True(t, got.End.Equal(slotEnd))
}
