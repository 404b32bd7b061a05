package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tshepom/upcoming/calendar"
	"github.com/tshepom/upcoming/storage"
)

func newCalendar(t *testing.T, store *Store, name string) calendar.Calendar {
	t.Helper()
	cal := calendar.Calendar{Name: name}
	require.NoError(t, store.CreateCalendar(context.Background(), &cal))
	return cal
}

func TestCreateCalendar(t *testing.T) {
	store := New()
	ctx := context.Background()

	cal := calendar.Calendar{Name: "work", CreatedBy: "alice"}
	require.NoError(t, store.CreateCalendar(ctx, &cal))
	assert.NotZero(t, cal.ID)

	t.Run("duplicate for same user", func(t *testing.T) {
		dup := calendar.Calendar{Name: "work", CreatedBy: "alice"}
		err := store.CreateCalendar(ctx, &dup)
		require.Error(t, err)
		var serr *storage.Error
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, storage.ErrAlreadyExists, serr.Type)
	})

	t.Run("same name for another user", func(t *testing.T) {
		other := calendar.Calendar{Name: "work", CreatedBy: "bob"}
		require.NoError(t, store.CreateCalendar(ctx, &other))
	})

	t.Run("empty name", func(t *testing.T) {
		err := store.CreateCalendar(ctx, &calendar.Calendar{})
		require.Error(t, err)
	})

	cals, err := store.ListCalendars(ctx)
	require.NoError(t, err)
	assert.Len(t, cals, 2)
}

func TestCreateEvent(t *testing.T) {
	store := New()
	ctx := context.Background()
	cal := newCalendar(t, store, "work")

	event := calendar.Event{
		CalendarID: cal.ID,
		Title:      "Standup",
		Start:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.CreateEvent(ctx, &event))
	assert.NotZero(t, event.ID)
	assert.Equal(t, "work", event.Calendar, "calendar name is denormalized")

	got, err := store.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.Title, got.Title)

	t.Run("end before start", func(t *testing.T) {
		bad := calendar.Event{
			CalendarID: cal.ID,
			Start:      time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
			End:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		}
		err := store.CreateEvent(ctx, &bad)
		require.Error(t, err)
		var serr *storage.Error
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, storage.ErrInvalidInput, serr.Type)
	})

	t.Run("unknown calendar", func(t *testing.T) {
		bad := calendar.Event{
			CalendarID: 999,
			Start:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			End:        time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
		}
		err := store.CreateEvent(ctx, &bad)
		assert.True(t, storage.IsNotFound(err))
	})

	t.Run("missing event", func(t *testing.T) {
		_, err := store.GetEvent(ctx, 999)
		assert.True(t, storage.IsNotFound(err))
	})
}

func TestEvents_FilterAndOrder(t *testing.T) {
	store := New()
	ctx := context.Background()
	work := newCalendar(t, store, "work")
	home := newCalendar(t, store, "home")

	mk := func(calID int64, title string, day int) calendar.Event {
		event := calendar.Event{
			CalendarID: calID,
			Title:      title,
			Start:      time.Date(2024, 1, day, 12, 0, 0, 0, time.UTC),
			End:        time.Date(2024, 1, day, 13, 0, 0, 0, time.UTC),
		}
		require.NoError(t, store.CreateEvent(ctx, &event))
		return event
	}
	mk(work.ID, "Standup", 5)
	mk(home.ID, "Dentist", 2)
	mk(work.ID, "Review", 3)

	window := calendar.DateRange{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	all, err := store.Events(ctx, window, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	// creation order, not start order
	assert.Equal(t, "Standup", all[0].Title)
	assert.Equal(t, "Dentist", all[1].Title)
	assert.Equal(t, "Review", all[2].Title)

	workOnly, err := store.Events(ctx, window, "work")
	require.NoError(t, err)
	require.Len(t, workOnly, 2)
	assert.Equal(t, "Standup", workOnly[0].Title)
	assert.Equal(t, "Review", workOnly[1].Title)
}

func TestPut(t *testing.T) {
	store := New()
	ctx := context.Background()
	cal := newCalendar(t, store, "work")
	event := calendar.Event{
		CalendarID: cal.ID,
		Title:      "Standup",
		Start:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.CreateEvent(ctx, &event))

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
	assert.NotZero(t, created.ID)

	t.Run("same slot identity upserts", func(t *testing.T) {
		again, err := store.Put(ctx, calendar.Occurrence{
			EventID:       event.ID,
			Title:         "Standup (moved again)",
			Start:         slotStart.Add(2 * time.Hour),
			End:           slotEnd.Add(2 * time.Hour),
			OriginalStart: slotStart,
			OriginalEnd:   slotEnd,
		})
		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID)

		overrides, err := store.Overrides(ctx, event.ID)
		require.NoError(t, err)
		require.Len(t, overrides, 1)
		assert.Equal(t, "Standup (moved again)", overrides[0].Title)
	})

	t.Run("update by id keeps slot identity", func(t *testing.T) {
		updated, err := store.Put(ctx, calendar.Occurrence{
			ID:            created.ID,
			EventID:       event.ID,
			Title:         "Renamed",
			Start:         slotStart,
			End:           slotEnd,
			Cancelled:     true,
			OriginalStart: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
			OriginalEnd:   time.Date(2030, 1, 1, 1, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.True(t, updated.OriginalStart.Equal(slotStart), "identity cannot be rewritten")
		assert.True(t, updated.OriginalEnd.Equal(slotEnd))
		assert.True(t, updated.Cancelled)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.Put(ctx, calendar.Occurrence{ID: 999, EventID: event.ID})
		assert.True(t, storage.IsNotFound(err))
	})

	t.Run("get", func(t *testing.T) {
		got, err := store.Get(ctx, event.ID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)

		_, err = store.Get(ctx, event.ID, 999)
		assert.True(t, storage.IsNotFound(err))
	})
}
