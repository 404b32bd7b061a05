package occurrence

import (
	"context"
	"fmt"
	"time"

	"github.com/tshepom/upcoming/calendar"
	"github.com/tshepom/upcoming/storage"
)

// Edit is a request to change one occurrence of an event. It is addressed
// either by the persisted numeric OccurrenceID or, for occurrences that only
// exist as generated slots, by the slot identity Key.
type Edit struct {
	OccurrenceID int64
	Key          string

	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Cancelled   bool
}

// ResolveEdit applies an edit against the store. When OccurrenceID names a
// persisted occurrence of the event it is updated in place; otherwise Key is
// decoded to recover the slot identity and a new occurrence is created
// carrying it. The decoded identity is what makes the edit survive later
// changes to the event's recurrence rule.
func ResolveEdit(ctx context.Context, store storage.OccurrenceStore, event calendar.Event, edit Edit) (calendar.Occurrence, error) {
	if !edit.Start.IsZero() && !edit.End.IsZero() && edit.Start.After(edit.End) {
		return calendar.Occurrence{}, &calendar.Error{
			Type:    calendar.ErrInvalidDateRange,
			Message: "start after end",
		}
	}

	var occ *calendar.Occurrence
	if edit.OccurrenceID != 0 {
		existing, err := store.Get(ctx, event.ID, edit.OccurrenceID)
		if err != nil && !storage.IsNotFound(err) {
			return calendar.Occurrence{}, fmt.Errorf("lookup occurrence: %w", err)
		}
		occ = existing
	}
	if occ == nil {
		_, originalStart, originalEnd, err := DecodeKey(edit.Key)
		if err != nil {
			return calendar.Occurrence{}, err
		}
		occ = &calendar.Occurrence{
			EventID:       event.ID,
			OriginalStart: originalStart,
			OriginalEnd:   originalEnd,
		}
	}

	occ.Title = edit.Title
	occ.Description = edit.Description
	occ.Start = edit.Start
	occ.End = edit.End
	occ.Cancelled = edit.Cancelled

	saved, err := store.Put(ctx, *occ)
	if err != nil {
		return calendar.Occurrence{}, fmt.Errorf("save occurrence: %w", err)
	}
	return saved, nil
}
