// Package storage defines the persistence contracts the expansion engine
// consumes. The engine itself never writes; it treats a backend as a read
// snapshot for the duration of one query, and occurrence edits go through
// the atomic Put upsert keyed by slot identity.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/tshepom/upcoming/calendar"
)

// ErrorType classifies storage failures.
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
)

// Error represents a storage-related error. Backends should use the error
// types provided here so callers can branch on them.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a not-found storage error.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Type == ErrNotFound
}

// EventSource supplies the candidate events for a window query. The window
// is advisory: implementations may use it to pre-filter, but the engine
// applies the exact inclusion rules itself. An empty calendarName means no
// calendar filter. Visibility filtering (who may see an event) is the
// implementation's concern.
type EventSource interface {
	Events(ctx context.Context, window calendar.DateRange, calendarName string) ([]calendar.Event, error)
}

// OccurrenceSource supplies the persisted overrides of one event, in
// creation order.
type OccurrenceSource interface {
	Overrides(ctx context.Context, eventID int64) ([]calendar.Occurrence, error)
}

// OccurrenceStore extends OccurrenceSource with the write side used by
// occurrence edits. Put is an atomic upsert: an occurrence with a nonzero ID
// is updated in place, otherwise it is matched by its slot identity
// (EventID, OriginalStart, OriginalEnd) and created when no match exists.
type OccurrenceStore interface {
	OccurrenceSource
	Get(ctx context.Context, eventID, id int64) (*calendar.Occurrence, error)
	Put(ctx context.Context, occ calendar.Occurrence) (calendar.Occurrence, error)
}

// Store is the full contract a backend implements for the CLI and other
// embedding applications.
type Store interface {
	EventSource
	OccurrenceStore

	CreateCalendar(ctx context.Context, cal *calendar.Calendar) error
	ListCalendars(ctx context.Context) ([]calendar.Calendar, error)

	CreateEvent(ctx context.Context, event *calendar.Event) error
	GetEvent(ctx context.Context, id int64) (*calendar.Event, error)
	ListEvents(ctx context.Context) ([]calendar.Event, error)
}
