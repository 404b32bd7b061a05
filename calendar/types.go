// Package calendar defines the domain model shared by the recurrence engine,
// the occurrence materializer and the storage backends.
package calendar

import "time"

// Calendar groups events under a name. Upcoming queries can be restricted to
// a single calendar by name.
type Calendar struct {
	ID        int64
	Name      string
	Color     string
	CreatedBy string
}

// Event is the master record a recurrence rule expands from. Recurrence is
// nil for one-off events. The duration End-Start is reapplied to every
// generated slot.
type Event struct {
	ID          int64
	CalendarID  int64
	Calendar    string // calendar name, denormalized for filtering
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Recurrence  *RecurrenceSpec
}

// Duration is the length applied to every occurrence of the event.
func (e Event) Duration() time.Duration { return e.End.Sub(e.Start) }

// Occurrence is a single concrete instance of an event. ID is zero for
// transient occurrences that have never been persisted.
//
// (EventID, OriginalStart, OriginalEnd) is the slot identity. It names the
// generated slot this occurrence belongs to and never changes, no matter how
// Start, End or the text fields are edited afterwards. A transient occurrence
// always has OriginalStart == Start and OriginalEnd == End.
type Occurrence struct {
	ID            int64
	EventID       int64
	Title         string
	Description   string
	Start         time.Time
	End           time.Time
	Cancelled     bool
	OriginalStart time.Time
	OriginalEnd   time.Time
}

// Transient reports whether the occurrence has never been persisted.
func (o Occurrence) Transient() bool { return o.ID == 0 }

// DateRange is a resolved [From, To] query window, both bounds inclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}
