// Package memory provides an in-memory storage backend, primarily for tests
// and examples.
package memory

import (
	"context"
	"sync"

	"github.com/tshepom/upcoming/calendar"
	"github.com/tshepom/upcoming/storage"
)

// Store implements storage.Store using in-memory maps. All methods return
// copies, so callers never observe later mutations.
type Store struct {
	mu        sync.RWMutex
	calendars map[int64]*calendar.Calendar
	events    map[int64]*calendar.Event
	// creation order of events; Events and ListEvents iterate in this order
	eventOrder []int64
	// overrides per event, in creation order
	occurrences map[int64][]*calendar.Occurrence

	nextCalendarID   int64
	nextEventID      int64
	nextOccurrenceID int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		calendars:   make(map[int64]*calendar.Calendar),
		events:      make(map[int64]*calendar.Event),
		occurrences: make(map[int64][]*calendar.Occurrence),
	}
}

func (s *Store) CreateCalendar(_ context.Context, cal *calendar.Calendar) error {
	if cal.Name == "" {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "calendar name required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.calendars {
		if existing.Name == cal.Name && existing.CreatedBy == cal.CreatedBy {
			return &storage.Error{Type: storage.ErrAlreadyExists, Message: "calendar exists for user"}
		}
	}

	s.nextCalendarID++
	cal.ID = s.nextCalendarID
	stored := *cal
	s.calendars[cal.ID] = &stored
	return nil
}

func (s *Store) ListCalendars(_ context.Context) ([]calendar.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]calendar.Calendar, 0, len(s.calendars))
	for id := int64(1); id <= s.nextCalendarID; id++ {
		if cal, ok := s.calendars[id]; ok {
			out = append(out, *cal)
		}
	}
	return out, nil
}

func (s *Store) CreateEvent(_ context.Context, event *calendar.Event) error {
	if !event.End.After(event.Start) {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "event end must be after start"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cal, ok := s.calendars[event.CalendarID]
	if !ok {
		return &storage.Error{Type: storage.ErrNotFound, Message: "calendar not found"}
	}
	event.Calendar = cal.Name

	s.nextEventID++
	event.ID = s.nextEventID
	stored := *event
	s.events[event.ID] = &stored
	s.eventOrder = append(s.eventOrder, event.ID)
	return nil
}

func (s *Store) GetEvent(_ context.Context, id int64) (*calendar.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return nil, &storage.Error{Type: storage.ErrNotFound, Message: "event not found"}
	}
	out := *event
	return &out, nil
}

func (s *Store) ListEvents(_ context.Context) ([]calendar.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]calendar.Event, 0, len(s.eventOrder))
	for _, id := range s.eventOrder {
		out = append(out, *s.events[id])
	}
	return out, nil
}

// Events implements storage.EventSource. The window is not pre-applied; the
// expansion engine handles all window semantics.
func (s *Store) Events(_ context.Context, _ calendar.DateRange, calendarName string) ([]calendar.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]calendar.Event, 0, len(s.eventOrder))
	for _, id := range s.eventOrder {
		event := s.events[id]
		if calendarName != "" && event.Calendar != calendarName {
			continue
		}
		out = append(out, *event)
	}
	return out, nil
}

func (s *Store) Overrides(_ context.Context, eventID int64) ([]calendar.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	saved := s.occurrences[eventID]
	out := make([]calendar.Occurrence, 0, len(saved))
	for _, occ := range saved {
		out = append(out, *occ)
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, eventID, id int64) (*calendar.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, occ := range s.occurrences[eventID] {
		if occ.ID == id {
			out := *occ
			return &out, nil
		}
	}
	return nil, &storage.Error{Type: storage.ErrNotFound, Message: "occurrence not found"}
}

// Put upserts an occurrence. A nonzero ID updates that record; otherwise the
// occurrence is matched by slot identity and created when no match exists.
func (s *Store) Put(_ context.Context, occ calendar.Occurrence) (calendar.Occurrence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if occ.ID != 0 {
		for _, existing := range s.occurrences[occ.EventID] {
			if existing.ID == occ.ID {
				// slot identity is immutable
				occ.OriginalStart = existing.OriginalStart
				occ.OriginalEnd = existing.OriginalEnd
				*existing = occ
				return occ, nil
			}
		}
		return calendar.Occurrence{}, &storage.Error{Type: storage.ErrNotFound, Message: "occurrence not found"}
	}

	for _, existing := range s.occurrences[occ.EventID] {
		if existing.OriginalStart.Equal(occ.OriginalStart) && existing.OriginalEnd.Equal(occ.OriginalEnd) {
			occ.ID = existing.ID
			*existing = occ
			return occ, nil
		}
	}

	s.nextOccurrenceID++
	occ.ID = s.nextOccurrenceID
	stored := occ
	s.occurrences[occ.EventID] = append(s.occurrences[occ.EventID], &stored)
	return occ, nil
}
