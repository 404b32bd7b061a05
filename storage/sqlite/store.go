// Package sqlite provides a SQLite-backed storage backend using the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tshepom/upcoming/calendar"
	"github.com/tshepom/upcoming/storage"
)

// timeFormat is how instants are stored. Lexicographic order equals
// chronological order for UTC RFC 3339 strings.
const timeFormat = time.RFC3339Nano

// Store implements storage.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

// New opens or creates a SQLite database at the given path and applies the
// schema.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS calendars (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		color      TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		UNIQUE(name, created_by)
	);

	CREATE TABLE IF NOT EXISTS events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		calendar_id INTEGER NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_at    TEXT NOT NULL,
		end_at      TEXT NOT NULL,
		all_day     INTEGER NOT NULL DEFAULT 0,
		recurrence  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_calendar ON events(calendar_id);
	CREATE INDEX IF NOT EXISTS idx_events_range ON events(start_at, end_at);

	CREATE TABLE IF NOT EXISTS occurrences (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id       INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		title          TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		start_at       TEXT NOT NULL,
		end_at         TEXT NOT NULL,
		cancelled      INTEGER NOT NULL DEFAULT 0,
		original_start TEXT NOT NULL,
		original_end   TEXT NOT NULL,
		UNIQUE(event_id, original_start, original_end)
	);
	CREATE INDEX IF NOT EXISTS idx_occurrences_event ON occurrences(event_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) CreateCalendar(ctx context.Context, cal *calendar.Calendar) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO calendars (name, color, created_by) VALUES (?, ?, ?)`,
		cal.Name, cal.Color, cal.CreatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return &storage.Error{Type: storage.ErrAlreadyExists, Message: "calendar exists for user", Err: err}
		}
		return fmt.Errorf("insert calendar: %w", err)
	}
	cal.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("calendar id: %w", err)
	}
	return nil
}

func (s *Store) ListCalendars(ctx context.Context) ([]calendar.Calendar, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, created_by FROM calendars ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	defer rows.Close()

	var out []calendar.Calendar
	for rows.Next() {
		var cal calendar.Calendar
		if err := rows.Scan(&cal.ID, &cal.Name, &cal.Color, &cal.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan calendar: %w", err)
		}
		out = append(out, cal)
	}
	return out, rows.Err()
}

func (s *Store) CreateEvent(ctx context.Context, event *calendar.Event) error {
	if !event.End.After(event.Start) {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "event end must be after start"}
	}

	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM calendars WHERE id = ?`, event.CalendarID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return &storage.Error{Type: storage.ErrNotFound, Message: "calendar not found"}
	}
	if err != nil {
		return fmt.Errorf("lookup calendar: %w", err)
	}
	event.Calendar = name

	var recurrence sql.NullString
	if event.Recurrence != nil {
		raw, err := json.Marshal(event.Recurrence)
		if err != nil {
			return fmt.Errorf("encode recurrence: %w", err)
		}
		recurrence = sql.NullString{String: string(raw), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (calendar_id, title, description, start_at, end_at, all_day, recurrence)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.CalendarID, event.Title, event.Description,
		formatTime(event.Start), formatTime(event.End), event.AllDay, recurrence)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	event.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("event id: %w", err)
	}
	return nil
}

const eventColumns = `e.id, e.calendar_id, c.name, e.title, e.description,
	e.start_at, e.end_at, e.all_day, e.recurrence`

func (s *Store) GetEvent(ctx context.Context, id int64) (*calendar.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+`
		 FROM events e JOIN calendars c ON c.id = e.calendar_id
		 WHERE e.id = ?`, id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &storage.Error{Type: storage.ErrNotFound, Message: "event not found"}
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]calendar.Event, error) {
	return s.queryEvents(ctx,
		`SELECT `+eventColumns+`
		 FROM events e JOIN calendars c ON c.id = e.calendar_id
		 ORDER BY e.id`)
}

// Events implements storage.EventSource. Filtering beyond the calendar name
// is left to the expansion engine.
func (s *Store) Events(ctx context.Context, _ calendar.DateRange, calendarName string) ([]calendar.Event, error) {
	if calendarName == "" {
		return s.ListEvents(ctx)
	}
	return s.queryEvents(ctx,
		`SELECT `+eventColumns+`
		 FROM events e JOIN calendars c ON c.id = e.calendar_id
		 WHERE c.name = ?
		 ORDER BY e.id`, calendarName)
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]calendar.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []calendar.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *event)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*calendar.Event, error) {
	var (
		event      calendar.Event
		start, end string
		recurrence sql.NullString
	)
	err := row.Scan(&event.ID, &event.CalendarID, &event.Calendar,
		&event.Title, &event.Description, &start, &end, &event.AllDay, &recurrence)
	if err != nil {
		return nil, err
	}
	if event.Start, err = time.Parse(timeFormat, start); err != nil {
		return nil, fmt.Errorf("parse event start: %w", err)
	}
	if event.End, err = time.Parse(timeFormat, end); err != nil {
		return nil, fmt.Errorf("parse event end: %w", err)
	}
	if recurrence.Valid {
		var spec calendar.RecurrenceSpec
		if err := json.Unmarshal([]byte(recurrence.String), &spec); err != nil {
			return nil, fmt.Errorf("decode recurrence: %w", err)
		}
		event.Recurrence = &spec
	}
	return &event, nil
}

func (s *Store) Overrides(ctx context.Context, eventID int64) ([]calendar.Occurrence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, title, description, start_at, end_at, cancelled, original_start, original_end
		 FROM occurrences WHERE event_id = ? ORDER BY id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	var out []calendar.Occurrence
	for rows.Next() {
		occ, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *occ)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, eventID, id int64) (*calendar.Occurrence, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, event_id, title, description, start_at, end_at, cancelled, original_start, original_end
		 FROM occurrences WHERE id = ? AND event_id = ?`, id, eventID)
	occ, err := scanOccurrence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &storage.Error{Type: storage.ErrNotFound, Message: "occurrence not found"}
	}
	if err != nil {
		return nil, err
	}
	return occ, nil
}

// Put upserts an occurrence. A nonzero ID updates that record in place;
// otherwise the row is keyed by (event_id, original_start, original_end) and
// created when missing.
func (s *Store) Put(ctx context.Context, occ calendar.Occurrence) (calendar.Occurrence, error) {
	if occ.ID != 0 {
		res, err := s.db.ExecContext(ctx,
			`UPDATE occurrences SET title = ?, description = ?, start_at = ?, end_at = ?, cancelled = ?
			 WHERE id = ? AND event_id = ?`,
			occ.Title, occ.Description, formatTime(occ.Start), formatTime(occ.End), occ.Cancelled,
			occ.ID, occ.EventID)
		if err != nil {
			return calendar.Occurrence{}, fmt.Errorf("update occurrence: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return calendar.Occurrence{}, fmt.Errorf("update occurrence: %w", err)
		}
		if affected == 0 {
			return calendar.Occurrence{}, &storage.Error{Type: storage.ErrNotFound, Message: "occurrence not found"}
		}
		saved, err := s.Get(ctx, occ.EventID, occ.ID)
		if err != nil {
			return calendar.Occurrence{}, err
		}
		return *saved, nil
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO occurrences (event_id, title, description, start_at, end_at, cancelled, original_start, original_end)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(event_id, original_start, original_end) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			cancelled = excluded.cancelled
		 RETURNING id`,
		occ.EventID, occ.Title, occ.Description,
		formatTime(occ.Start), formatTime(occ.End), occ.Cancelled,
		formatTime(occ.OriginalStart), formatTime(occ.OriginalEnd)).Scan(&id)
	if err != nil {
		return calendar.Occurrence{}, fmt.Errorf("upsert occurrence: %w", err)
	}
	occ.ID = id
	return occ, nil
}

func scanOccurrence(row scanner) (*calendar.Occurrence, error) {
	var (
		occ                                    calendar.Occurrence
		start, end, originalStart, originalEnd string
	)
	err := row.Scan(&occ.ID, &occ.EventID, &occ.Title, &occ.Description,
		&start, &end, &occ.Cancelled, &originalStart, &originalEnd)
	if err != nil {
		return nil, err
	}
	for _, field := range []struct {
		raw  string
		dst  *time.Time
		name string
	}{
		{start, &occ.Start, "start"},
		{end, &occ.End, "end"},
		{originalStart, &occ.OriginalStart, "original start"},
		{originalEnd, &occ.OriginalEnd, "original end"},
	} {
		t, err := time.Parse(timeFormat, field.raw)
		if err != nil {
			return nil, fmt.Errorf("parse occurrence %s: %w", field.name, err)
		}
		*field.dst = t
	}
	return &occ, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures in the error text
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
