// Package export renders materialized occurrence lists for external
// consumers, as an iCalendar stream or as an xCal XML document.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/tshepom/upcoming/calendar"
	"github.com/tshepom/upcoming/occurrence"
)

const prodID = "-//upcoming//Occurrence Export//EN"

// propRecurrenceID is not named as a constant by go-ical.
const propRecurrenceID = "RECURRENCE-ID"

// ICalendar builds a VCALENDAR with one VEVENT per occurrence. Cancelled
// occurrences are kept and marked STATUS:CANCELLED. Overridden occurrences
// carry a RECURRENCE-ID naming the original slot start.
func ICalendar(occurrences []calendar.Occurrence) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	for _, occ := range occurrences {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, occurrenceUID(occ))
		event.Props.SetText(ical.PropSummary, occ.Title)
		if occ.Description != "" {
			event.Props.SetText(ical.PropDescription, occ.Description)
		}
		event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
		event.Props.SetDateTime(ical.PropDateTimeStart, occ.Start.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, occ.End.UTC())
		if occ.Cancelled {
			event.Props.SetText(ical.PropStatus, "CANCELLED")
		}
		if overridden(occ) {
			event.Props.SetDateTime(propRecurrenceID, occ.OriginalStart.UTC())
		}
		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// EncodeICS writes the occurrence list to w as an iCalendar stream.
func EncodeICS(w io.Writer, occurrences []calendar.Occurrence) error {
	if err := ical.NewEncoder(w).Encode(ICalendar(occurrences)); err != nil {
		return fmt.Errorf("encode ics: %w", err)
	}
	return nil
}

// occurrenceUID returns a stable UID. Persisted occurrences use their
// numeric id; transient ones derive a name-based UUID from the slot
// identity key, so repeated exports agree.
func occurrenceUID(occ calendar.Occurrence) string {
	if !occ.Transient() {
		return fmt.Sprintf("occurrence-%d@upcoming", occ.ID)
	}
	key := occurrence.KeyFor(occ)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func overridden(occ calendar.Occurrence) bool {
	return !occ.Start.Equal(occ.OriginalStart) || !occ.End.Equal(occ.OriginalEnd) || occ.Cancelled
}
