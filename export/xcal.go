package export

import (
	"time"

	"github.com/beevik/etree"

	"github.com/tshepom/upcoming/calendar"
)

// xCal namespace, RFC 6321.
const xcalNamespace = "urn:ietf:params:xml:ns:icalendar-2.0"

// xcalTimeFormat is the date-time value form xCal mandates.
const xcalTimeFormat = "2006-01-02T15:04:05Z"

// XCal builds the xCal XML document equivalent of ICalendar.
func XCal(occurrences []calendar.Occurrence) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	icalendar := doc.CreateElement("icalendar")
	icalendar.CreateAttr("xmlns", xcalNamespace)
	vcalendar := icalendar.CreateElement("vcalendar")

	props := vcalendar.CreateElement("properties")
	addTextProp(props, "version", "2.0")
	addTextProp(props, "prodid", prodID)

	components := vcalendar.CreateElement("components")
	for _, occ := range occurrences {
		vevent := components.CreateElement("vevent")
		eventProps := vevent.CreateElement("properties")

		addTextProp(eventProps, "uid", occurrenceUID(occ))
		addTextProp(eventProps, "summary", occ.Title)
		if occ.Description != "" {
			addTextProp(eventProps, "description", occ.Description)
		}
		addDateTimeProp(eventProps, "dtstart", occ.Start)
		addDateTimeProp(eventProps, "dtend", occ.End)
		if occ.Cancelled {
			addTextProp(eventProps, "status", "CANCELLED")
		}
		if overridden(occ) {
			addDateTimeProp(eventProps, "recurrence-id", occ.OriginalStart)
		}
	}
	return doc
}

func addTextProp(parent *etree.Element, name, value string) {
	prop := parent.CreateElement(name)
	prop.CreateElement("text").SetText(value)
}

func addDateTimeProp(parent *etree.Element, name string, t time.Time) {
	prop := parent.CreateElement(name)
	prop.CreateElement("date-time").SetText(t.UTC().Format(xcalTimeFormat))
}
