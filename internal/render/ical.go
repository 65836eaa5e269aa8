// Package render produces the two output documents: the combined
// iCalendar file and the HTML schedule page.
package render

import (
	ical "github.com/arran4/golang-ical"

	"icalagg/internal/schedule"
)

const prodID = "-//icalagg//icalagg//EN"

// Calendar serializes the merged schedule as one VCALENDAR. Instants
// are written in UTC; LOCATION carries the room name so calendar
// clients show where each event takes place.
func Calendar(events []schedule.Event) string {
	cal := ical.NewCalendar()
	cal.SetProductId(prodID)

	for _, e := range events {
		ve := cal.AddEvent(e.UID)
		ve.SetSummary(e.Summary)
		ve.SetStartAt(e.Start.UTC())
		ve.SetEndAt(e.End.UTC())
		ve.SetLocation(e.Room)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
	}

	return cal.Serialize()
}
