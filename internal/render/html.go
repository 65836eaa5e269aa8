package render

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"icalagg/internal/schedule"
)

// Layout constants for the generated schedule blocks.
const (
	colWidth   = 150 // px per room column
	headerSize = 30  // px for the per-day room header row
	pxPerMin   = 1.7
)

// Page produces the HTML output: the header snippet verbatim, a
// day-grouped schedule of the events, then the footer snippet
// verbatim. rooms defines the column order; loc is the display
// timezone, used only here.
func Page(events []schedule.Event, rooms []string, loc *time.Location, header, footer string) string {
	var b strings.Builder
	b.WriteString(header)
	writeScheduleBody(&b, events, rooms, loc)
	b.WriteString(footer)
	return b.String()
}

func writeScheduleBody(b *strings.Builder, events []schedule.Event, rooms []string, loc *time.Location) {
	roomCol := make(map[string]int, len(rooms))
	for i, name := range rooms {
		roomCol[name] = i
	}

	for _, day := range eventDays(events, loc) {
		var dayEvents []schedule.Event
		for _, e := range events {
			if dayOf(e.Start, loc) == day {
				dayEvents = append(dayEvents, e)
			}
		}
		if len(dayEvents) == 0 {
			continue
		}

		// The vertical scale runs from the day's first start to its
		// last end.
		first := dayEvents[0].Start
		last := dayEvents[0].End
		for _, e := range dayEvents {
			if e.End.After(last) {
				last = e.End
			}
		}

		fmt.Fprintf(b, "<h2>%s</h2>\n", day)
		fmt.Fprintf(b, "<div class=\"schedwrap\" style=\"width: %dpx; height: %dpx;\">\n",
			len(rooms)*colWidth, yPixels(last, first)+headerSize)

		for _, name := range rooms {
			fmt.Fprintf(b, " <div class=\"sessblock roomheader\" style=\"left: %dpx; width: %dpx; height: 28px;\">%s</div>\n",
				roomCol[name]*colWidth, colWidth-2, html.EscapeString(name))
		}

		for _, e := range dayEvents {
			fmt.Fprintf(b, " <div class=\"sessblock\" style=\"top: %dpx; left: %dpx; width: %dpx; height: %dpx;\">%s<br/>%s</div>\n",
				yPixels(e.Start, first)+headerSize,
				roomCol[e.Room]*colWidth,
				colWidth-2,
				yPixels(e.End, e.Start)-2,
				timeLabel(e, loc),
				html.EscapeString(e.Summary))
		}

		b.WriteString("</div>\n")
	}
}

// eventDays returns the distinct start days (in loc) of the events, in
// chronological order.
func eventDays(events []schedule.Event, loc *time.Location) []string {
	seen := make(map[string]bool)
	var days []string
	for _, e := range events {
		d := dayOf(e.Start, loc)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Strings(days)
	return days
}

func dayOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

func timeLabel(e schedule.Event, loc *time.Location) string {
	if e.AllDay {
		return "All day"
	}
	return e.Start.In(loc).Format("15:04") + " - " + e.End.In(loc).Format("15:04")
}

// yPixels converts the span between two instants into vertical pixels.
func yPixels(t, base time.Time) int {
	return int(t.Sub(base).Minutes() * pxPerMin)
}
