package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "icalagg/internal/log"
)

// ParsedEvent is a VEVENT as read from a feed, before recurrence
// expansion, room tagging and the fixed-hour adjustment.
type ParsedEvent struct {
	UID string

	Summary     string
	Description string
	Location    string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule string
	ExDates  []time.Time
}

// ParseFeed parses one ICS payload. Every VEVENT must carry UID,
// SUMMARY, DTSTART and DTEND; the first malformed event fails the
// whole parse, so a feed either contributes all of its events or the
// run aborts.
//
// Time interpretation: the trailing-Z form is UTC; a TZID parameter
// selects that zone; a naive date-time is treated as UTC; a date-only
// value marks the event all-day at UTC midnight.
func ParseFeed(body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]ParsedEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	appLog.Debug("feed parsed", "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("event is missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if out.Summary == "" {
		return out, fmt.Errorf("event %s: missing SUMMARY", out.UID)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, fmt.Errorf("event %s: missing DTSTART", out.UID)
	}
	start, startAllDay, err := parseEventTime(dtStart)
	if err != nil {
		return out, fmt.Errorf("event %s: DTSTART: %w", out.UID, err)
	}

	dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd)
	if dtEnd == nil {
		return out, fmt.Errorf("event %s: missing DTEND", out.UID)
	}
	end, _, err := parseEventTime(dtEnd)
	if err != nil {
		return out, fmt.Errorf("event %s: DTEND: %w", out.UID, err)
	}

	out.Start = start
	out.End = end
	out.AllDay = startAllDay

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	// EXDATE may appear multiple times, each with a comma list. The
	// property's TZID applies to every value in its list.
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		tzid := ""
		if params := p.ICalParameters; params != nil {
			if tzs, ok := params["TZID"]; ok && len(tzs) > 0 {
				tzid = tzs[0]
			}
		}
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			t, _, err := parseTimeValue(part, tzid)
			if err != nil {
				return out, fmt.Errorf("event %s: EXDATE %q: %w", out.UID, part, err)
			}
			out.ExDates = append(out.ExDates, t)
		}
	}

	return out, nil
}

// parseEventTime parses a DTSTART/DTEND property, honoring VALUE=DATE
// and TZID parameters.
func parseEventTime(p *ical.IANAProperty) (time.Time, bool, error) {
	v := strings.TrimSpace(p.Value)

	tzid := ""
	dateOnly := false
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			dateOnly = true
		}
		if tzs, ok := params["TZID"]; ok && len(tzs) > 0 {
			tzid = tzs[0]
		}
	}
	if dateOnly {
		t, err := time.ParseInLocation("20060102", v, time.UTC)
		return t, true, err
	}
	return parseTimeValue(v, tzid)
}

// parseTimeValue parses a raw ICS date or date-time string. The second
// return value reports whether the value was date-only (all-day).
func parseTimeValue(v, tzid string) (time.Time, bool, error) {
	if v == "" {
		return time.Time{}, false, errors.New("empty time value")
	}

	// Date-only, e.g. 20250101.
	if !strings.Contains(v, "T") {
		t, err := time.ParseInLocation("20060102", v, time.UTC)
		return t, true, err
	}

	// UTC form, e.g. 20250101T090000Z.
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		return t, false, err
	}

	// Zoned or naive local form, e.g. 20250101T090000. Naive values
	// are read as UTC so that a zero adjustment leaves them untouched.
	loc := time.UTC
	if tzid != "" {
		var err error
		loc, err = time.LoadLocation(tzid)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("unknown TZID %q: %w", tzid, err)
		}
	}
	t, err := time.ParseInLocation("20060102T150405", v, loc)
	return t, false, err
}
