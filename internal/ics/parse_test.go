package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icsDoc(eventLines ...string) []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//test//EN",
	}
	lines = append(lines, eventLines...)
	lines = append(lines, "END:VCALENDAR")
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

func TestParseFeedBasic(t *testing.T) {
	body := icsDoc(
		"BEGIN:VEVENT",
		"UID:ev1@example.com",
		"SUMMARY:Keynote",
		"DTSTART:20260115T090000Z",
		"DTEND:20260115T100000Z",
		"LOCATION:Stage 1",
		"DESCRIPTION:Opening talk",
		"END:VEVENT",
	)

	events, err := ParseFeed(body)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "ev1@example.com", ev.UID)
	assert.Equal(t, "Keynote", ev.Summary)
	assert.Equal(t, "Stage 1", ev.Location)
	assert.Equal(t, "Opening talk", ev.Description)
	assert.False(t, ev.AllDay)
	assert.True(t, ev.Start.Equal(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)))
	assert.True(t, ev.End.Equal(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)))
}

func TestParseFeedTZID(t *testing.T) {
	body := icsDoc(
		"BEGIN:VEVENT",
		"UID:ev2@example.com",
		"SUMMARY:Workshop",
		"DTSTART;TZID=Europe/Stockholm:20260115T100000",
		"DTEND;TZID=Europe/Stockholm:20260115T120000",
		"END:VEVENT",
	)

	events, err := ParseFeed(body)
	require.NoError(t, err)
	require.Len(t, events, 1)

	stockholm, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)
	assert.True(t, events[0].Start.Equal(time.Date(2026, 1, 15, 10, 0, 0, 0, stockholm)))
	assert.True(t, events[0].End.Equal(time.Date(2026, 1, 15, 12, 0, 0, 0, stockholm)))
}

func TestParseFeedNaiveTimeIsUTC(t *testing.T) {
	body := icsDoc(
		"BEGIN:VEVENT",
		"UID:ev3@example.com",
		"SUMMARY:Untagged",
		"DTSTART:20260115T090000",
		"DTEND:20260115T100000",
		"END:VEVENT",
	)

	events, err := ParseFeed(body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Start.Equal(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)))
}

func TestParseFeedAllDay(t *testing.T) {
	body := icsDoc(
		"BEGIN:VEVENT",
		"UID:ev4@example.com",
		"SUMMARY:Conference Day",
		"DTSTART;VALUE=DATE:20260115",
		"DTEND;VALUE=DATE:20260116",
		"END:VEVENT",
	)

	events, err := ParseFeed(body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].AllDay)
	assert.True(t, events[0].Start.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, events[0].End.Equal(time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)))
}

func TestParseFeedRecurrenceProperties(t *testing.T) {
	body := icsDoc(
		"BEGIN:VEVENT",
		"UID:ev5@example.com",
		"SUMMARY:Standup",
		"DTSTART:20260105T090000Z",
		"DTEND:20260105T091500Z",
		"RRULE:FREQ=WEEKLY;COUNT=3",
		"EXDATE:20260112T090000Z",
		"END:VEVENT",
	)

	events, err := ParseFeed(body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "FREQ=WEEKLY;COUNT=3", events[0].RawRRule)
	require.Len(t, events[0].ExDates, 1)
	assert.True(t, events[0].ExDates[0].Equal(time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)))
}

func TestParseFeedExDateTZID(t *testing.T) {
	body := icsDoc(
		"BEGIN:VEVENT",
		"UID:ev6@example.com",
		"SUMMARY:Standup",
		"DTSTART;TZID=America/New_York:20260105T090000",
		"DTEND;TZID=America/New_York:20260105T091500",
		"RRULE:FREQ=WEEKLY;COUNT=3",
		"EXDATE;TZID=America/New_York:20260112T090000",
		"END:VEVENT",
	)

	events, err := ParseFeed(body)
	require.NoError(t, err)
	require.Len(t, events, 1)

	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// The exclusion instant carries the property's zone: 09:00 in New
	// York, which is 14:00 UTC.
	require.Len(t, events[0].ExDates, 1)
	assert.True(t, events[0].ExDates[0].Equal(time.Date(2026, 1, 12, 9, 0, 0, 0, newYork)))
	assert.True(t, events[0].ExDates[0].Equal(time.Date(2026, 1, 12, 14, 0, 0, 0, time.UTC)))
}

func TestParseFeedErrors(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{
			name: "empty body",
			body: nil,
		},
		{
			name: "not a calendar",
			body: []byte("hello world"),
		},
		{
			name: "missing UID",
			body: icsDoc(
				"BEGIN:VEVENT",
				"SUMMARY:No id",
				"DTSTART:20260115T090000Z",
				"DTEND:20260115T100000Z",
				"END:VEVENT",
			),
		},
		{
			name: "missing summary",
			body: icsDoc(
				"BEGIN:VEVENT",
				"UID:bad@example.com",
				"DTSTART:20260115T090000Z",
				"DTEND:20260115T100000Z",
				"END:VEVENT",
			),
		},
		{
			name: "missing DTEND",
			body: icsDoc(
				"BEGIN:VEVENT",
				"UID:bad@example.com",
				"SUMMARY:Half an event",
				"DTSTART:20260115T090000Z",
				"END:VEVENT",
			),
		},
		{
			name: "unknown TZID",
			body: icsDoc(
				"BEGIN:VEVENT",
				"UID:bad@example.com",
				"SUMMARY:Nowhere",
				"DTSTART;TZID=Mars/Olympus_Mons:20260115T090000",
				"DTEND;TZID=Mars/Olympus_Mons:20260115T100000",
				"END:VEVENT",
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFeed(tt.body)
			assert.Error(t, err)
		})
	}
}

// One bad event poisons the whole feed, even when other events are fine.
func TestParseFeedFailsWholeFeed(t *testing.T) {
	body := icsDoc(
		"BEGIN:VEVENT",
		"UID:ok@example.com",
		"SUMMARY:Fine",
		"DTSTART:20260115T090000Z",
		"DTEND:20260115T100000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:broken@example.com",
		"DTSTART:20260115T110000Z",
		"DTEND:20260115T120000Z",
		"END:VEVENT",
	)

	_, err := ParseFeed(body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken@example.com")
}
