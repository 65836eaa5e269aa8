// Package schedule holds the unified event model and the merge/sort
// logic that turns per-room event lists into one ordered schedule.
package schedule

import (
	"fmt"
	"sort"
	"time"
)

// Event is one scheduled item, tagged with the room it came from.
// Start and End are absolute instants; the fixed-hour adjustment has
// already been applied by the time an Event reaches the renderer.
type Event struct {
	Room string
	UID  string

	Summary     string
	Description string
	Location    string

	AllDay bool

	Start time.Time
	End   time.Time
}

// Shift returns a copy of the event with both instants moved by the
// given number of hours. Applied exactly once, at ingestion.
func (e Event) Shift(hours int) Event {
	d := time.Duration(hours) * time.Hour
	e.Start = e.Start.Add(d)
	e.End = e.End.Add(d)
	return e
}

// Validate checks the event invariants.
func (e Event) Validate() error {
	if e.Summary == "" {
		return fmt.Errorf("event %s: summary not set", e.UID)
	}
	if e.Start.IsZero() {
		return fmt.Errorf("event %s: start not set", e.UID)
	}
	if e.End.IsZero() {
		return fmt.Errorf("event %s: end not set", e.UID)
	}
	if e.End.Before(e.Start) {
		return fmt.Errorf("event %s: end %s before start %s",
			e.UID, e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
	}
	return nil
}

// Normalize applies the fixed-hour adjustment to every event and
// validates the result. The input slice is not modified.
func Normalize(events []Event, adjustHours int) ([]Event, error) {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		shifted := e.Shift(adjustHours)
		if err := shifted.Validate(); err != nil {
			return nil, err
		}
		out = append(out, shifted)
	}
	return out, nil
}

// Merge concatenates the per-room event lists into one schedule,
// stable-sorted by start instant ascending with ties broken by room
// name. Nothing is deduplicated.
func Merge(groups ...[]Event) []Event {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]Event, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].Room < out[j].Room
	})
	return out
}
