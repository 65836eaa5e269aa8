package ics

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"icalagg/internal/schedule"
)

const defaultMaxInstancesPerEvent = 5000

// ExpandConfig controls recurrence expansion for one room's events.
type ExpandConfig struct {
	// Room is the display name tagged onto every produced event.
	Room string

	// RangeStart / RangeEnd bound RRULE expansion. Non-recurring
	// events are always included, regardless of the window.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxInstancesPerEvent rejects runaway rules: expansion past this
	// many instances is an error. Zero means the default.
	MaxInstancesPerEvent int
}

// Expand turns parsed events into concrete schedule events, expanding
// RRULEs inside the configured window and honoring EXDATE. Instances
// of a recurring event share the source UID with a start-time suffix
// so the combined calendar keeps unique UIDs.
func Expand(events []ParsedEvent, cfg ExpandConfig) ([]schedule.Event, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("expand: range end is before range start")
	}
	if cfg.MaxInstancesPerEvent <= 0 {
		cfg.MaxInstancesPerEvent = defaultMaxInstancesPerEvent
	}

	out := make([]schedule.Event, 0, len(events))
	for _, ev := range events {
		if ev.RawRRule == "" {
			out = append(out, makeEvent(ev, cfg.Room, ev.UID, ev.Start, ev.End))
			continue
		}

		instances, err := expandRecurring(ev, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, instances...)
	}
	return out, nil
}

func expandRecurring(ev ParsedEvent, cfg ExpandConfig) ([]schedule.Event, error) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		return nil, fmt.Errorf("event %s: bad RRULE %q: %w", ev.UID, ev.RawRRule, err)
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Between() compares in the rule's own location.
	rangeStart := cfg.RangeStart.In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())

	starts := set.Between(rangeStart, rangeEnd, true)
	if len(starts) > cfg.MaxInstancesPerEvent {
		// A rule this large is almost certainly a broken feed;
		// silently dropping instances would make the schedule lie.
		return nil, fmt.Errorf("event %s: recurrence expands to more than %d instances in window",
			ev.UID, cfg.MaxInstancesPerEvent)
	}

	duration := ev.End.Sub(ev.Start)
	out := make([]schedule.Event, 0, len(starts))
	for _, start := range starts {
		var end time.Time
		if ev.AllDay {
			start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			end = start.Add(24 * time.Hour)
		} else {
			end = start.Add(duration)
		}
		uid := fmt.Sprintf("%s-%s", ev.UID, start.UTC().Format("20060102T150405Z"))
		out = append(out, makeEvent(ev, cfg.Room, uid, start, end))
	}
	return out, nil
}

func makeEvent(ev ParsedEvent, room, uid string, start, end time.Time) schedule.Event {
	return schedule.Event{
		Room:        room,
		UID:         uid,
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		AllDay:      ev.AllDay,
		Start:       start,
		End:         end,
	}
}
