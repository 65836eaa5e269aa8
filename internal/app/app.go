// Package app wires the stages together: fetch every feed, parse and
// normalize every event, merge, then write both output files. Any
// stage failing aborts the run before anything is written.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"icalagg/internal/config"
	"icalagg/internal/ics"
	appLog "icalagg/internal/log"
	"icalagg/internal/render"
	"icalagg/internal/schedule"
)

// Run executes one full aggregation pipeline. The output files are
// only written after every room has fetched and parsed successfully,
// so a failed run leaves no partial output behind.
func Run(ctx context.Context, cfg *config.Config) error {
	sources := make([]ics.Source, len(cfg.Rooms))
	for i, r := range cfg.Rooms {
		sources[i] = ics.Source{Room: r.Name, URL: r.URL}
	}

	results, err := ics.NewFetcher().FetchAll(ctx, sources)
	if err != nil {
		return err
	}

	now := time.Now()
	rangeStart := now.AddDate(0, 0, -cfg.HorizonDays)
	rangeEnd := now.AddDate(0, 0, cfg.HorizonDays)

	groups := make([][]schedule.Event, 0, len(results))
	for _, res := range results {
		parsed, err := ics.ParseFeed(res.Body)
		if err != nil {
			return fmt.Errorf("parse room %q (%s): %w", res.Source.Room, res.Source.URL, err)
		}

		expanded, err := ics.Expand(parsed, ics.ExpandConfig{
			Room:       res.Source.Room,
			RangeStart: rangeStart,
			RangeEnd:   rangeEnd,
		})
		if err != nil {
			return fmt.Errorf("expand room %q (%s): %w", res.Source.Room, res.Source.URL, err)
		}

		normalized, err := schedule.Normalize(expanded, cfg.AdjustHours)
		if err != nil {
			return fmt.Errorf("normalize room %q: %w", res.Source.Room, err)
		}

		appLog.Debug("room normalized", "room", res.Source.Room, "events", len(normalized))
		groups = append(groups, normalized)
	}

	merged := schedule.Merge(groups...)
	appLog.Info("schedule merged", "rooms", len(cfg.Rooms), "events", len(merged))

	header, err := readSnippet(cfg.HeaderPath)
	if err != nil {
		return fmt.Errorf("read header snippet: %w", err)
	}
	footer, err := readSnippet(cfg.FooterPath)
	if err != nil {
		return fmt.Errorf("read footer snippet: %w", err)
	}

	calendar := render.Calendar(merged)
	page := render.Page(merged, cfg.RoomNames(), cfg.Location, header, footer)

	if err := os.WriteFile(cfg.ICalPath, []byte(calendar), 0o644); err != nil {
		return fmt.Errorf("write calendar file %s: %w", cfg.ICalPath, err)
	}
	if err := os.WriteFile(cfg.HTMLPath, []byte(page), 0o644); err != nil {
		return fmt.Errorf("write page file %s: %w", cfg.HTMLPath, err)
	}

	appLog.Info("outputs written", "ical", cfg.ICalPath, "html", cfg.HTMLPath)
	return nil
}

// readSnippet reads an optional header/footer file; an empty path
// means an empty snippet.
func readSnippet(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
