// Package config loads and validates the INI configuration file that
// drives a run. All validation happens here, before anything is
// fetched; the rest of the program can assume a well-formed Config.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/ini.v1"
)

const defaultHorizonDays = 365

// Room is one named feed source. Name is the title-cased display name,
// URL the iCalendar endpoint.
type Room struct {
	Name string
	URL  string
}

// Config is the fully validated run configuration. Immutable after Load.
type Config struct {
	// Timezone is the IANA zone name used for the HTML page; Location
	// is its resolved form.
	Timezone string
	Location *time.Location

	// AdjustHours is added to every event's start and end instant at
	// ingestion, to correct feeds published under a wrong zone.
	AdjustHours int

	// HorizonDays bounds recurrence expansion to [now-H, now+H] days.
	HorizonDays int

	// Output paths.
	ICalPath string
	HTMLPath string

	// Optional header/footer snippet paths; empty means no snippet.
	HeaderPath string
	FooterPath string

	// Rooms, sorted by display name.
	Rooms []Room
}

// RoomNames returns the display names of all rooms, in sorted order.
func (c *Config) RoomNames() []string {
	names := make([]string, len(c.Rooms))
	for i, r := range c.Rooms {
		names[i] = r.Name
	}
	return names
}

// Load reads and validates the INI file at path.
//
// Required keys: core.timezone, files.ical, files.html. Optional:
// core.timezone_adjust_hours (default 0), core.horizon_days (default
// 365), files.htmlheader, files.htmlfooter. Every key in [rooms]
// becomes a room; zero rooms is valid.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{HorizonDays: defaultHorizonDays}

	core := f.Section("core")
	if !core.HasKey("timezone") {
		return nil, fmt.Errorf("config %s: core.timezone is required", path)
	}
	cfg.Timezone = strings.TrimSpace(core.Key("timezone").String())
	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config %s: unknown timezone %q: %w", path, cfg.Timezone, err)
	}

	if core.HasKey("timezone_adjust_hours") {
		raw := strings.TrimSpace(core.Key("timezone_adjust_hours").String())
		cfg.AdjustHours, err = strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("config %s: core.timezone_adjust_hours %q is not an integer", path, raw)
		}
	}

	if core.HasKey("horizon_days") {
		raw := strings.TrimSpace(core.Key("horizon_days").String())
		cfg.HorizonDays, err = strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("config %s: core.horizon_days %q is not an integer", path, raw)
		}
		if cfg.HorizonDays <= 0 {
			return nil, fmt.Errorf("config %s: core.horizon_days must be positive, got %d", path, cfg.HorizonDays)
		}
	}

	// A present-but-empty output path is as useless as a missing one;
	// both fail here, before anything is fetched.
	files := f.Section("files")
	cfg.ICalPath = strings.TrimSpace(files.Key("ical").String())
	if cfg.ICalPath == "" {
		return nil, fmt.Errorf("config %s: files.ical is required", path)
	}
	cfg.HTMLPath = strings.TrimSpace(files.Key("html").String())
	if cfg.HTMLPath == "" {
		return nil, fmt.Errorf("config %s: files.html is required", path)
	}
	cfg.HeaderPath = files.Key("htmlheader").String()
	cfg.FooterPath = files.Key("htmlfooter").String()

	// Every [rooms] key is a room; the key is the name, the value its
	// feed URL. Names are title-cased for display.
	caser := cases.Title(language.English)
	for _, key := range f.Section("rooms").Keys() {
		url := strings.TrimSpace(key.Value())
		if url == "" {
			return nil, fmt.Errorf("config %s: room %q has an empty feed URL", path, key.Name())
		}
		cfg.Rooms = append(cfg.Rooms, Room{
			Name: caser.String(strings.TrimSpace(key.Name())),
			URL:  url,
		})
	}
	sort.Slice(cfg.Rooms, func(i, j int) bool {
		return cfg.Rooms[i].Name < cfg.Rooms[j].Name
	})

	return cfg, nil
}
