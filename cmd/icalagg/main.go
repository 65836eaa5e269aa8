// Command icalagg fetches the configured iCalendar feeds, merges
// their events into one schedule, and writes the combined calendar
// file and the HTML schedule page.
//
// Usage:
//
//	icalagg [-v] <config.ini>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"icalagg/internal/app"
	"icalagg/internal/config"
	appLog "icalagg/internal/log"
)

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: icalagg [-v] <config.ini>")
		os.Exit(2)
	}
	if *verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}

	configPath := flag.Arg(0)
	cfg, err := config.Load(configPath)
	if err != nil {
		appLog.Error("configuration failed", err, "config_path", configPath)
		os.Exit(1)
	}

	appLog.Info("starting",
		"timezone", cfg.Timezone,
		"adjust_hours", cfg.AdjustHours,
		"rooms", len(cfg.Rooms),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		appLog.Error("run failed", err)
		os.Exit(1)
	}
}
