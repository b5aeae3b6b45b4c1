package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrond/chrond/config"
	"github.com/chrond/chrond/errors"
	"github.com/chrond/chrond/logger"
	"github.com/chrond/chrond/schedule"
)

// ServeCmd starts the scheduler daemon.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scheduler daemon",
	Long: `Start the scheduler in foreground mode.

The daemon checks for due jobs at the configured tick interval, runs
them, records their output and notifies subscribers. It runs until
interrupted (Ctrl+C) and finishes any in-flight job before exiting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}

		database, err := openDatabase("")
		if err != nil {
			return err
		}
		defer database.Close()

		runner, store := newRunner(cfg, database, defaultRegistry(database))

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		tickerCfg := schedule.DefaultTickerConfig()
		if cfg.Scheduler.TickIntervalSeconds > 0 {
			tickerCfg.Interval = time.Duration(cfg.Scheduler.TickIntervalSeconds) * time.Second
		}

		ticker := schedule.NewTickerWithContext(ctx, store, runner, tickerCfg, logger.Logger)
		ticker.Start()

		fmt.Printf("chrond started\n")
		fmt.Printf("  Database: %s\n", cfg.Database.Path)
		fmt.Printf("  Tick interval: %v\n", tickerCfg.Interval)
		fmt.Printf("\nPress Ctrl+C to stop\n\n")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		fmt.Printf("\nShutting down...\n")
		ticker.Stop()
		cancel()

		fmt.Printf("chrond stopped\n")
		return nil
	},
}
