package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrond/chrond/config"
	"github.com/chrond/chrond/db"
	"github.com/chrond/chrond/errors"
	"github.com/chrond/chrond/logger"
)

// DbCmd groups database maintenance subcommands.
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the chrond database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}

		database, err := db.Open(cfg.Database.Path, logger.Logger)
		if err != nil {
			return errors.Wrapf(err, "failed to open database at %s", cfg.Database.Path)
		}
		defer database.Close()

		before, err := db.AppliedCount(database)
		if err != nil {
			return err
		}
		if err := db.Migrate(database, logger.Logger); err != nil {
			return errors.Wrapf(err, "failed to run migrations on %s", cfg.Database.Path)
		}
		after, err := db.AppliedCount(database)
		if err != nil {
			return err
		}

		if after > before {
			fmt.Printf("Applied %d migration(s)\n", after-before)
		} else {
			fmt.Println("Database is up to date")
		}
		return nil
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
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

		var jobs, logs, subscribers int
		if err := database.QueryRow(`SELECT COUNT(*) FROM jobs`).Scan(&jobs); err != nil {
			return errors.Wrap(err, "failed to count jobs")
		}
		if err := database.QueryRow(`SELECT COUNT(*) FROM run_logs`).Scan(&logs); err != nil {
			return errors.Wrap(err, "failed to count run logs")
		}
		if err := database.QueryRow(`SELECT COUNT(*) FROM job_subscribers`).Scan(&subscribers); err != nil {
			return errors.Wrap(err, "failed to count subscribers")
		}

		fmt.Printf("Database: %s\n", cfg.Database.Path)
		fmt.Printf("  Jobs:        %d\n", jobs)
		fmt.Printf("  Run logs:    %d\n", logs)
		fmt.Printf("  Subscribers: %d\n", subscribers)
		return nil
	},
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}
