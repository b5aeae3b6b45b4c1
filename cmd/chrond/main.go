package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chrond/chrond/cmd/chrond/commands"
	"github.com/chrond/chrond/logger"
)

var rootCmd = &cobra.Command{
	Use:   "chrond",
	Short: "chrond - recurring job scheduler",
	Long: `chrond runs recurring jobs on calendar-style schedules, records every
run with its captured output, and mails subscribers about the outcomes.

Available commands:
  serve   - Start the scheduler daemon
  jobs    - Manage job definitions (add, ls, run)
  clean   - Delete old run logs
  db      - Manage the database
  version - Show version information

Examples:
  chrond serve                        # Start the scheduler in foreground
  chrond jobs ls                      # List jobs with their next run
  chrond jobs run nightly-report      # Run a job immediately
  chrond clean weeks 4                # Delete run logs older than 4 weeks`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON instead of console output")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.JobsCmd)
	rootCmd.AddCommand(commands.CleanCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
