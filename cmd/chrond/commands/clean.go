package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrond/chrond/errors"
	"github.com/chrond/chrond/schedule"
)

// CleanCmd deletes old run logs.
var CleanCmd = &cobra.Command{
	Use:   "clean <unit> <amount>",
	Short: "Delete old run logs",
	Long: `Delete run logs older than the given age.

Unit is one of: weeks, days, hours, minutes.

Examples:
  chrond clean weeks 1     # Delete logs older than a week
  chrond clean days 30     # Delete logs older than 30 days`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.Atoi(args[1])
		if err != nil || amount <= 0 {
			return errors.Newf("invalid amount %q", args[1])
		}

		cutoff, err := retentionCutoff(args[0], amount)
		if err != nil {
			return err
		}

		database, err := openDatabase("")
		if err != nil {
			return err
		}
		defer database.Close()

		deleted, err := schedule.NewLogStore(database).DeleteOlderThan(cutoff)
		if err != nil {
			return err
		}

		fmt.Printf("Deleted %d run log(s) older than %d %s\n", deleted, amount, args[0])
		return nil
	},
}

// retentionCutoff converts a unit and amount into an absolute cutoff time.
func retentionCutoff(unit string, amount int) (time.Time, error) {
	var per time.Duration
	switch unit {
	case "weeks":
		per = 7 * 24 * time.Hour
	case "days":
		per = 24 * time.Hour
	case "hours":
		per = time.Hour
	case "minutes":
		per = time.Minute
	default:
		return time.Time{}, errors.Newf("invalid unit %q (expected weeks, days, hours or minutes)", unit)
	}
	return time.Now().UTC().Add(-time.Duration(amount) * per), nil
}
