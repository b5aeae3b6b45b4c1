package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"

	"github.com/chrond/chrond/errors"
	"github.com/chrond/chrond/schedule"
)

// defaultRegistry builds the built-in command set. Applications embedding
// the scheduler register their own commands; the daemon ships with log
// retention so cleanup can itself be scheduled as a job.
func defaultRegistry(database *sql.DB) *schedule.CommandRegistry {
	registry := schedule.NewCommandRegistry()
	registry.Register(&cleanLogsCommand{logs: schedule.NewLogStore(database)})
	return registry
}

// cleanLogsCommand deletes old run logs. Usage as a job:
//
//	command: clean-logs
//	args:    unit=weeks amount=4
type cleanLogsCommand struct {
	logs *schedule.LogStore
}

func (c *cleanLogsCommand) Name() string { return "clean-logs" }

func (c *cleanLogsCommand) Run(ctx context.Context, args []string, opts map[string]string, stdout, stderr io.Writer) error {
	unit := opts["unit"]
	if unit == "" {
		unit = "weeks"
	}
	amountStr := opts["amount"]
	if amountStr == "" {
		amountStr = "1"
	}
	amount, err := strconv.Atoi(amountStr)
	if err != nil || amount <= 0 {
		return errors.Newf("invalid amount %q", amountStr)
	}

	cutoff, err := retentionCutoff(unit, amount)
	if err != nil {
		return err
	}

	deleted, err := c.logs.DeleteOlderThan(cutoff)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deleted %d run log(s) older than %d %s\n", deleted, amount, unit)
	return nil
}
