package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrond/chrond/config"
	"github.com/chrond/chrond/errors"
	"github.com/chrond/chrond/recur"
	"github.com/chrond/chrond/schedule"
)

// JobsCmd groups job management subcommands.
var JobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage job definitions",
	Long: `Manage recurring job definitions.

Examples:
  chrond jobs add nightly-report --frequency DAILY --params "byhour:6;byminute:0" --shell-command "make report"
  chrond jobs ls
  chrond jobs run nightly-report
  chrond jobs run nightly-report --no-save   # dry run, schedule untouched
  chrond jobs rm nightly-report`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var jobsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase("")
		if err != nil {
			return err
		}
		defer database.Close()

		frequency, _ := cmd.Flags().GetString("frequency")
		params, _ := cmd.Flags().GetString("params")
		command, _ := cmd.Flags().GetString("command")
		shellCommand, _ := cmd.Flags().GetString("shell-command")
		runInShell, _ := cmd.Flags().GetBool("run-in-shell")
		jobArgs, _ := cmd.Flags().GetString("args")
		disabled, _ := cmd.Flags().GetBool("disabled")
		infoSubs, _ := cmd.Flags().GetStringArray("subscribe")
		errorSubs, _ := cmd.Flags().GetStringArray("subscribe-errors")

		job := &schedule.Job{
			Name:             args[0],
			Frequency:        recur.ParseFrequency(frequency),
			Params:           params,
			Command:          command,
			ShellCommand:     shellCommand,
			RunInShell:       runInShell,
			Args:             jobArgs,
			Disabled:         disabled,
			InfoSubscribers:  parseSubscribers(infoSubs),
			ErrorSubscribers: parseSubscribers(errorSubs),
		}
		if err := job.Validate(); err != nil {
			return err
		}
		if err := job.ScheduleNext(time.Now().UTC()); err != nil {
			return err
		}

		store := schedule.NewStore(database)
		if err := store.Save(job); err != nil {
			return err
		}

		fmt.Printf("Added job %s (%s)\n", job.Name, job.ID)
		fmt.Printf("  Next run: %s\n", job.TimeUntil(time.Now().UTC()))
		return nil
	},
}

var jobsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase("")
		if err != nil {
			return err
		}
		defer database.Close()

		store := schedule.NewStore(database)
		jobs, err := store.List()
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs defined")
			return nil
		}

		now := time.Now().UTC()
		fmt.Printf("%-36s %-24s %-10s %-12s %s\n", "ID", "NAME", "FREQUENCY", "NEXT RUN", "LAST RESULT")
		for _, job := range jobs {
			lastResult := "-"
			if job.LastRun != nil {
				if job.LastRunSuccessful {
					lastResult = "ok"
				} else {
					lastResult = "FAILED"
				}
			}
			fmt.Printf("%-36s %-24s %-10s %-12s %s\n",
				job.ID, job.Name, job.Frequency, job.TimeUntil(now), lastResult)
		}
		return nil
	},
}

var jobsRunCmd = &cobra.Command{
	Use:   "run <id-or-name>",
	Short: "Run a job immediately",
	Long: `Run a job right now, outside its schedule.

The run is recorded and subscribers are notified as usual. With --no-save
the job's last run and next run are left untouched, so the scheduled run
still happens at its normal time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noSave, _ := cmd.Flags().GetBool("no-save")

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

		job, err := findJob(store, args[0])
		if err != nil {
			return err
		}

		if err := runner.Run(cmd.Context(), job, !noSave); err != nil {
			return err
		}

		logs := schedule.NewLogStore(database)
		list, err := logs.ListForJob(job.ID)
		if err != nil || len(list) == 0 {
			return err
		}
		last := list[0]
		if last.Success {
			fmt.Printf("Job %s completed\n", job.Name)
		} else {
			fmt.Printf("Job %s FAILED\n", job.Name)
		}
		if last.Stdout != "" {
			fmt.Printf("\n%s", last.Stdout)
		}
		if last.Stderr != "" {
			fmt.Printf("\n%s", last.Stderr)
		}
		return nil
	},
}

var jobsRmCmd = &cobra.Command{
	Use:   "rm <id-or-name>",
	Short: "Delete a job and its run logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase("")
		if err != nil {
			return err
		}
		defer database.Close()

		store := schedule.NewStore(database)
		job, err := findJob(store, args[0])
		if err != nil {
			return err
		}
		if err := store.Delete(job.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted job %s\n", job.Name)
		return nil
	},
}

// findJob resolves a job by ID first, then by unique name.
func findJob(store *schedule.Store, ref string) (*schedule.Job, error) {
	job, err := store.Load(ref)
	if err == nil {
		return job, nil
	}
	if !errors.IsNotFoundError(err) {
		return nil, err
	}

	jobs, err := store.List()
	if err != nil {
		return nil, err
	}
	var match *schedule.Job
	for _, j := range jobs {
		if j.Name == ref {
			if match != nil {
				return nil, errors.Newf("job name %q is ambiguous, use the ID", ref)
			}
			match = j
		}
	}
	if match == nil {
		return nil, errors.NewNotFoundError("job %s", ref)
	}
	return store.Load(match.ID)
}

// parseSubscribers accepts "email" or "Full Name <email>" entries.
func parseSubscribers(entries []string) []schedule.Subscriber {
	var subs []schedule.Subscriber
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if open := strings.LastIndex(entry, "<"); open >= 0 && strings.HasSuffix(entry, ">") {
			subs = append(subs, schedule.Subscriber{
				FullName: strings.Trim(strings.TrimSpace(entry[:open]), `"`),
				Email:    entry[open+1 : len(entry)-1],
			})
			continue
		}
		subs = append(subs, schedule.Subscriber{Email: entry})
	}
	return subs
}

func init() {
	jobsAddCmd.Flags().String("frequency", "DAILY", "Recurrence frequency (YEARLY, MONTHLY, WEEKLY, DAILY, HOURLY, MINUTELY, SECONDLY)")
	jobsAddCmd.Flags().String("params", "", `Recurrence parameters, e.g. "byhour:6;byminute:0"`)
	jobsAddCmd.Flags().String("command", "", "In-process command name")
	jobsAddCmd.Flags().String("shell-command", "", "External command line")
	jobsAddCmd.Flags().Bool("run-in-shell", false, "Run the shell command through /bin/sh")
	jobsAddCmd.Flags().String("args", "", `Arguments, e.g. "arg1 option1=True"`)
	jobsAddCmd.Flags().Bool("disabled", false, "Create the job disabled")
	jobsAddCmd.Flags().StringArray("subscribe", nil, `Notify on success with output, "email" or "Full Name <email>" (repeatable)`)
	jobsAddCmd.Flags().StringArray("subscribe-errors", nil, "Notify on failure (repeatable)")

	jobsRunCmd.Flags().Bool("no-save", false, "Do not advance the job's schedule")

	JobsCmd.AddCommand(jobsAddCmd)
	JobsCmd.AddCommand(jobsLsCmd)
	JobsCmd.AddCommand(jobsRunCmd)
	JobsCmd.AddCommand(jobsRmCmd)
}
