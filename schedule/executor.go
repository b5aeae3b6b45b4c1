package schedule

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime/debug"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/chrond/chrond/errors"
)

// Result is the captured outcome of one job execution.
type Result struct {
	Success bool
	Stdout  string
	Stderr  string
}

// Executor runs a job's payload and captures its output. Execution
// failures are folded into the Result, never returned as errors.
type Executor interface {
	Execute(ctx context.Context, job *Job) Result
}

// CommandExecutor runs registry commands in-process and shell commands
// as subprocesses.
type CommandExecutor struct {
	registry *CommandRegistry
}

// NewCommandExecutor creates an executor backed by the given registry.
func NewCommandExecutor(registry *CommandRegistry) *CommandExecutor {
	return &CommandExecutor{registry: registry}
}

// Execute dispatches on the job's command mode.
func (e *CommandExecutor) Execute(ctx context.Context, job *Job) Result {
	if job.Command != "" {
		return e.executeCommand(ctx, job)
	}
	return e.executeShell(job)
}

func (e *CommandExecutor) executeCommand(ctx context.Context, job *Job) (result Result) {
	var stdout, stderr bytes.Buffer

	// A panicking command must not take the scheduler down with it.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(&stderr, "panic: %v\n%s", r, debug.Stack())
			result = Result{Success: false, Stdout: stdout.String(), Stderr: stderr.String()}
		}
	}()

	cmd, ok := e.registry.Get(job.Command)
	if !ok {
		fmt.Fprintf(&stderr, "unknown command %q\n", job.Command)
		return Result{Success: false, Stdout: stdout.String(), Stderr: stderr.String()}
	}

	args, opts := ParseArgs(job.Args)
	if err := cmd.Run(ctx, args, opts, &stdout, &stderr); err != nil {
		fmt.Fprint(&stderr, formatExecutionError(err))
		return Result{Success: false, Stdout: stdout.String(), Stderr: stderr.String()}
	}

	return Result{Success: true, Stdout: stdout.String(), Stderr: stderr.String()}
}

func (e *CommandExecutor) executeShell(job *Job) Result {
	var stdout, stderr bytes.Buffer

	commandLine := job.ShellCommand
	if job.Args != "" {
		commandLine = commandLine + " " + job.Args
	}

	var cmd *exec.Cmd
	if job.RunInShell {
		cmd = exec.Command("/bin/sh", "-c", escapeShellCommand(commandLine))
	} else {
		parts, err := shellquote.Split(commandLine)
		if err != nil {
			fmt.Fprintf(&stderr, "failed to parse command line: %v\n", err)
			return Result{Success: false, Stdout: stdout.String(), Stderr: stderr.String()}
		}
		if len(parts) == 0 {
			fmt.Fprintln(&stderr, "empty command line")
			return Result{Success: false, Stdout: stdout.String(), Stderr: stderr.String()}
		}
		cmd = exec.Command(parts[0], parts[1:]...)
	}

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintf(&stderr, "\n\n*** Process ended with return code %d\n\n", exitErr.ExitCode())
		} else {
			fmt.Fprintf(&stderr, "failed to start process: %v\n", err)
		}
		return Result{Success: false, Stdout: stdout.String(), Stderr: stderr.String()}
	}

	return Result{Success: true, Stdout: stdout.String(), Stderr: stderr.String()}
}

// formatExecutionError renders an error with its full detail chain so the
// stored log is useful for diagnosis.
func formatExecutionError(err error) string {
	return fmt.Sprintf("%+v\n", err)
}

// escapeShellCommand neutralizes characters that would let a stored
// command line break out of its intended invocation.
func escapeShellCommand(commandLine string) string {
	replacer := strings.NewReplacer(
		"`", "\\`",
		"$", "\\$",
		`"`, `\"`,
	)
	return replacer.Replace(commandLine)
}
