package schedule

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Command is an in-process task that a job can invoke by name. Output is
// written to the supplied writers so runs can be captured per invocation.
type Command interface {
	// Name identifies the command in job definitions.
	Name() string

	// Run executes the command with positional args and key=value options.
	Run(ctx context.Context, args []string, opts map[string]string, stdout, stderr io.Writer) error
}

// CommandRegistry maps command names to implementations.
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewCommandRegistry creates an empty command registry.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{commands: make(map[string]Command)}
}

// Register adds a command. Duplicate names indicate a programming error
// and panic at startup rather than silently shadowing.
func (r *CommandRegistry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := cmd.Name()
	if _, exists := r.commands[name]; exists {
		panic(fmt.Sprintf("command %q already registered", name))
	}
	r.commands[name] = cmd
}

// Get looks up a command by name.
func (r *CommandRegistry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the registered command names, sorted.
func (r *CommandRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CommandFunc adapts a function to the Command interface.
type CommandFunc struct {
	CommandName string
	Fn          func(ctx context.Context, args []string, opts map[string]string, stdout, stderr io.Writer) error
}

func (c CommandFunc) Name() string { return c.CommandName }

func (c CommandFunc) Run(ctx context.Context, args []string, opts map[string]string, stdout, stderr io.Writer) error {
	return c.Fn(ctx, args, opts, stdout, stderr)
}
