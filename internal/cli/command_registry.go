package cli

import (
	"context"
	"sort"
	"strings"

	"pulseboard/internal/errors"
)

// Command represents a CLI command
type Command interface {
	Execute(ctx context.Context, args []string) error
}

// CommandRegistry manages all available commands
type CommandRegistry struct {
	commands map[string]Command
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry(app *App) *CommandRegistry {
	registry := &CommandRegistry{
		commands: make(map[string]Command),
	}

	// Register all commands
	registry.Register("start", NewStartCommand(app))
	registry.Register("pause", NewPauseCommand(app))
	registry.Register("resume", NewResumeCommand(app))
	registry.Register("stop", NewStopCommand(app))
	registry.Register("current", NewCurrentCommand(app))
	registry.Register("show", NewShowCommand(app))
	registry.Register("report", NewReportCommand(app))
	registry.Register("import", NewImportCommand(app))

	return registry
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(name string, command Command) {
	r.commands[name] = command
}

// Get returns the named command
func (r *CommandRegistry) Get(name string) (Command, bool) {
	command, exists := r.commands[name]
	return command, exists
}

// Execute runs the specified command with the given arguments
func (r *CommandRegistry) Execute(ctx context.Context, commandName string, args []string) error {
	command, exists := r.commands[commandName]
	if !exists {
		return errors.NewInvalidInputError("command", commandName, "unknown command")
	}
	return command.Execute(ctx, args)
}

// GetUsage returns the usage string for the CLI
func (r *CommandRegistry) GetUsage() string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return "usage: pb <" + strings.Join(names, "|") + "> [args]"
}
