package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"cdr.dev/slog/v3"

	"pulseboard/internal/api"
	"pulseboard/internal/config"
)

// App represents the main CLI application
type App struct {
	api      api.API
	config   *config.Config
	out      io.Writer
	logger   slog.Logger
	registry *CommandRegistry
}

// NewAppWithOutput creates an application that writes results to out. A nil
// config means defaults.
func NewAppWithOutput(apiInstance api.API, cfg *config.Config, out io.Writer, logger slog.Logger) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	app := &App{
		api:    apiInstance,
		config: cfg,
		out:    out,
		logger: logger,
	}
	app.registry = NewCommandRegistry(app)
	return app
}

// Run executes the named command with the given arguments
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s", a.registry.GetUsage())
	}

	commandName := args[0]
	commandArgs := args[1:]

	return a.registry.Execute(ctx, commandName, commandArgs)
}

// user is the principal commands act as
func (a *App) user() string {
	return a.config.Application.UserID
}

// jsonOutput reports whether results are printed as JSON
func (a *App) jsonOutput() bool {
	return a.config.Application.OutputJSON
}

// printJSON writes v as indented JSON
func (a *App) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}
