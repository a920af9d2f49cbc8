package cli

import (
	"context"

	"pulseboard/internal/errors"
)

// StopCommand handles the stop command
type StopCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewStopCommand creates a new stop command handler
func NewStopCommand(app *App) *StopCommand {
	return &StopCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the stop command
func (c *StopCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "stop", "usage: pb stop <entry-id>")
	}

	entry, err := c.app.api.StopTimer(ctx, args[0], c.app.user())
	if err != nil {
		return c.errorHandler.Handle("stop timer", err)
	}

	if c.app.jsonOutput() {
		return c.app.printJSON(entry)
	}
	c.app.printf("Stopped time entry %d after %s\n", entry.ID, formatSeconds(entry.TotalDuration))
	return nil
}
