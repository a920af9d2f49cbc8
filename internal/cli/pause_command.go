package cli

import (
	"context"

	"pulseboard/internal/errors"
)

// PauseCommand handles the pause command
type PauseCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewPauseCommand creates a new pause command handler
func NewPauseCommand(app *App) *PauseCommand {
	return &PauseCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the pause command
func (c *PauseCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "pause", "usage: pb pause <entry-id>")
	}

	entry, err := c.app.api.PauseTimer(ctx, args[0], c.app.user())
	if err != nil {
		return c.errorHandler.Handle("pause timer", err)
	}

	if c.app.jsonOutput() {
		return c.app.printJSON(entry)
	}
	c.app.printf("Paused time entry %d (%s logged)\n", entry.ID, formatSeconds(entry.TotalDuration))
	return nil
}
