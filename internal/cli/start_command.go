package cli

import (
	"context"

	"pulseboard/internal/errors"
)

// StartCommand handles the start command
type StartCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewStartCommand creates a new start command handler
func NewStartCommand(app *App) *StartCommand {
	return &StartCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the start command
func (c *StartCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "start", "usage: pb start <card-id>")
	}

	entry, err := c.app.api.StartTimer(ctx, c.app.user(), args[0])
	if err != nil {
		return c.errorHandler.Handle("start timer", err)
	}

	if c.app.jsonOutput() {
		return c.app.printJSON(entry)
	}
	c.app.printf("Started time entry %d on card %s\n", entry.ID, entry.CardID)
	return nil
}
