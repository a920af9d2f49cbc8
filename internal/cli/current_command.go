package cli

import (
	"context"

	"pulseboard/internal/errors"
)

// CurrentCommand handles the current command
type CurrentCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewCurrentCommand creates a new current command handler
func NewCurrentCommand(app *App) *CurrentCommand {
	return &CurrentCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the current command. Having no open entry is not an error.
func (c *CurrentCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "current", "usage: pb current")
	}

	status, err := c.app.api.CurrentTimer(ctx, c.app.user())
	if c.errorHandler.IsNotFoundError(err) {
		if c.app.jsonOutput() {
			return c.app.printJSON(nil)
		}
		c.app.printf("No time entry is currently running\n")
		return nil
	}
	if err != nil {
		return c.errorHandler.Handle("get current timer", err)
	}

	if c.app.jsonOutput() {
		return c.app.printJSON(status)
	}
	writeStatus(c.app.out, status, false)
	return nil
}

// ShowCommand prints one entry with its segment history
type ShowCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewShowCommand creates a new show command handler
func NewShowCommand(app *App) *ShowCommand {
	return &ShowCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the show command
func (c *ShowCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "show", "usage: pb show <entry-id>")
	}

	status, err := c.app.api.GetTimer(ctx, args[0], c.app.user())
	if err != nil {
		return c.errorHandler.Handle("show timer", err)
	}

	if c.app.jsonOutput() {
		return c.app.printJSON(status)
	}
	writeStatus(c.app.out, status, true)
	return nil
}
