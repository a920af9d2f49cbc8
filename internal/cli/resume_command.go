package cli

import (
	"context"

	"pulseboard/internal/errors"
)

// ResumeCommand handles the resume command
type ResumeCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewResumeCommand creates a new resume command handler
func NewResumeCommand(app *App) *ResumeCommand {
	return &ResumeCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the resume command
func (c *ResumeCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "resume", "usage: pb resume <entry-id>")
	}

	entry, err := c.app.api.ResumeTimer(ctx, args[0], c.app.user())
	if err != nil {
		return c.errorHandler.Handle("resume timer", err)
	}

	if c.app.jsonOutput() {
		return c.app.printJSON(entry)
	}
	c.app.printf("Resumed time entry %d (%s logged so far)\n", entry.ID, formatSeconds(entry.TotalDuration))
	return nil
}
