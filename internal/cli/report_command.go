package cli

import (
	"context"

	"pulseboard/internal/api"
	"pulseboard/internal/errors"
)

// Report output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// ReportCommand handles the report command. Its options are bound to
// command line flags by the root command.
type ReportCommand struct {
	app          *App
	errorHandler *ErrorHandler

	CardID         string
	Mine           bool
	Range          string
	EstimatedHours float64
	Format         string
}

// NewReportCommand creates a new report command handler
func NewReportCommand(app *App) *ReportCommand {
	return &ReportCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
		Range:        "week",
		Format:       FormatTable,
	}
}

// Execute runs the report command
func (c *ReportCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "report", "usage: pb report --card <card-id>|--mine [--range day|week|month|quarter]")
	}

	req := api.ReportRequest{
		CardID:         c.CardID,
		Range:          c.Range,
		EstimatedHours: c.EstimatedHours,
	}
	if c.Mine {
		req.UserID = c.app.user()
		if req.UserID == "" {
			return errors.NewInvalidInputError("user", "", "--mine needs --user or PB_USER")
		}
	}

	format := c.Format
	if c.app.jsonOutput() {
		format = FormatJSON
	}
	switch format {
	case FormatTable, FormatJSON, FormatCSV:
	default:
		return errors.NewInvalidInputError("format", format, "unsupported format")
	}

	data, err := c.app.api.GetTimeData(ctx, req)
	if err != nil {
		return c.errorHandler.Handle("build report", err)
	}

	switch format {
	case FormatJSON:
		return c.app.printJSON(data)
	case FormatCSV:
		return writeReportCSV(c.app.out, data)
	default:
		return writeReport(c.app.out, data)
	}
}
