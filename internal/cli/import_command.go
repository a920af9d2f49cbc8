package cli

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"pulseboard/internal/api"
	"pulseboard/internal/errors"
)

// importHeader names the columns of an import file, in order
var importHeader = []string{"card_id", "start_time", "end_time", "total_seconds"}

// ImportCommand loads finished entries from a CSV file
type ImportCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewImportCommand creates a new import command handler
func NewImportCommand(app *App) *ImportCommand {
	return &ImportCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the import command
func (c *ImportCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "import", "usage: pb import <file.csv>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeInvalidInput, "cannot open import file "+args[0])
	}
	defer f.Close()

	records, err := readImportRecords(f)
	if err != nil {
		return err
	}

	entries, err := c.app.api.ImportTimers(ctx, c.app.user(), records)
	if err != nil {
		return c.errorHandler.Handle("import time entries", err)
	}

	if c.app.jsonOutput() {
		return c.app.printJSON(entries)
	}
	c.app.printf("Imported %d time entries\n", len(entries))
	return nil
}

// readImportRecords parses CSV rows. A header row matching the column
// names is skipped; total_seconds may be left out.
func readImportRecords(r io.Reader) ([]api.ImportRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, "import file is not valid CSV")
	}
	if len(rows) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), importHeader[0]) {
		rows = rows[1:]
	}

	records := make([]api.ImportRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) < 3 || len(row) > len(importHeader) {
			return nil, errors.NewInvalidInputError("row", i+1, "expected columns "+strings.Join(importHeader, ","))
		}
		rec := api.ImportRecord{
			CardID:    row[0],
			StartTime: row[1],
			EndTime:   row[2],
		}
		if len(row) == 4 {
			rec.TotalSeconds = row[3]
		}
		records = append(records, rec)
	}
	return records, nil
}
