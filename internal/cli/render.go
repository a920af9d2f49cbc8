package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"pulseboard/internal/analytics"
	"pulseboard/internal/api"
)

// formatSeconds renders a duration as "1h 02m 03s", dropping the hours
// when there are none
func formatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	return fmt.Sprintf("%dm %02ds", m, s)
}

// writeStatus prints a timer status, with its segments when detailed
func writeStatus(w io.Writer, status *api.TimerStatus, detailed bool) {
	e := status.Entry
	fmt.Fprintf(w, "Time entry %d on card %s is %s\n", e.ID, e.CardID, status.State)
	fmt.Fprintf(w, "  Started:      %s\n", e.StartTime.Format(time.RFC3339))
	if e.EndTime != nil {
		fmt.Fprintf(w, "  Stopped:      %s\n", e.EndTime.Format(time.RFC3339))
	}
	if status.ElapsedSeconds > 0 {
		fmt.Fprintf(w, "  This stretch: %s\n", formatSeconds(status.ElapsedSeconds))
	}
	fmt.Fprintf(w, "  Total:        %s\n", formatSeconds(status.EffectiveSeconds))
	if status.ActionsRemaining != nil {
		fmt.Fprintf(w, "  Actions left: %d pause/resume this window\n", *status.ActionsRemaining)
	}

	if !detailed || len(e.Segments) == 0 {
		return
	}
	fmt.Fprintln(w, "  Segments:")
	for _, s := range e.Segments {
		end := "running"
		if s.EndedAt != nil {
			end = s.EndedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "    %s -> %s\n", s.StartedAt.Format(time.RFC3339), end)
	}
}

// writeReport prints dashboard data as a table followed by the messages
func writeReport(w io.Writer, data *analytics.TimeData) error {
	fmt.Fprintf(w, "Range: %s   Entries: %d   Total: %.2f h\n\n", data.Range, data.TotalEntries, data.TotalTimeHours)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tHOURS")
	for _, b := range data.Buckets {
		fmt.Fprintf(tw, "%s\t%.2f\n", b.Period, b.Time)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	writeMessages(w, "Insights", data.Insights)
	writeMessages(w, "Recommendations", data.Recommendations)
	return nil
}

func writeMessages(w io.Writer, title string, messages []string) {
	if len(messages) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, m := range messages {
		fmt.Fprintf(w, "  - %s\n", m)
	}
}

// writeReportCSV exports the buckets of dashboard data
func writeReportCSV(w io.Writer, data *analytics.TimeData) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Period", "Start", "End", "Hours"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, b := range data.Buckets {
		record := []string{
			b.Period,
			b.Start.Format(time.RFC3339),
			b.End.Format(time.RFC3339),
			strconv.FormatFloat(b.Time, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
