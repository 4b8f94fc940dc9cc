// Package formatter renders run reports for export.
//
// Supported formats are json (default), csv, markdown, and text. All formats
// render the same rows: one per outcome, across the added, duplicate, and
// skipped lists in that order.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/sobatea/chartsync/internal/shared"
	"github.com/sobatea/chartsync/internal/tasks"
)

// Format names accepted by Render and WriteReport.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// rows flattens the report into per-outcome rows preserving list order.
func rows(report *tasks.RunReport) []tasks.Outcome {
	out := make([]tasks.Outcome, 0, report.Total())
	out = append(out, report.Added...)
	out = append(out, report.Duplicates...)
	out = append(out, report.Skipped...)
	return out
}

func trackURL(outcome tasks.Outcome) string {
	if outcome.Track == nil {
		return ""
	}
	return outcome.Track.ExternalURL
}

// Render serializes the report in the named format.
func Render(report *tasks.RunReport, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return shared.MarshalJSON(report, true)
	case FormatCSV:
		return renderCSV(report)
	case FormatMarkdown:
		return renderMarkdown(report), nil
	case FormatText:
		return renderText(report), nil
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteReport renders the report and writes it to path.
func WriteReport(report *tasks.RunReport, format, path string) error {
	data, err := Render(report, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func renderCSV(report *tasks.RunReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"status", "title", "artist", "file", "url", "reason"}); err != nil {
		return nil, err
	}

	for _, outcome := range rows(report) {
		record := []string{
			outcome.Status.String(),
			outcome.Metadata.Title,
			outcome.Metadata.Artist,
			outcome.FilePath,
			trackURL(outcome),
			outcome.Reason,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func renderMarkdown(report *tasks.RunReport) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Sync Report\n\n")
	fmt.Fprintf(&b, "%d added, %d duplicates, %d skipped\n\n",
		len(report.Added), len(report.Duplicates), len(report.Skipped))

	b.WriteString("| Status | Title | Artist | File | Reason |\n")
	b.WriteString("|--------|-------|--------|------|--------|\n")

	for _, outcome := range rows(report) {
		title := outcome.Metadata.Title
		if url := trackURL(outcome); url != "" {
			title = fmt.Sprintf("[%s](%s)", title, url)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			outcome.Status, title, outcome.Metadata.Artist, outcome.FilePath, outcome.Reason)
	}

	return []byte(b.String())
}

func renderText(report *tasks.RunReport) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "%d added, %d duplicates, %d skipped\n",
		len(report.Added), len(report.Duplicates), len(report.Skipped))

	for _, outcome := range rows(report) {
		fmt.Fprintf(&b, "[%s] %s - %s (%s)", outcome.Status,
			outcome.Metadata.Artist, outcome.Metadata.Title, outcome.FilePath)
		if outcome.Reason != "" {
			fmt.Fprintf(&b, ": %s", outcome.Reason)
		}
		b.WriteByte('\n')
	}

	return []byte(b.String())
}
