// package formatter renders recorded listener runs in various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/oneshot/internal/models"
)

// Format names an output format accepted by [Export].
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts the names used on the command line, including "md".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

var csvHeaders = []string{"ID", "Address", "Path", "Outcome", "Error", "Detail", "Started", "Finished", "Duration"}

// ExportToCSV converts runs to CSV with one row per run.
func ExportToCSV(runs []*models.Run) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, run := range runs {
		record := []string{
			run.ID(),
			run.Address(),
			run.Path(),
			status(run),
			run.ErrorCode(),
			run.Detail(),
			run.CreatedAt().Format(time.RFC3339),
			finishedAt(run),
			duration(run),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts runs to a Markdown table.
func ExportToMarkdown(runs []*models.Run) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Listener runs\n\n")
	buf.WriteString(fmt.Sprintf("**Runs**: %d\n\n", len(runs)))

	if len(runs) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| Started | Address | Path | Outcome | Error | Duration |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	for _, run := range runs {
		buf.WriteString(fmt.Sprintf("| %s | %s | `%s` | %s | %s | %s |\n",
			run.CreatedAt().Format(time.RFC3339),
			run.Address(),
			run.Path(),
			status(run),
			cell(run.ErrorCode()),
			duration(run),
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts runs to plain text, one line per run.
func ExportToText(runs []*models.Run) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Runs: %d\n\n", len(runs)))
	for i, run := range runs {
		line := fmt.Sprintf("%d. %s %s%s %s", i+1, run.CreatedAt().Local().Format(time.DateTime), run.Address(), run.Path(), status(run))
		if code := run.ErrorCode(); code != "" {
			line += " (" + code + ")"
		}
		if run.Finished() {
			line += " in " + duration(run)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// Export renders runs in the given format.
func Export(runs []*models.Run, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(runs)
	case FormatMarkdown:
		return ExportToMarkdown(runs)
	case FormatText:
		return ExportToText(runs)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// WriteExport renders runs and writes them to path.
//
// Defaults to runs.{ext} in the working directory.
func WriteExport(runs []*models.Run, format Format, path string) (string, error) {
	if path == "" {
		path = "runs." + extension(format)
	}

	data, err := Export(runs, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func extension(f Format) string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

func status(run *models.Run) string {
	if !run.Finished() {
		return "pending"
	}
	return run.Kind().String()
}

func finishedAt(run *models.Run) string {
	if t := run.FinishedAt(); t != nil {
		return t.Format(time.RFC3339)
	}
	return ""
}

func duration(run *models.Run) string {
	if !run.Finished() {
		return ""
	}
	return run.Duration().Round(time.Millisecond).String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
