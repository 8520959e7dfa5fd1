// package formatter renders document entry blocks and terminal summaries
package formatter

import (
	"bytes"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lukestiles/voice-memo-to-doc/internal/models"
	"github.com/lukestiles/voice-memo-to-doc/internal/shared"
)

// DefaultDateFormat is used for default document titles and file headers.
const DefaultDateFormat = "2006-01-02 15:04:05"

var (
	summaryHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	summaryLabelStyle  = lipgloss.NewStyle().Bold(true)
	summaryURLStyle    = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("39"))
)

// FormatEntry renders the literal per-file document block:
//
//	"<file> <modTime>\n\n<cleanedText>\n---\n\n"
//
// This exact shape is part of the document contract and must not change.
func FormatEntry(file string, modTime time.Time, cleanedText string) string {
	return fmt.Sprintf("%s %s\n\n%s\n---\n\n", file, modTime.Format(DefaultDateFormat), cleanedText)
}

// DefaultTitle returns the document title used when none is supplied.
func DefaultTitle(t time.Time) string {
	return t.Format(DefaultDateFormat)
}

// RenderSummary renders the end-of-run terminal summary.
func RenderSummary(doc models.DocumentHandle, results []models.ProcessingResult, elapsed time.Duration) string {
	var buf bytes.Buffer

	buf.WriteString(summaryHeaderStyle.Render("Processing Complete"))
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf("%s %d\n", summaryLabelStyle.Render("Files:"), len(results)))
	buf.WriteString(fmt.Sprintf("%s %s\n", summaryLabelStyle.Render("Elapsed:"), elapsed.Round(time.Second)))
	buf.WriteString(fmt.Sprintf("%s %s\n\n", summaryLabelStyle.Render("Document:"), summaryURLStyle.Render(doc.URL)))

	for i, result := range results {
		buf.WriteString(fmt.Sprintf("  %d. %s (%d characters)\n", i+1, result.File, len(result.Text)))
	}

	return buf.String()
}

// ResultsJSON serializes processing results for --json output.
func ResultsJSON(results []models.ProcessingResult, pretty bool) ([]byte, error) {
	return shared.MarshalJSON(results, pretty)
}
