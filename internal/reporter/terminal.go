package reporter

import (
	"fmt"
	"strings"

	"github.com/pipcheck/pipcheck/internal/models"
)

// TerminalReporter outputs issues in a human-readable terminal format
type TerminalReporter struct{}

// Report generates terminal output for the given issues
func (r *TerminalReporter) Report(issues []models.Issue) ([]byte, error) {
	if len(issues) == 0 {
		return []byte("No issues found.\n"), nil
	}

	var sb strings.Builder

	errors, warnings, infos := countBySeverity(issues)

	sb.WriteString("\nMANIFEST ISSUES FOUND\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")
	sb.WriteString(fmt.Sprintf("%d error(s), %d warning(s), %d informational\n\n", errors, warnings, infos))

	currentFile := ""
	for _, issue := range issues {
		if issue.File != currentFile {
			if currentFile != "" {
				sb.WriteString("\n")
			}
			currentFile = issue.File
			sb.WriteString(fmt.Sprintf("%s\n", currentFile))
			sb.WriteString(strings.Repeat("-", len(currentFile)) + "\n")
		}

		marker := "  "
		switch issue.Severity {
		case models.SeverityError:
			marker = "✖ "
		case models.SeverityWarning:
			marker = "⚠ "
		case models.SeverityInfo:
			marker = "ℹ "
		}

		location := ""
		if issue.Line > 0 {
			location = fmt.Sprintf("line %d: ", issue.Line)
		}

		sb.WriteString(fmt.Sprintf("  %s%s%s [%s]\n", marker, location, issue.Message, issue.RuleID))
	}

	sb.WriteString("\n")
	return []byte(sb.String()), nil
}
