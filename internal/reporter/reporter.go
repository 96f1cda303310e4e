package reporter

import "github.com/pipcheck/pipcheck/internal/models"

// Reporter is the interface for output formatters
type Reporter interface {
	// Report generates output for the given issues
	Report(issues []models.Issue) ([]byte, error)
}

// Get returns a reporter for the specified format
func Get(format string) Reporter {
	switch format {
	case "json":
		return &JSONReporter{}
	case "sarif":
		return &SARIFReporter{}
	default:
		return &TerminalReporter{}
	}
}

// countBySeverity tallies issues per severity level
func countBySeverity(issues []models.Issue) (errors, warnings, infos int) {
	for _, issue := range issues {
		switch issue.Severity {
		case models.SeverityError:
			errors++
		case models.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return
}
