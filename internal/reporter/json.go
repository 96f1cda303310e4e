package reporter

import (
	"encoding/json"

	"github.com/pipcheck/pipcheck/internal/models"
)

// JSONReporter outputs issues in JSON format
type JSONReporter struct{}

// jsonOutput represents the JSON output structure
type jsonOutput struct {
	Summary jsonSummary `json:"summary"`
	Issues  []jsonIssue `json:"issues"`
}

type jsonSummary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

type jsonIssue struct {
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Package  string `json:"package,omitempty"`
}

// Report generates JSON output for the given issues
func (r *JSONReporter) Report(issues []models.Issue) ([]byte, error) {
	errors, warnings, infos := countBySeverity(issues)

	output := jsonOutput{
		Summary: jsonSummary{
			Total:    len(issues),
			Errors:   errors,
			Warnings: warnings,
			Infos:    infos,
		},
		Issues: make([]jsonIssue, 0, len(issues)),
	}

	for _, issue := range issues {
		output.Issues = append(output.Issues, jsonIssue{
			RuleID:   issue.RuleID,
			Severity: string(issue.Severity),
			Message:  issue.Message,
			File:     issue.File,
			Line:     issue.Line,
			Package:  issue.Package,
		})
	}

	return json.MarshalIndent(output, "", "  ")
}
