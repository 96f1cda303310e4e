package reporter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipcheck/pipcheck/internal/lint"
	"github.com/pipcheck/pipcheck/internal/models"
)

func sampleIssues() []models.Issue {
	return []models.Issue{
		{
			RuleID:   lint.RuleSourceInsecureURL,
			Severity: models.SeverityWarning,
			Message:  `index "pypi" uses http, expected https`,
			File:     "app/Pipfile",
			Line:     2,
		},
		{
			RuleID:   lint.RuleVCSMissingRef,
			Severity: models.SeverityError,
			Message:  "demo pins a repository but no ref",
			File:     "app/Pipfile",
			Line:     12,
			Package:  "demo",
		},
		{
			RuleID:   lint.RulePackageUnpinned,
			Severity: models.SeverityInfo,
			Message:  "pyyaml accepts any version",
			File:     "lib/Pipfile",
			Line:     7,
			Package:  "pyyaml",
		},
	}
}

func TestGet(t *testing.T) {
	assert.IsType(t, &JSONReporter{}, Get("json"))
	assert.IsType(t, &SARIFReporter{}, Get("sarif"))
	assert.IsType(t, &TerminalReporter{}, Get("terminal"))
	assert.IsType(t, &TerminalReporter{}, Get(""))
}

func TestTerminalReporterEmpty(t *testing.T) {
	out, err := (&TerminalReporter{}).Report(nil)
	require.NoError(t, err)
	assert.Equal(t, "No issues found.\n", string(out))
}

func TestTerminalReporter(t *testing.T) {
	out, err := (&TerminalReporter{}).Report(sampleIssues())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "MANIFEST ISSUES FOUND")
	assert.Contains(t, s, "1 error(s), 1 warning(s), 1 informational")
	assert.Contains(t, s, "app/Pipfile")
	assert.Contains(t, s, "lib/Pipfile")
	assert.Contains(t, s, "line 12: demo pins a repository but no ref ["+lint.RuleVCSMissingRef+"]")
}

func TestJSONReporter(t *testing.T) {
	out, err := (&JSONReporter{}).Report(sampleIssues())
	require.NoError(t, err)

	var parsed jsonOutput
	require.NoError(t, json.Unmarshal(out, &parsed))

	assert.Equal(t, 3, parsed.Summary.Total)
	assert.Equal(t, 1, parsed.Summary.Errors)
	assert.Equal(t, 1, parsed.Summary.Warnings)
	assert.Equal(t, 1, parsed.Summary.Infos)
	require.Len(t, parsed.Issues, 3)
	assert.Equal(t, lint.RuleVCSMissingRef, parsed.Issues[1].RuleID)
	assert.Equal(t, "demo", parsed.Issues[1].Package)
	assert.Equal(t, 12, parsed.Issues[1].Line)
}

func TestJSONReporterEmpty(t *testing.T) {
	out, err := (&JSONReporter{}).Report(nil)
	require.NoError(t, err)

	var parsed jsonOutput
	require.NoError(t, json.Unmarshal(out, &parsed))
	assert.Equal(t, 0, parsed.Summary.Total)
	assert.NotNil(t, parsed.Issues)
}

func TestSARIFReporter(t *testing.T) {
	out, err := (&SARIFReporter{}).Report(sampleIssues())
	require.NoError(t, err)

	var parsed sarifReport
	require.NoError(t, json.Unmarshal(out, &parsed))

	assert.Equal(t, "2.1.0", parsed.Version)
	require.Len(t, parsed.Runs, 1)
	run := parsed.Runs[0]
	assert.Equal(t, "pipcheck", run.Tool.Driver.Name)

	// One rule per distinct rule ID, carrying the lint metadata
	require.Len(t, run.Tool.Driver.Rules, 3)
	rule, ok := lint.Get(lint.RuleVCSMissingRef)
	require.True(t, ok)
	assert.Equal(t, rule.Short, run.Tool.Driver.Rules[1].ShortDescription.Text)

	require.Len(t, run.Results, 3)
	result := run.Results[1]
	assert.Equal(t, lint.RuleVCSMissingRef, result.RuleID)
	assert.Equal(t, 1, result.RuleIndex)
	assert.Equal(t, "error", result.Level)
	require.Len(t, result.Locations, 1)
	assert.Equal(t, "app/Pipfile", result.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 12, result.Locations[0].PhysicalLocation.Region.StartLine)
	assert.NotEmpty(t, result.PartialFingerprints["primaryLocationLineHash"])
}

func TestSARIFLevel(t *testing.T) {
	assert.Equal(t, "error", sarifLevel(models.SeverityError))
	assert.Equal(t, "warning", sarifLevel(models.SeverityWarning))
	assert.Equal(t, "note", sarifLevel(models.SeverityInfo))
}
