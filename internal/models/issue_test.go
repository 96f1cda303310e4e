package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	for _, s := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		got, err := ParseSeverity(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	for _, s := range []string{"", "fatal", "ERROR", "warn"} {
		_, err := ParseSeverity(s)
		assert.Error(t, err, "severity %q", s)
	}
}

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityError.Rank(), SeverityWarning.Rank())
	assert.Greater(t, SeverityWarning.Rank(), SeverityInfo.Rank())
	assert.Greater(t, SeverityInfo.Rank(), Severity("bogus").Rank())
}

func TestIssueString(t *testing.T) {
	i := Issue{
		RuleID:   "package-duplicate",
		Severity: SeverityError,
		Message:  "declared twice",
		File:     "Pipfile",
		Line:     9,
	}
	assert.Equal(t, "Pipfile:9: error: [package-duplicate] declared twice", i.String())

	i.Line = 0
	assert.Equal(t, "Pipfile: error: [package-duplicate] declared twice", i.String())
}
