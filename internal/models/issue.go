package models

import "fmt"

// Severity classifies how serious an issue is
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity converts a string into one of the known severity levels
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(s); sev {
	case SeverityError, SeverityWarning, SeverityInfo:
		return sev, nil
	}
	return "", fmt.Errorf("unknown severity %q (expected error, warning, or info)", s)
}

// Rank orders severities, highest first
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	}
	return 0
}

// Issue is a single check finding against a manifest
type Issue struct {
	RuleID   string
	Severity Severity
	Message  string
	File     string
	Line     int    // line number in File (if known)
	Package  string // requirement the issue refers to (if any)
}

// String returns a human-readable representation
func (i Issue) String() string {
	loc := i.File
	if i.Line > 0 {
		loc = fmt.Sprintf("%s:%d", i.File, i.Line)
	}
	return fmt.Sprintf("%s: %s: [%s] %s", loc, i.Severity, i.RuleID, i.Message)
}
