package models

import "time"

// Config holds configuration for the scanner
type Config struct {
	// Paths to scan for manifest files
	Paths []string

	// Output settings
	OutputFormat string // "terminal", "json", "sarif"
	OutputFile   string // Optional output file path

	// Behavior settings
	FailOn        Severity // Exit non-zero when issues at or above this severity exist
	NoFail        bool     // Exit 0 regardless of findings
	Remote        bool     // Run remote verification (index, packages, VCS refs)
	DisabledRules []string // Rule IDs to suppress

	// Cache settings
	CacheTTL time.Duration
	NoCache  bool

	// Network settings
	Timeout       time.Duration
	MaxConcurrent int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Paths:         []string{"."},
		OutputFormat:  "terminal",
		FailOn:        SeverityError,
		CacheTTL:      24 * time.Hour,
		Timeout:       30 * time.Second,
		MaxConcurrent: 8,
	}
}

// RuleDisabled reports whether a rule ID was suppressed in the configuration
func (c *Config) RuleDisabled(id string) bool {
	for _, d := range c.DisabledRules {
		if d == id {
			return true
		}
	}
	return false
}
