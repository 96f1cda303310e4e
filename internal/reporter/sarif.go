package reporter

import (
	"encoding/json"
	"fmt"

	"github.com/pipcheck/pipcheck/internal/lint"
	"github.com/pipcheck/pipcheck/internal/models"
)

// SARIFReporter outputs issues in SARIF format for GitHub Code Scanning
type SARIFReporter struct{}

// SARIF structures
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	ShortDescription sarifText       `json:"shortDescription"`
	FullDescription  sarifText       `json:"fullDescription"`
	Help             sarifText       `json:"help"`
	DefaultConfig    sarifRuleConfig `json:"defaultConfiguration"`
	Properties       sarifProperties `json:"properties"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifRuleConfig struct {
	Level string `json:"level"`
}

type sarifProperties struct {
	Tags []string `json:"tags"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             sarifText         `json:"message"`
	Locations           []sarifLocation   `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

// sarifLevel maps issue severities to SARIF levels
func sarifLevel(s models.Severity) string {
	switch s {
	case models.SeverityError:
		return "error"
	case models.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

// Report generates SARIF output for the given issues
func (r *SARIFReporter) Report(issues []models.Issue) ([]byte, error) {
	rules, ruleIndexMap := r.buildRules(issues)

	report := sarifReport{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:           "pipcheck",
					Version:        "1.0.0",
					InformationURI: "https://github.com/pipcheck/pipcheck",
					Rules:          rules,
				},
			},
			Results: r.buildResults(issues, ruleIndexMap),
		}},
	}

	return json.MarshalIndent(report, "", "  ")
}

func (r *SARIFReporter) buildRules(issues []models.Issue) ([]sarifRule, map[string]int) {
	var rules []sarifRule
	ruleIndexMap := make(map[string]int)

	for _, issue := range issues {
		if _, exists := ruleIndexMap[issue.RuleID]; exists {
			continue
		}

		short, help := issue.RuleID, ""
		if rule, ok := lint.Get(issue.RuleID); ok {
			short = rule.Short
			help = rule.Help
		}

		ruleIndexMap[issue.RuleID] = len(rules)
		rules = append(rules, sarifRule{
			ID:               issue.RuleID,
			Name:             issue.RuleID,
			ShortDescription: sarifText{Text: short},
			FullDescription:  sarifText{Text: short},
			Help:             sarifText{Text: help},
			DefaultConfig:    sarifRuleConfig{Level: sarifLevel(issue.Severity)},
			Properties: sarifProperties{
				Tags: []string{"manifest", "dependencies"},
			},
		})
	}

	return rules, ruleIndexMap
}

func (r *SARIFReporter) buildResults(issues []models.Issue, ruleIndexMap map[string]int) []sarifResult {
	results := make([]sarifResult, 0, len(issues))

	for _, issue := range issues {
		location := sarifLocation{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifact{
					URI: issue.File,
				},
			},
		}
		if issue.Line > 0 {
			location.PhysicalLocation.Region = sarifRegion{
				StartLine: issue.Line,
			}
		}

		results = append(results, sarifResult{
			RuleID:    issue.RuleID,
			RuleIndex: ruleIndexMap[issue.RuleID],
			Level:     sarifLevel(issue.Severity),
			Message:   sarifText{Text: issue.Message},
			Locations: []sarifLocation{location},
			PartialFingerprints: map[string]string{
				"primaryLocationLineHash": fmt.Sprintf("%s:%s:%s",
					issue.File, issue.Package, issue.RuleID),
			},
		})
	}

	return results
}
