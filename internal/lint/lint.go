// Package lint implements the static checks run against parsed manifests.
package lint

import (
	"fmt"
	"net/url"

	"github.com/pipcheck/pipcheck/internal/models"
	"github.com/pipcheck/pipcheck/internal/pep440"
)

// Linter runs the static rules against a manifest
type Linter struct {
	config *models.Config
}

// New creates a Linter honoring the configured rule suppressions
func New(config *models.Config) *Linter {
	return &Linter{config: config}
}

// NewIssue builds an issue for a rule ID, with the rule's default severity.
// It returns false when the rule is unknown or suppressed by configuration.
func (l *Linter) NewIssue(id, file string, line int, pkg, message string) (models.Issue, bool) {
	rule, ok := Get(id)
	if !ok || l.config.RuleDisabled(id) {
		return models.Issue{}, false
	}
	return models.Issue{
		RuleID:   id,
		Severity: rule.Severity,
		Message:  message,
		File:     file,
		Line:     line,
		Package:  pkg,
	}, true
}

// Lint runs every static rule against the manifest. lock is the adjacent
// Pipfile.lock when one exists, nil otherwise.
func (l *Linter) Lint(m *models.Manifest, lock *models.Lockfile) []models.Issue {
	var issues []models.Issue
	issues = append(issues, l.checkSources(m)...)
	issues = append(issues, l.checkGroup(m, m.Packages)...)
	issues = append(issues, l.checkGroup(m, m.DevPackages)...)
	issues = append(issues, l.checkRequires(m)...)
	issues = append(issues, l.checkLock(m, lock)...)
	return issues
}

func (l *Linter) checkSources(m *models.Manifest) []models.Issue {
	var issues []models.Issue

	if len(m.Sources) == 0 {
		if issue, ok := l.NewIssue(RuleSourceMissing, m.Path, 0, "",
			"no [[source]] entry declared"); ok {
			issues = append(issues, issue)
		}
		return issues
	}

	seen := make(map[string]bool)
	for _, src := range m.Sources {
		if src.Name != "" {
			if seen[src.Name] {
				if issue, ok := l.NewIssue(RuleSourceDuplicateName, m.Path, 0, "",
					fmt.Sprintf("source name %q declared more than once", src.Name)); ok {
					issues = append(issues, issue)
				}
			}
			seen[src.Name] = true
		}

		parsed, err := url.Parse(src.URL)
		if err != nil || !parsed.IsAbs() || parsed.Host == "" {
			if issue, ok := l.NewIssue(RuleSourceInvalidURL, m.Path, 0, "",
				fmt.Sprintf("source %q has malformed url %q", src.Name, src.URL)); ok {
				issues = append(issues, issue)
			}
			continue
		}

		if parsed.Scheme != "https" {
			if issue, ok := l.NewIssue(RuleSourceInsecureURL, m.Path, 0, "",
				fmt.Sprintf("source %q uses %s instead of https", src.Name, parsed.Scheme)); ok {
				issues = append(issues, issue)
			}
		}

		if !src.VerifySSL {
			if issue, ok := l.NewIssue(RuleSourceSSLDisabled, m.Path, 0, "",
				fmt.Sprintf("source %q has verify_ssl = false", src.Name)); ok {
				issues = append(issues, issue)
			}
		}
	}

	return issues
}

func (l *Linter) checkGroup(m *models.Manifest, reqs []models.Requirement) []models.Issue {
	var issues []models.Issue

	firstSeen := make(map[string]string)
	for _, req := range reqs {
		normalized := pep440.NormalizeName(req.Name)
		if prev, dup := firstSeen[normalized]; dup {
			if issue, ok := l.NewIssue(RulePackageDuplicate, req.SourceFile, req.Line, req.Name,
				fmt.Sprintf("%q and %q are the same package (%s) within [%s]", prev, req.Name, normalized, req.Group)); ok {
				issues = append(issues, issue)
			}
		} else {
			firstSeen[normalized] = req.Name
		}

		issues = append(issues, l.checkRequirement(m, req)...)
	}

	return issues
}

func (l *Linter) checkRequirement(m *models.Manifest, req models.Requirement) []models.Issue {
	var issues []models.Issue

	if req.Index != "" {
		if _, ok := m.SourceByName(req.Index); !ok {
			if issue, ok := l.NewIssue(RulePackageUnknownIndex, req.SourceFile, req.Line, req.Name,
				fmt.Sprintf("%s references index %q which is not declared as a source", req.Name, req.Index)); ok {
				issues = append(issues, issue)
			}
		}
	}

	if req.IsVCS() {
		if req.Git == "" {
			if issue, ok := l.NewIssue(RuleVCSMissingRepo, req.SourceFile, req.Line, req.Name,
				fmt.Sprintf("%s is VCS-pinned but has no git repository URL", req.Name)); ok {
				issues = append(issues, issue)
			}
		}
		switch {
		case req.Ref == "":
			if issue, ok := l.NewIssue(RuleVCSMissingRef, req.SourceFile, req.Line, req.Name,
				fmt.Sprintf("%s is VCS-pinned but has no ref", req.Name)); ok {
				issues = append(issues, issue)
			}
		case !pep440.IsCommitRef(req.Ref):
			if issue, ok := l.NewIssue(RuleVCSUnpinnedRef, req.SourceFile, req.Line, req.Name,
				fmt.Sprintf("%s is pinned to %q, which is not an immutable commit hash", req.Name, req.Ref)); ok {
				issues = append(issues, issue)
			}
		}
		return issues
	}

	// Table-form entries may omit the version key; that means any version
	spec := req.Specifier
	if spec == "" {
		spec = models.AnyVersion
	}

	if _, err := pep440.ParseSpecifier(spec); err != nil {
		if issue, ok := l.NewIssue(RuleSpecifierInvalid, req.SourceFile, req.Line, req.Name,
			fmt.Sprintf("%s has invalid constraint %q: %v", req.Name, req.Specifier, err)); ok {
			issues = append(issues, issue)
		}
		return issues
	}

	if spec == models.AnyVersion && req.Group == models.GroupPackages {
		if issue, ok := l.NewIssue(RulePackageUnpinned, req.SourceFile, req.Line, req.Name,
			fmt.Sprintf("runtime package %s accepts any version", req.Name)); ok {
			issues = append(issues, issue)
		}
	}

	return issues
}

func (l *Linter) checkRequires(m *models.Manifest) []models.Issue {
	var issues []models.Issue

	for _, v := range []string{m.Requires.PythonVersion, m.Requires.PythonFullVersion} {
		if v == "" {
			continue
		}
		if _, err := pep440.ParseVersion(v); err != nil {
			if issue, ok := l.NewIssue(RuleRequiresInvalidPython, m.Path, 0, "",
				fmt.Sprintf("requires declares invalid python version %q", v)); ok {
				issues = append(issues, issue)
			}
		}
	}

	return issues
}

func (l *Linter) checkLock(m *models.Manifest, lock *models.Lockfile) []models.Issue {
	var issues []models.Issue

	if lock == nil {
		if len(m.AllRequirements()) > 0 {
			if issue, ok := l.NewIssue(RuleLockOutOfSync, m.Path, 0, "",
				"no Pipfile.lock found next to the manifest"); ok {
				issues = append(issues, issue)
			}
		}
		return issues
	}

	for _, req := range m.AllRequirements() {
		group := lock.Group(req.Group)
		if _, ok := group[pep440.NormalizeName(req.Name)]; ok {
			continue
		}
		// Older lockfiles keep the name as written
		if _, ok := group[req.Name]; ok {
			continue
		}
		if issue, ok := l.NewIssue(RuleLockOutOfSync, req.SourceFile, req.Line, req.Name,
			fmt.Sprintf("%s is not present in %s", req.Name, lock.Path)); ok {
			issues = append(issues, issue)
		}
	}

	return issues
}
