package lint

import "github.com/pipcheck/pipcheck/internal/models"

// Rule IDs for static checks
const (
	RuleParseError            = "parse-error"
	RuleSourceMissing         = "source-missing"
	RuleSourceInvalidURL      = "source-invalid-url"
	RuleSourceInsecureURL     = "source-insecure-url"
	RuleSourceSSLDisabled     = "source-ssl-disabled"
	RuleSourceDuplicateName   = "source-duplicate-name"
	RulePackageDuplicate      = "package-duplicate"
	RuleSpecifierInvalid      = "specifier-invalid"
	RuleVCSMissingRepo        = "vcs-missing-repo"
	RuleVCSMissingRef         = "vcs-missing-ref"
	RuleVCSUnpinnedRef        = "vcs-unpinned-ref"
	RulePackageUnpinned       = "package-unpinned"
	RulePackageUnknownIndex   = "package-unknown-index"
	RuleRequiresInvalidPython = "requires-invalid-python"
	RuleLockOutOfSync         = "lock-out-of-sync"
)

// Rule IDs emitted by remote verification
const (
	RuleIndexUnreachable       = "index-unreachable"
	RulePackageNotFound        = "package-not-found"
	RuleSpecifierUnsatisfiable = "specifier-unsatisfiable"
	RuleVCSUnreachable         = "vcs-unreachable"
	RuleVCSRefNotFound         = "vcs-ref-not-found"
)

// Rule describes one check, its default severity and its documentation
type Rule struct {
	ID       string
	Severity models.Severity
	Short    string
	Help     string
}

var rules = []Rule{
	{RuleParseError, models.SeverityError,
		"Manifest file failed to parse",
		"The file is not valid TOML/JSON or does not have the expected shape."},
	{RuleSourceMissing, models.SeverityError,
		"No package index declared",
		"A manifest needs at least one [[source]] entry naming the index packages are fetched from."},
	{RuleSourceInvalidURL, models.SeverityError,
		"Index URL is not a well-formed absolute URL",
		"The source url field must be an absolute URL including scheme and host."},
	{RuleSourceInsecureURL, models.SeverityWarning,
		"Index URL does not use HTTPS",
		"Fetching packages over plain HTTP allows tampering in transit."},
	{RuleSourceSSLDisabled, models.SeverityWarning,
		"TLS verification is disabled for this index",
		"verify_ssl = false disables certificate checking for every download from this source."},
	{RuleSourceDuplicateName, models.SeverityError,
		"Two sources share the same name",
		"Requirements reference sources by name; duplicate names make the reference ambiguous."},
	{RulePackageDuplicate, models.SeverityError,
		"Package declared twice within one group",
		"Package names are unique per group; the index treats differently spelled names like Foo_bar and foo-bar as the same project."},
	{RuleSpecifierInvalid, models.SeverityError,
		"Version constraint does not parse",
		"Constraints are comma-separated clauses such as >=2.0,<3.0, ==1.2.*, or the wildcard *."},
	{RuleVCSMissingRepo, models.SeverityError,
		"VCS-pinned entry has no repository URL",
		"A pinned dependency needs both a git repository URL and a commit reference."},
	{RuleVCSMissingRef, models.SeverityError,
		"VCS-pinned entry has no commit reference",
		"A pinned dependency needs both a git repository URL and a commit reference."},
	{RuleVCSUnpinnedRef, models.SeverityWarning,
		"VCS ref is not an immutable commit hash",
		"Branch and tag refs move; pinning to a commit hash makes installs reproducible."},
	{RulePackageUnpinned, models.SeverityInfo,
		"Runtime package accepts any version",
		"A wildcard constraint on a runtime dependency installs whatever the index currently serves."},
	{RulePackageUnknownIndex, models.SeverityError,
		"Requirement references an undeclared source",
		"The index field must match the name of a [[source]] entry."},
	{RuleRequiresInvalidPython, models.SeverityWarning,
		"requires.python_version is not a valid version",
		"python_version must be a plain version string like 3.11."},
	{RuleLockOutOfSync, models.SeverityWarning,
		"Lockfile does not cover the manifest",
		"A requirement is missing from the adjacent Pipfile.lock; regenerate the lockfile."},

	{RuleIndexUnreachable, models.SeverityError,
		"Package index did not answer",
		"The declared index URL could not be reached."},
	{RulePackageNotFound, models.SeverityError,
		"Package does not exist on its index",
		"The index has no project under this (normalized) name."},
	{RuleSpecifierUnsatisfiable, models.SeverityError,
		"No published version satisfies the constraint",
		"Every version the index currently serves falls outside the declared constraint."},
	{RuleVCSUnreachable, models.SeverityError,
		"Pinned repository did not answer",
		"The git repository URL could not be reached."},
	{RuleVCSRefNotFound, models.SeverityError,
		"Pinned ref is not present in the repository",
		"The repository does not advertise this branch, tag, or commit."},
}

var ruleIndex = buildRuleIndex()

func buildRuleIndex() map[string]Rule {
	index := make(map[string]Rule, len(rules))
	for _, r := range rules {
		index[r.ID] = r
	}
	return index
}

// AllRules returns every known rule
func AllRules() []Rule {
	return rules
}

// Get looks up a rule by ID
func Get(id string) (Rule, bool) {
	r, ok := ruleIndex[id]
	return r, ok
}
