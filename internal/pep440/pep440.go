// Package pep440 handles Python package names and version specifiers as
// they appear in Pipfile manifests.
package pep440

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// namePattern collapses runs of separator characters (PEP 503)
var namePattern = regexp.MustCompile(`[-_.]+`)

// NormalizeName returns the canonical form of a package name.
// PyPI treats "Foo_Bar" and "foo-bar" as the same project.
func NormalizeName(name string) string {
	return strings.ToLower(namePattern.ReplaceAllString(name, "-"))
}

// clausePattern matches a single specifier clause like ==1.2.3 or >= 2.0
var clausePattern = regexp.MustCompile(`^(===|==|!=|~=|>=|<=|>|<)\s*([\w.!+*-]+)$`)

// commitPattern matches an abbreviated or full hex commit hash
var commitPattern = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// IsCommitRef returns true if ref looks like an immutable commit hash
// rather than a branch or tag name.
func IsCommitRef(ref string) bool {
	return commitPattern.MatchString(ref)
}

// Clause is one operator/version pair of a specifier
type Clause struct {
	Op      string
	Version string
}

// Specifier is a parsed version constraint expression. The wildcard "*"
// accepts any version and carries no clauses.
type Specifier struct {
	Raw     string
	Any     bool
	Clauses []Clause
}

// ParseSpecifier parses a version constraint expression such as
// ">=3.3", "==1.2.*" or ">=2.0,<3.0". The wildcard "*" is accepted.
func ParseSpecifier(raw string) (Specifier, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Specifier{}, fmt.Errorf("empty version specifier")
	}
	if trimmed == "*" {
		return Specifier{Raw: raw, Any: true}, nil
	}

	spec := Specifier{Raw: raw}
	for _, part := range strings.Split(trimmed, ",") {
		part = strings.TrimSpace(part)
		matches := clausePattern.FindStringSubmatch(part)
		if matches == nil {
			return Specifier{}, fmt.Errorf("invalid specifier clause %q", part)
		}

		clause := Clause{Op: matches[1], Version: matches[2]}
		if err := clause.validate(); err != nil {
			return Specifier{}, err
		}
		spec.Clauses = append(spec.Clauses, clause)
	}

	return spec, nil
}

func (c Clause) validate() error {
	if strings.Contains(c.Version, "*") {
		// Trailing-wildcard versions are only meaningful for (in)equality
		if c.Op != "==" && c.Op != "!=" {
			return fmt.Errorf("wildcard version not allowed with operator %q", c.Op)
		}
		if !strings.HasSuffix(c.Version, ".*") || strings.Count(c.Version, "*") != 1 {
			return fmt.Errorf("invalid wildcard version %q", c.Version)
		}
		if _, err := ParseVersion(strings.TrimSuffix(c.Version, ".*")); err != nil {
			return fmt.Errorf("invalid wildcard version %q", c.Version)
		}
		return nil
	}

	if c.Op == "~=" && len(releaseSegments(c.Version)) < 2 {
		return fmt.Errorf("~= requires at least two release segments, got %q", c.Version)
	}

	if c.Op == "===" {
		// Arbitrary equality compares raw strings, anything goes
		return nil
	}

	if _, err := ParseVersion(c.Version); err != nil {
		return fmt.Errorf("invalid version in clause %q%s: %w", c.Op, c.Version, err)
	}
	return nil
}

// suffixPattern rewrites PEP 440 pre/post/dev separators into a form
// hashicorp/go-version can parse ("2.0.dev1" -> "2.0-dev1")
var suffixPattern = regexp.MustCompile(`[._-](dev|post|alpha|beta|preview|pre|rc|a|b|c)\.?`)

// epochPattern matches a PEP 440 epoch prefix like "1!"
var epochPattern = regexp.MustCompile(`^[0-9]+!`)

// ParseVersion parses a published version string. PEP 440 forms are
// canonicalized best-effort before being handed to go-version.
func ParseVersion(s string) (*goversion.Version, error) {
	canon := strings.ToLower(strings.TrimSpace(s))
	canon = epochPattern.ReplaceAllString(canon, "")
	canon = strings.ReplaceAll(canon, "_", ".")
	canon = suffixPattern.ReplaceAllString(canon, "-$1")
	return goversion.NewVersion(canon)
}

// Check reports whether the published version verStr satisfies the specifier
func (s Specifier) Check(verStr string) (bool, error) {
	if s.Any {
		return true, nil
	}
	v, err := ParseVersion(verStr)
	if err != nil {
		return false, err
	}
	for _, c := range s.Clauses {
		ok, err := c.match(v, verStr)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// MatchesAny reports whether any of the published versions satisfies the
// specifier. Versions that fail to parse are skipped.
func (s Specifier) MatchesAny(versions []string) bool {
	for _, v := range versions {
		if ok, err := s.Check(v); err == nil && ok {
			return true
		}
	}
	return false
}

func (c Clause) match(v *goversion.Version, verStr string) (bool, error) {
	if c.Op == "===" {
		return strings.TrimSpace(verStr) == c.Version, nil
	}

	if strings.HasSuffix(c.Version, ".*") {
		ok := hasReleasePrefix(verStr, strings.TrimSuffix(c.Version, ".*"))
		if c.Op == "!=" {
			return !ok, nil
		}
		return ok, nil
	}

	cv, err := ParseVersion(c.Version)
	if err != nil {
		return false, err
	}

	switch c.Op {
	case "==":
		return v.Equal(cv), nil
	case "!=":
		return !v.Equal(cv), nil
	case ">=":
		return v.GreaterThanOrEqual(cv), nil
	case "<=":
		return v.LessThanOrEqual(cv), nil
	case ">":
		return v.GreaterThan(cv), nil
	case "<":
		return v.LessThan(cv), nil
	case "~=":
		if !v.GreaterThanOrEqual(cv) {
			return false, nil
		}
		// The upper bound is derived from the release segments alone;
		// "~=2.2.post3" means >=2.2.post3, ==2.*
		rel := releaseSegments(c.Version)
		return matchesSegmentPrefix(verStr, rel[:len(rel)-1]), nil
	}

	return false, fmt.Errorf("unsupported operator %q", c.Op)
}

// leadingDigits captures the numeric part of a release chunk that carries
// an attached suffix, as in the "2rc1" of "1.2rc1"
var leadingDigits = regexp.MustCompile(`^[0-9]+`)

// releaseSegments extracts the leading numeric release segments of a
// version string, stopping where the release ends. A pre/post/dev suffix
// glued onto the last chunk still contributes its numeric part.
func releaseSegments(s string) []int {
	s = epochPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
	var segments []int
	for _, chunk := range strings.Split(s, ".") {
		n, err := strconv.Atoi(chunk)
		if err != nil {
			if digits := leadingDigits.FindString(chunk); digits != "" {
				if n, err := strconv.Atoi(digits); err == nil {
					segments = append(segments, n)
				}
			}
			break
		}
		segments = append(segments, n)
	}
	return segments
}

// hasReleasePrefix reports whether verStr's release segments start with
// those of prefix, padding the version with zeros ("1.2" matches "1.2.0")
func hasReleasePrefix(verStr, prefix string) bool {
	return matchesSegmentPrefix(verStr, releaseSegments(prefix))
}

func matchesSegmentPrefix(verStr string, prefix []int) bool {
	vseg := releaseSegments(verStr)
	for i, p := range prefix {
		v := 0
		if i < len(vseg) {
			v = vseg[i]
		}
		if v != p {
			return false
		}
	}
	return true
}
