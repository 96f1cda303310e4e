package parsers

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pipcheck/pipcheck/internal/models"
	"github.com/pipcheck/pipcheck/internal/pep440"
)

// bareKeyPattern matches keys that need no quoting in TOML
var bareKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Format renders a manifest in canonical form: fixed section order,
// requirements sorted by normalized name, string form for plain
// constraints and inline tables for everything else.
func Format(m *models.Manifest) []byte {
	var sb strings.Builder

	for i, src := range m.Sources {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("[[source]]\n")
		fmt.Fprintf(&sb, "url = %s\n", strconv.Quote(src.URL))
		fmt.Fprintf(&sb, "verify_ssl = %t\n", src.VerifySSL)
		fmt.Fprintf(&sb, "name = %s\n", strconv.Quote(src.Name))
	}

	writeGroup(&sb, "[packages]", m.Packages)
	writeGroup(&sb, "[dev-packages]", m.DevPackages)

	if m.Requires.PythonVersion != "" || m.Requires.PythonFullVersion != "" {
		sb.WriteString("\n[requires]\n")
		if m.Requires.PythonVersion != "" {
			fmt.Fprintf(&sb, "python_version = %s\n", strconv.Quote(m.Requires.PythonVersion))
		}
		if m.Requires.PythonFullVersion != "" {
			fmt.Fprintf(&sb, "python_full_version = %s\n", strconv.Quote(m.Requires.PythonFullVersion))
		}
	}

	if len(m.Scripts) > 0 {
		sb.WriteString("\n[scripts]\n")
		names := make([]string, 0, len(m.Scripts))
		for name := range m.Scripts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "%s = %s\n", tomlKey(name), strconv.Quote(m.Scripts[name]))
		}
	}

	return []byte(sb.String())
}

func writeGroup(sb *strings.Builder, header string, reqs []models.Requirement) {
	sb.WriteString("\n" + header + "\n")

	sorted := make([]models.Requirement, len(reqs))
	copy(sorted, reqs)
	sort.Slice(sorted, func(i, j int) bool {
		return pep440.NormalizeName(sorted[i].Name) < pep440.NormalizeName(sorted[j].Name)
	})

	for _, req := range sorted {
		fmt.Fprintf(sb, "%s = %s\n", tomlKey(req.Name), requirementValue(req))
	}
}

// requirementValue renders a requirement as a quoted specifier or an
// inline table, matching the forms pipenv itself writes.
func requirementValue(req models.Requirement) string {
	plain := req.Git == "" && req.Ref == "" && !req.Editable &&
		len(req.Extras) == 0 && req.Markers == "" && req.Index == ""
	if plain {
		spec := req.Specifier
		if spec == "" {
			spec = models.AnyVersion
		}
		return strconv.Quote(spec)
	}

	var fields []string
	if req.Specifier != "" {
		fields = append(fields, "version = "+strconv.Quote(req.Specifier))
	}
	if len(req.Extras) > 0 {
		quoted := make([]string, len(req.Extras))
		for i, e := range req.Extras {
			quoted[i] = strconv.Quote(e)
		}
		fields = append(fields, "extras = ["+strings.Join(quoted, ", ")+"]")
	}
	if req.Git != "" {
		fields = append(fields, "git = "+strconv.Quote(req.Git))
	}
	if req.Ref != "" {
		fields = append(fields, "ref = "+strconv.Quote(req.Ref))
	}
	if req.Editable {
		fields = append(fields, "editable = true")
	}
	if req.Markers != "" {
		fields = append(fields, "markers = "+strconv.Quote(req.Markers))
	}
	if req.Index != "" {
		fields = append(fields, "index = "+strconv.Quote(req.Index))
	}

	return "{" + strings.Join(fields, ", ") + "}"
}

func tomlKey(name string) string {
	if bareKeyPattern.MatchString(name) {
		return name
	}
	return strconv.Quote(name)
}
