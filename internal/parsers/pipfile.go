package parsers

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pipcheck/pipcheck/internal/models"
	"github.com/pipcheck/pipcheck/internal/pep440"
)

// PipfileParser parses Pipfile manifests
type PipfileParser struct{}

// CanParse returns true for Pipfile files
func (p *PipfileParser) CanParse(filename string) bool {
	return filename == "Pipfile"
}

// pipfileTOML represents the structure of a Pipfile
type pipfileTOML struct {
	Source      []sourceTOML           `toml:"source"`
	Packages    map[string]interface{} `toml:"packages"`
	DevPackages map[string]interface{} `toml:"dev-packages"`
	Requires    requiresTOML           `toml:"requires"`
	Scripts     map[string]string      `toml:"scripts"`
}

type sourceTOML struct {
	Name      string `toml:"name"`
	URL       string `toml:"url"`
	VerifySSL *bool  `toml:"verify_ssl"`
}

type requiresTOML struct {
	PythonVersion     string `toml:"python_version"`
	PythonFullVersion string `toml:"python_full_version"`
}

// Parse decodes a Pipfile into a Document
func (p *PipfileParser) Parse(filepath string, content []byte) (*models.Document, error) {
	var file pipfileTOML
	if err := toml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("invalid Pipfile: %w", err)
	}

	manifest := &models.Manifest{
		Path:    filepath,
		Scripts: file.Scripts,
		Requires: models.Requires{
			PythonVersion:     file.Requires.PythonVersion,
			PythonFullVersion: file.Requires.PythonFullVersion,
		},
	}

	for _, src := range file.Source {
		verify := true
		if src.VerifySSL != nil {
			verify = *src.VerifySSL
		}
		manifest.Sources = append(manifest.Sources, models.Source{
			Name:      src.Name,
			URL:       src.URL,
			VerifySSL: verify,
		})
	}

	lines := keyLines(content)
	manifest.Packages = requirementsFromTable(file.Packages, models.GroupPackages, filepath, lines)
	manifest.DevPackages = requirementsFromTable(file.DevPackages, models.GroupDevPackages, filepath, lines)

	return &models.Document{Path: filepath, Manifest: manifest}, nil
}

// requirementsFromTable converts one requirement table into sorted Requirements
func requirementsFromTable(table map[string]interface{}, group models.Group, filepath string, lines map[models.Group]map[string]int) []models.Requirement {
	reqs := make([]models.Requirement, 0, len(table))
	for name, val := range table {
		req := requirementFromValue(name, val)
		req.Group = group
		req.SourceFile = filepath
		if groupLines, ok := lines[group]; ok {
			req.Line = groupLines[name]
		}
		reqs = append(reqs, req)
	}

	// TOML map iteration order is random; keep output deterministic
	sort.Slice(reqs, func(i, j int) bool {
		ni, nj := pep440.NormalizeName(reqs[i].Name), pep440.NormalizeName(reqs[j].Name)
		if ni != nj {
			return ni < nj
		}
		return reqs[i].Name < reqs[j].Name
	})
	return reqs
}

// requirementFromValue converts one table entry. A requirement value is
// either a bare specifier string or a sub-table with version/git/ref keys.
func requirementFromValue(name string, val interface{}) models.Requirement {
	req := models.Requirement{Name: name}

	switch v := val.(type) {
	case string:
		req.Specifier = v
	case map[string]interface{}:
		if ver, ok := v["version"].(string); ok {
			req.Specifier = ver
		}
		if git, ok := v["git"].(string); ok {
			req.Git = git
		}
		if ref, ok := v["ref"].(string); ok {
			req.Ref = ref
		}
		if editable, ok := v["editable"].(bool); ok {
			req.Editable = editable
		}
		if markers, ok := v["markers"].(string); ok {
			req.Markers = markers
		}
		if index, ok := v["index"].(string); ok {
			req.Index = index
		}
		if extras, ok := v["extras"].([]interface{}); ok {
			for _, e := range extras {
				if s, ok := e.(string); ok {
					req.Extras = append(req.Extras, s)
				}
			}
		}
	default:
		req.Specifier = fmt.Sprintf("%v", v)
	}

	return req
}

// tablePattern matches a TOML table header line
var tablePattern = regexp.MustCompile(`^\s*\[+\s*([^\]\s]+)\s*\]+`)

// keyPattern matches a bare or quoted key assignment
var keyPattern = regexp.MustCompile(`^\s*(?:"([^"]+)"|'([^']+)'|([A-Za-z0-9._-]+))\s*=`)

// keyLines recovers line numbers for requirement keys by scanning the raw
// text. TOML decoding does not report positions, so this is best-effort.
func keyLines(content []byte) map[models.Group]map[string]int {
	lines := map[models.Group]map[string]int{
		models.GroupPackages:    {},
		models.GroupDevPackages: {},
	}

	var current models.Group
	for i, line := range strings.Split(string(content), "\n") {
		if matches := tablePattern.FindStringSubmatch(line); matches != nil {
			switch matches[1] {
			case string(models.GroupPackages):
				current = models.GroupPackages
			case string(models.GroupDevPackages):
				current = models.GroupDevPackages
			default:
				current = ""
			}
			continue
		}
		if current == "" {
			continue
		}
		if matches := keyPattern.FindStringSubmatch(line); matches != nil {
			key := matches[1] + matches[2] + matches[3]
			if _, seen := lines[current][key]; !seen {
				lines[current][key] = i + 1
			}
		}
	}

	return lines
}
