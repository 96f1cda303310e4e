package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pipcheck/pipcheck/internal/models"
	"github.com/xeipuuv/gojsonschema"
)

// PipfileLockParser parses Pipfile.lock files
type PipfileLockParser struct{}

// CanParse returns true for Pipfile.lock files
func (p *PipfileLockParser) CanParse(filename string) bool {
	return filename == "Pipfile.lock"
}

// lockSchema is the structural schema a Pipfile.lock must satisfy
const lockSchema = `{
  "type": "object",
  "required": ["_meta"],
  "properties": {
    "_meta": {
      "type": "object",
      "properties": {
        "hash": {"type": "object"},
        "pipfile-spec": {"type": "integer"},
        "requires": {"type": "object"},
        "sources": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["url"],
            "properties": {
              "name": {"type": "string"},
              "url": {"type": "string"},
              "verify_ssl": {"type": "boolean"}
            }
          }
        }
      }
    },
    "default": {"type": "object"},
    "develop": {"type": "object"}
  }
}`

// lockfileJSON represents the structure of Pipfile.lock
type lockfileJSON struct {
	Meta struct {
		Hash        map[string]string `json:"hash"`
		PipfileSpec int               `json:"pipfile-spec"`
		Requires    struct {
			PythonVersion     string `json:"python_version"`
			PythonFullVersion string `json:"python_full_version"`
		} `json:"requires"`
		Sources []struct {
			Name      string `json:"name"`
			URL       string `json:"url"`
			VerifySSL bool   `json:"verify_ssl"`
		} `json:"sources"`
	} `json:"_meta"`
	Default map[string]lockedJSON `json:"default"`
	Develop map[string]lockedJSON `json:"develop"`
}

type lockedJSON struct {
	Version string   `json:"version"`
	Hashes  []string `json:"hashes"`
	Git     string   `json:"git"`
	Ref     string   `json:"ref"`
	Index   string   `json:"index"`
	Markers string   `json:"markers"`
}

// Parse decodes a Pipfile.lock into a Document
func (p *PipfileLockParser) Parse(filepath string, content []byte) (*models.Document, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(lockSchema),
		gojsonschema.NewBytesLoader(content),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid Pipfile.lock: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("invalid Pipfile.lock: %s", strings.Join(problems, "; "))
	}

	var file lockfileJSON
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("invalid Pipfile.lock: %w", err)
	}

	lock := &models.Lockfile{
		Path:    filepath,
		Default: lockedGroup(file.Default),
		Develop: lockedGroup(file.Develop),
		Meta: models.LockMeta{
			Hash:        lockHash(file.Meta.Hash),
			PipfileSpec: file.Meta.PipfileSpec,
			Requires: models.Requires{
				PythonVersion:     file.Meta.Requires.PythonVersion,
				PythonFullVersion: file.Meta.Requires.PythonFullVersion,
			},
		},
	}

	for _, src := range file.Meta.Sources {
		lock.Meta.Sources = append(lock.Meta.Sources, models.Source{
			Name:      src.Name,
			URL:       src.URL,
			VerifySSL: src.VerifySSL,
		})
	}

	return &models.Document{Path: filepath, Lockfile: lock}, nil
}

func lockedGroup(entries map[string]lockedJSON) map[string]models.LockedRequirement {
	group := make(map[string]models.LockedRequirement, len(entries))
	for name, e := range entries {
		group[name] = models.LockedRequirement{
			Version: e.Version,
			Hashes:  e.Hashes,
			Git:     e.Git,
			Ref:     e.Ref,
			Index:   e.Index,
			Markers: e.Markers,
		}
	}
	return group
}

// lockHash flattens the algorithm -> digest map to "algo:digest" form
func lockHash(hash map[string]string) string {
	for algo, digest := range hash {
		return algo + ":" + digest
	}
	return ""
}
