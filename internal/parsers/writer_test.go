package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipcheck/pipcheck/internal/models"
)

func TestFormatRoundTrip(t *testing.T) {
	p := &PipfileParser{}
	doc, err := p.Parse("Pipfile", []byte(samplePipfile))
	require.NoError(t, err)

	formatted := Format(doc.Manifest)

	reparsed, err := p.Parse("Pipfile", formatted)
	require.NoError(t, err)

	assert.Equal(t, doc.Manifest.Sources, reparsed.Manifest.Sources)
	assert.Equal(t, doc.Manifest.Requires, reparsed.Manifest.Requires)
	require.Len(t, reparsed.Manifest.Packages, len(doc.Manifest.Packages))
	require.Len(t, reparsed.Manifest.DevPackages, len(doc.Manifest.DevPackages))

	for i, want := range doc.Manifest.DevPackages {
		got := reparsed.Manifest.DevPackages[i]
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Specifier, got.Specifier)
		assert.Equal(t, want.Git, got.Git)
		assert.Equal(t, want.Ref, got.Ref)
	}
}

func TestFormatIdempotent(t *testing.T) {
	p := &PipfileParser{}
	doc, err := p.Parse("Pipfile", []byte(samplePipfile))
	require.NoError(t, err)

	once := Format(doc.Manifest)
	reparsed, err := p.Parse("Pipfile", once)
	require.NoError(t, err)
	twice := Format(reparsed.Manifest)

	assert.Equal(t, string(once), string(twice))
}

func TestFormatRendering(t *testing.T) {
	m := &models.Manifest{
		Sources: []models.Source{
			{Name: "pypi", URL: "https://pypi.org/simple", VerifySSL: true},
		},
		Packages: []models.Requirement{
			{Name: "Zebra", Specifier: ">=1.0"},
			{Name: "alpha", Specifier: ""},
		},
		DevPackages: []models.Requirement{
			{Name: "pinned", Git: "https://example.com/pinned.git", Ref: "deadbeefcafe"},
			{Name: "fancy", Specifier: ">=2.0", Extras: []string{"tls"}},
		},
		Requires: models.Requires{PythonVersion: "3.11"},
		Scripts:  map[string]string{"test": "pytest", "build": "python -m build"},
	}

	out := string(Format(m))

	assert.Contains(t, out, "[[source]]\nurl = \"https://pypi.org/simple\"\nverify_ssl = true\nname = \"pypi\"\n")
	// Empty specifier renders as the wildcard, and alpha sorts before Zebra
	assert.Contains(t, out, "[packages]\nalpha = \"*\"\nZebra = \">=1.0\"\n")
	assert.Contains(t, out, "fancy = {version = \">=2.0\", extras = [\"tls\"]}")
	assert.Contains(t, out, "pinned = {git = \"https://example.com/pinned.git\", ref = \"deadbeefcafe\"}")
	assert.Contains(t, out, "[requires]\npython_version = \"3.11\"\n")
	// Scripts are sorted by name
	assert.Contains(t, out, "[scripts]\nbuild = \"python -m build\"\ntest = \"pytest\"\n")
}
