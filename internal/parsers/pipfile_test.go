package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipcheck/pipcheck/internal/models"
)

const samplePipfile = `[[source]]
url = "https://pypi.org/simple"
verify_ssl = true
name = "pypi"

[packages]
pyyaml = "*"

[dev-packages]
pylint = "~=2.4"
pytest = ">=5.0"
pytest-cov = "*"
sphinx = "==3.2.1"
doorstop-demo = {git = "https://github.com/doorstop-dev/demo", ref = "2b8b7f1f6f97e3a2f233dbe6a5642b979f104766"}
wheel = "*"

[requires]
python_version = "3.8"
`

func TestPipfileParserCanParse(t *testing.T) {
	p := &PipfileParser{}
	assert.True(t, p.CanParse("Pipfile"))
	assert.False(t, p.CanParse("Pipfile.lock"))
	assert.False(t, p.CanParse("pyproject.toml"))
}

func TestPipfileParserParse(t *testing.T) {
	p := &PipfileParser{}
	doc, err := p.Parse("testdir/Pipfile", []byte(samplePipfile))
	require.NoError(t, err)
	require.NotNil(t, doc.Manifest)
	assert.Nil(t, doc.Lockfile)

	m := doc.Manifest
	require.Len(t, m.Sources, 1)
	assert.Equal(t, "pypi", m.Sources[0].Name)
	assert.Equal(t, "https://pypi.org/simple", m.Sources[0].URL)
	assert.True(t, m.Sources[0].VerifySSL)

	require.Len(t, m.Packages, 1)
	assert.Equal(t, "pyyaml", m.Packages[0].Name)
	assert.Equal(t, "*", m.Packages[0].Specifier)
	assert.Equal(t, models.GroupPackages, m.Packages[0].Group)
	assert.Equal(t, 7, m.Packages[0].Line)

	require.Len(t, m.DevPackages, 6)

	// Requirements come back sorted by normalized name
	names := make([]string, 0, len(m.DevPackages))
	for _, req := range m.DevPackages {
		names = append(names, req.Name)
	}
	assert.Equal(t, []string{"doorstop-demo", "pylint", "pytest", "pytest-cov", "sphinx", "wheel"}, names)

	pinned := m.DevPackages[0]
	assert.True(t, pinned.IsVCS())
	assert.Equal(t, "https://github.com/doorstop-dev/demo", pinned.Git)
	assert.Equal(t, "2b8b7f1f6f97e3a2f233dbe6a5642b979f104766", pinned.Ref)
	assert.Equal(t, 14, pinned.Line)

	assert.Equal(t, "3.8", m.Requires.PythonVersion)
}

func TestPipfileParserTableForm(t *testing.T) {
	content := `[[source]]
url = "https://pypi.org/simple"
name = "pypi"

[[source]]
url = "https://mirror.internal/simple"
verify_ssl = false
name = "internal"

[packages]
requests = {version = ">=2.28", extras = ["security", "socks"], markers = "python_version >= '3.7'"}
internal-tool = {version = "*", index = "internal"}
editable-pkg = {git = "https://example.com/pkg.git", ref = "main", editable = true}
`

	p := &PipfileParser{}
	doc, err := p.Parse("Pipfile", []byte(content))
	require.NoError(t, err)
	m := doc.Manifest

	// verify_ssl defaults to true when omitted
	require.Len(t, m.Sources, 2)
	assert.True(t, m.Sources[0].VerifySSL)
	assert.False(t, m.Sources[1].VerifySSL)

	require.Len(t, m.Packages, 3)

	byName := make(map[string]models.Requirement)
	for _, req := range m.Packages {
		byName[req.Name] = req
	}

	requests := byName["requests"]
	assert.Equal(t, ">=2.28", requests.Specifier)
	assert.Equal(t, []string{"security", "socks"}, requests.Extras)
	assert.Equal(t, "python_version >= '3.7'", requests.Markers)

	internal := byName["internal-tool"]
	assert.Equal(t, "internal", internal.Index)

	editable := byName["editable-pkg"]
	assert.True(t, editable.IsVCS())
	assert.True(t, editable.Editable)
	assert.Equal(t, "main", editable.Ref)
}

func TestPipfileParserInvalidTOML(t *testing.T) {
	p := &PipfileParser{}
	_, err := p.Parse("Pipfile", []byte("[packages\nbroken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid Pipfile")
}

func TestPipfileParserEmpty(t *testing.T) {
	p := &PipfileParser{}
	doc, err := p.Parse("Pipfile", []byte(""))
	require.NoError(t, err)
	assert.Empty(t, doc.Manifest.Sources)
	assert.Empty(t, doc.Manifest.Packages)
	assert.Empty(t, doc.Manifest.DevPackages)
}
