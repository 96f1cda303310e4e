package models

// Group identifies which requirement table of the manifest an entry came from
type Group string

const (
	GroupPackages    Group = "packages"
	GroupDevPackages Group = "dev-packages"
)

// AnyVersion is the wildcard specifier accepting every published version
const AnyVersion = "*"

// Source describes a package index the manifest resolves against
type Source struct {
	Name      string
	URL       string
	VerifySSL bool
}

// Requirement is a single declared dependency. It carries either a version
// specifier (possibly the wildcard) or a VCS pin (Git + Ref), never both.
type Requirement struct {
	Name      string
	Group     Group
	Specifier string // e.g. ">=3.3", "*"; empty for VCS pins

	// VCS pin, overriding normal version resolution
	Git      string // repository URL
	Ref      string // commit reference
	Editable bool

	Extras  []string
	Markers string
	Index   string // name of the source this requirement resolves against

	SourceFile string // manifest file this requirement was found in
	Line       int    // line number in the manifest (if recoverable)
}

// IsVCS returns true if this requirement is pinned to a version-control ref
func (r Requirement) IsVCS() bool {
	return r.Git != "" || r.Ref != ""
}

// String returns a human-readable representation
func (r Requirement) String() string {
	if r.IsVCS() {
		return r.Name + " @ " + r.Git + "#" + r.Ref
	}
	if r.Specifier == "" || r.Specifier == AnyVersion {
		return r.Name
	}
	return r.Name + " " + r.Specifier
}

// Requires holds the interpreter constraints of the manifest
type Requires struct {
	PythonVersion     string
	PythonFullVersion string
}

// Manifest is a parsed Pipfile
type Manifest struct {
	Path        string
	Sources     []Source
	Packages    []Requirement
	DevPackages []Requirement
	Requires    Requires
	Scripts     map[string]string
}

// AllRequirements returns runtime and development requirements in order
func (m *Manifest) AllRequirements() []Requirement {
	reqs := make([]Requirement, 0, len(m.Packages)+len(m.DevPackages))
	reqs = append(reqs, m.Packages...)
	reqs = append(reqs, m.DevPackages...)
	return reqs
}

// SourceByName looks up a source by its declared name
func (m *Manifest) SourceByName(name string) (Source, bool) {
	for _, s := range m.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

// LockedRequirement is one resolved entry of a Pipfile.lock group
type LockedRequirement struct {
	Version string
	Hashes  []string
	Git     string
	Ref     string
	Index   string
	Markers string
}

// LockMeta is the _meta section of a Pipfile.lock
type LockMeta struct {
	Hash        string
	PipfileSpec int
	Sources     []Source
	Requires    Requires
}

// Lockfile is a parsed Pipfile.lock
type Lockfile struct {
	Path    string
	Meta    LockMeta
	Default map[string]LockedRequirement
	Develop map[string]LockedRequirement
}

// Group returns the locked entries matching a manifest group
func (l *Lockfile) Group(g Group) map[string]LockedRequirement {
	if g == GroupDevPackages {
		return l.Develop
	}
	return l.Default
}

// Document is one parsed manifest-family file. Exactly one of Manifest and
// Lockfile is set, depending on which file the parser matched.
type Document struct {
	Path     string
	Manifest *Manifest
	Lockfile *Lockfile
}
