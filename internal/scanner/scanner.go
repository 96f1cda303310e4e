package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"

	"github.com/pipcheck/pipcheck/internal/cache"
	"github.com/pipcheck/pipcheck/internal/clients"
	"github.com/pipcheck/pipcheck/internal/lint"
	"github.com/pipcheck/pipcheck/internal/models"
	"github.com/pipcheck/pipcheck/internal/parsers"
	"github.com/pipcheck/pipcheck/internal/pep440"
)

// Scanner orchestrates manifest discovery, linting and verification
type Scanner struct {
	config  *models.Config
	parsers []parsers.Parser
	linter  *lint.Linter
	index   *clients.IndexClient
	git     *clients.GitClient
}

// New creates a new Scanner with the given configuration
func New(config *models.Config) (*Scanner, error) {
	// errgroup.SetLimit(0) would block every verification goroutine
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = models.DefaultConfig().MaxConcurrent
	}

	var c *cache.Cache
	var err error

	if !config.NoCache {
		c, err = cache.New("pipcheck", config.CacheTTL)
		if err != nil {
			// Non-fatal: continue without cache
			c = nil
		}
	}

	return &Scanner{
		config:  config,
		parsers: parsers.GetAllParsers(),
		linter:  lint.New(config),
		index:   clients.NewIndexClient(c, config.Timeout),
		git:     clients.NewGitClient(),
	}, nil
}

// Scan discovers manifests under the configured paths and runs every
// enabled check against them
func (s *Scanner) Scan(ctx context.Context) ([]models.Issue, error) {
	docs, issues, err := s.discoverDocuments()
	if err != nil {
		return nil, fmt.Errorf("failed to discover manifests: %w", err)
	}

	// Pair each Pipfile with the lockfile sitting next to it
	lockByDir := make(map[string]*models.Lockfile)
	for _, doc := range docs {
		if doc.Lockfile != nil {
			lockByDir[filepath.Dir(doc.Path)] = doc.Lockfile
		}
	}

	for _, doc := range docs {
		if doc.Manifest == nil {
			continue
		}
		lock := lockByDir[filepath.Dir(doc.Path)]
		issues = append(issues, s.linter.Lint(doc.Manifest, lock)...)

		if s.config.Remote {
			verifyIssues, err := s.verify(ctx, doc.Manifest)
			if err != nil {
				return nil, err
			}
			issues = append(issues, verifyIssues...)
		}
	}

	sortIssues(issues)
	return issues, nil
}

// Manifests parses and returns every Pipfile under the configured paths
func (s *Scanner) Manifests(ctx context.Context) ([]*models.Manifest, error) {
	docs, _, err := s.discoverDocuments()
	if err != nil {
		return nil, err
	}

	var manifests []*models.Manifest
	for _, doc := range docs {
		if doc.Manifest != nil {
			manifests = append(manifests, doc.Manifest)
		}
	}
	return manifests, nil
}

// discoverDocuments walks the configured paths and parses manifest files.
// Parse failures become issues rather than aborting the walk.
func (s *Scanner) discoverDocuments() ([]*models.Document, []models.Issue, error) {
	var docs []*models.Document
	var issues []models.Issue

	record := func(path string) {
		doc, err := s.parseFile(path)
		if err != nil {
			if issue, ok := s.linter.NewIssue(lint.RuleParseError, path, 0, "", err.Error()); ok {
				issues = append(issues, issue)
			}
			return
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}

	for _, path := range s.config.Paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}

		if !info.IsDir() {
			record(path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			// Skip common non-source directories
			if d.IsDir() {
				name := d.Name()
				if name == "node_modules" || name == ".git" || name == "vendor" ||
					name == "__pycache__" || name == ".venv" || name == "venv" ||
					name == ".tox" {
					return filepath.SkipDir
				}
				return nil
			}

			record(p)
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}

	return docs, issues, nil
}

// parseFile attempts to parse a file with any matching parser
func (s *Scanner) parseFile(path string) (*models.Document, error) {
	filename := filepath.Base(path)

	for _, parser := range s.parsers {
		if parser.CanParse(filename) {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return parser.Parse(path, content)
		}
	}

	return nil, nil // No matching parser
}

// verify runs the remote checks for one manifest: index reachability,
// package existence, constraint satisfiability and VCS ref resolution
func (s *Scanner) verify(ctx context.Context, m *models.Manifest) ([]models.Issue, error) {
	log := clog.FromContext(ctx)

	var mu sync.Mutex
	var issues []models.Issue
	add := func(id, file string, line int, pkg, msg string) {
		if issue, ok := s.linter.NewIssue(id, file, line, pkg, msg); ok {
			mu.Lock()
			issues = append(issues, issue)
			mu.Unlock()
		}
	}

	reachable := make(map[string]bool, len(m.Sources))
	for _, src := range m.Sources {
		if err := s.index.CheckIndex(ctx, src); err != nil {
			log.Warnf("index check failed: %v", err)
			add(lint.RuleIndexUnreachable, m.Path, 0, "",
				fmt.Sprintf("index %q (%s) did not answer: %v", src.Name, src.URL, err))
			continue
		}
		reachable[src.Name] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrent)

	vcsByRepo := make(map[string][]models.Requirement)

	for _, req := range m.AllRequirements() {
		if req.IsVCS() {
			if req.Git != "" {
				vcsByRepo[req.Git] = append(vcsByRepo[req.Git], req)
			}
			continue
		}

		src, ok := s.sourceFor(m, req)
		if !ok || !reachable[src.Name] {
			continue
		}

		g.Go(func() error {
			versions, err := s.index.ProjectVersions(gctx, src, req.Name)
			if errors.Is(err, clients.ErrProjectNotFound) {
				add(lint.RulePackageNotFound, req.SourceFile, req.Line, req.Name,
					fmt.Sprintf("%s is not served by index %q", req.Name, src.Name))
				return nil
			}
			if err != nil {
				log.Warnf("skipping %s: %v", req.Name, err)
				return nil
			}

			spec, err := pep440.ParseSpecifier(req.Specifier)
			if err != nil || spec.Any || len(versions) == 0 {
				// Invalid specifiers are flagged by lint; an empty
				// version list means the index speaks HTML only
				return nil
			}
			if !spec.MatchesAny(versions) {
				add(lint.RuleSpecifierUnsatisfiable, req.SourceFile, req.Line, req.Name,
					fmt.Sprintf("no published version of %s satisfies %q", req.Name, req.Specifier))
			}
			return nil
		})
	}

	for repoURL, reqs := range vcsByRepo {
		g.Go(func() error {
			advertised, err := s.git.LsRemote(gctx, repoURL)
			if err != nil {
				for _, req := range reqs {
					add(lint.RuleVCSUnreachable, req.SourceFile, req.Line, req.Name,
						fmt.Sprintf("repository %s did not answer: %v", repoURL, err))
				}
				return nil
			}

			for _, req := range reqs {
				if req.Ref == "" {
					continue // flagged by lint
				}
				if _, ok := clients.ResolveRef(advertised, req.Ref); ok {
					continue
				}
				// A full commit hash may sit below every advertised tip;
				// only branch and tag names must be advertised
				if pep440.IsCommitRef(req.Ref) && len(req.Ref) == 40 {
					continue
				}
				add(lint.RuleVCSRefNotFound, req.SourceFile, req.Line, req.Name,
					fmt.Sprintf("%s pins ref %q, which %s does not advertise", req.Name, req.Ref, repoURL))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return issues, nil
}

// sourceFor picks the index a requirement resolves against: its named
// index when set, otherwise the first declared source
func (s *Scanner) sourceFor(m *models.Manifest, req models.Requirement) (models.Source, bool) {
	if req.Index != "" {
		return m.SourceByName(req.Index)
	}
	if len(m.Sources) > 0 {
		return m.Sources[0], true
	}
	return models.Source{}, false
}

func sortIssues(issues []models.Issue) {
	sort.Slice(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.Package < b.Package
	})
}
