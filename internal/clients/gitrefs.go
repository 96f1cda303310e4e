package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/pipcheck/pipcheck/internal/pep440"
)

// GitClient lists refs advertised by remote repositories
type GitClient struct{}

// NewGitClient creates a new git client
func NewGitClient() *GitClient {
	return &GitClient{}
}

// LsRemote returns the refs a repository advertises without cloning it,
// keyed by full ref name ("refs/heads/main", "refs/tags/v1.0").
func (c *GitClient) LsRemote(ctx context.Context, repoURL string) (map[string]string, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{repoURL},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing refs of %s: %w", repoURL, err)
	}

	advertised := make(map[string]string, len(refs))
	for _, ref := range refs {
		advertised[ref.Name().String()] = ref.Hash().String()
	}
	return advertised, nil
}

// ResolveRef resolves a manifest ref against advertised refs: a full ref
// name, a branch or tag short name, or a hash prefix of an advertised tip.
func ResolveRef(advertised map[string]string, ref string) (string, bool) {
	for _, candidate := range []string{ref, "refs/heads/" + ref, "refs/tags/" + ref} {
		if hash, ok := advertised[candidate]; ok {
			return hash, true
		}
	}

	if pep440.IsCommitRef(ref) {
		for _, hash := range advertised {
			if strings.HasPrefix(hash, ref) {
				return hash, true
			}
		}
	}

	return "", false
}
