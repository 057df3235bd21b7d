// Package source materializes a specific commit of a remote repository
// into a local, content-addressed source cache and computes its tree hash.
package source

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pygr-project/pygr/pkg/hash"
)

var hex40 = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// Fetcher materializes recipe sources into cacheRoot, keyed by
// owner_name_commit.
type Fetcher struct {
	cacheRoot  string
	token      string
	httpClient *http.Client
}

// New creates a Fetcher whose source cache lives under cacheRoot. token,
// if non-empty, authenticates the commits-API fallback only; git clone and
// ls-remote run without it.
func New(cacheRoot, token string) *Fetcher {
	return &Fetcher{
		cacheRoot:  cacheRoot,
		token:      token,
		httpClient: newHTTPClient(token),
	}
}

// Fetch resolves ref to a commit, materializes that commit's tree under
// the source cache (cloning only on a cache miss), and returns the cache
// directory and its content tree hash.
func (f *Fetcher) Fetch(ctx context.Context, repo, ref string) (sourceDir string, treeHash string, err error) {
	commit, err := f.resolveCommit(ctx, repo, ref)
	if err != nil {
		return "", "", err
	}

	cacheKey := cacheKeyFor(repo, commit)
	cachePath := filepath.Join(f.cacheRoot, cacheKey)

	if _, statErr := os.Stat(cachePath); statErr == nil {
		th, err := hash.TreeHash(cachePath)
		if err != nil {
			return "", "", fmt.Errorf("%w: tree_hash cached %s: %v", ErrFetchFailed, cachePath, err)
		}
		return cachePath, th, nil
	}

	tmpDir, err := os.MkdirTemp("", "pygr-source-*")
	if err != nil {
		return "", "", fmt.Errorf("%w: create temp dir: %v", ErrFetchFailed, err)
	}
	defer os.RemoveAll(tmpDir)

	if err := f.cloneCommit(ctx, repo, commit, tmpDir); err != nil {
		return "", "", err
	}

	th, err := hash.TreeHash(tmpDir)
	if err != nil {
		return "", "", fmt.Errorf("%w: tree_hash %s: %v", ErrFetchFailed, tmpDir, err)
	}

	if err := os.MkdirAll(f.cacheRoot, 0o755); err != nil {
		return "", "", fmt.Errorf("%w: create cache root: %v", ErrFetchFailed, err)
	}
	if err := os.Rename(tmpDir, cachePath); err != nil {
		return "", "", fmt.Errorf("%w: move into cache: %v", ErrFetchFailed, err)
	}

	return cachePath, th, nil
}

// cloneCommit shallow-clones repo into dir, fetches commit specifically,
// and checks it out.
func (f *Fetcher) cloneCommit(ctx context.Context, repo, commit, dir string) error {
	url := githubURL(repo)

	if _, err := runGit(ctx, "", "clone", "--no-checkout", "--filter=blob:none", url, dir); err != nil {
		return fmt.Errorf("%w: clone %s: %v", ErrFetchFailed, repo, err)
	}
	if _, err := runGit(ctx, dir, "fetch", "--depth", "1", "origin", commit); err != nil {
		return fmt.Errorf("%w: fetch %s@%s: %v", ErrFetchFailed, repo, commit, err)
	}
	if _, err := runGit(ctx, dir, "checkout", "FETCH_HEAD"); err != nil {
		return fmt.Errorf("%w: checkout %s@%s: %v", ErrFetchFailed, repo, commit, err)
	}
	return nil
}

// resolveCommit resolves ref to a commit SHA: a 40-hex string is taken
// literally; otherwise `git ls-remote` is consulted, falling back to the
// hosted commits API when ls-remote finds no matching ref (e.g. a partial
// SHA that isn't a branch or tag name).
func (f *Fetcher) resolveCommit(ctx context.Context, repo, ref string) (string, error) {
	if hex40.MatchString(ref) {
		return strings.ToLower(ref), nil
	}

	url := githubURL(repo)
	out, err := runGit(ctx, "", "ls-remote", url, ref)
	if err == nil {
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			fields := strings.Fields(line)
			if len(fields) == 2 {
				return fields[0], nil
			}
		}
	}

	commit, apiErr := f.resolveCommitViaAPI(ctx, repo, ref)
	if apiErr != nil {
		return "", fmt.Errorf("%w: %s@%s", ErrUnresolvableRef, repo, ref)
	}
	return commit, nil
}

func cacheKeyFor(repo, commit string) string {
	return strings.ReplaceAll(repo, "/", "_") + "_" + commit
}
