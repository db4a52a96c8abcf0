// Package source provides commit histories and ref decorations for the
// layout engine.
//
// A [Source] reads a repository's history newest-first, resolves refs to
// commit ids, and lists the ref names decorating each commit. Three sources
// are provided:
//
//   - [GitSource]: a local git checkout, read through the git CLI
//   - [FileSource]: a JSON or YAML fixture describing a history
//   - [GitHubSource]: a GitHub repository, read through the REST API
//
// Use [Open] to pick the right one for a path.
package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/gitnetwork/pkg/errors"
	"github.com/matzehuels/gitnetwork/pkg/network"
)

// Source reads commit history.
type Source interface {
	// Name identifies the history for cache keys and logs.
	Name() string

	// History returns commits reachable from ref, newest first. An empty ref
	// selects the source's default. A limit of 0 returns everything.
	History(ctx context.Context, ref string, limit int) ([]network.Commit, error)

	// Pager streams the history reachable from ref in pages of size commits.
	Pager(ref string, size int) network.Pager

	// Resolve returns the commit id ref points at.
	Resolve(ctx context.Context, ref string) (string, error)

	// Refs returns the ref names decorating each commit.
	Refs(ctx context.Context) (network.RefMap, error)
}

// DefaultPageSize is the page size used when streaming history.
const DefaultPageSize = 500

// Open returns a FileSource for .json, .yaml and .yml files and a GitSource
// for directories. A path that does not exist locally but names a GitHub
// repository opens a GitHubSource authenticated with $GITHUB_TOKEN.
func Open(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if owner, repo, ok := ParseGitHubRepo(path); ok {
			return NewGitHubSource(owner, repo, os.Getenv("GITHUB_TOKEN")), nil
		}
		return nil, errors.Wrap(errors.ErrCodeRepoNotFound, err, "open %s", path)
	}
	if !info.IsDir() {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".yaml", ".yml":
			return LoadFile(path)
		}
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported history file: %s", path)
	}
	return NewGitSource(path), nil
}
