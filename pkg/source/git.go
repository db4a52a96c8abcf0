package source

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/matzehuels/gitnetwork/pkg/errors"
	"github.com/matzehuels/gitnetwork/pkg/network"
	"github.com/matzehuels/gitnetwork/pkg/observability"
)

// Field and record layout of `git log` output parsed by [ParseLog].
const (
	fieldSep  = "\x1f"
	logFormat = "--format=%H%x1f%P%x1f%cI%x1f%an%x1f%s"
)

// GitSource reads history from a local repository with the git CLI.
type GitSource struct {
	// Dir is the working tree or bare repository.
	Dir string

	// All lists every ref instead of only those reachable from the
	// requested ref, like a network view of all branches.
	All bool

	// Git is the git binary. Empty selects "git" from PATH.
	Git string
}

// NewGitSource creates a source for the repository at dir.
func NewGitSource(dir string) *GitSource {
	return &GitSource{Dir: dir}
}

// Name returns the repository directory.
func (s *GitSource) Name() string { return s.Dir }

// History runs git log in date order.
func (s *GitSource) History(ctx context.Context, ref string, limit int) ([]network.Commit, error) {
	args, err := s.logArgs(ref)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		args = append(args, fmt.Sprintf("--max-count=%d", limit))
	}
	out, err := s.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return ParseLog(bytes.NewReader(out))
}

// Pager returns a pager that reads history with --skip/--max-count.
func (s *GitSource) Pager(ref string, size int) network.Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &gitPager{src: s, ref: ref, size: size}
}

// Resolve returns the commit id of ref.
func (s *GitSource) Resolve(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		ref = "HEAD"
	}
	if ref != "HEAD" {
		if err := errors.ValidateRef(ref); err != nil {
			return "", err
		}
	}
	out, err := s.run(ctx, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeCommitNotFound, err, "resolve %s", ref)
	}
	return strings.TrimSpace(string(out)), nil
}

// Refs lists branches, remote branches and tags. Annotated tags are peeled
// to the commit they point at.
func (s *GitSource) Refs(ctx context.Context) (network.RefMap, error) {
	out, err := s.run(ctx, "for-each-ref",
		"--format=%(objectname)\t%(*objectname)\t%(refname:short)",
		"refs/heads", "refs/remotes", "refs/tags")
	if err != nil {
		return nil, err
	}
	return parseRefs(bytes.NewReader(out))
}

func (s *GitSource) logArgs(ref string) ([]string, error) {
	args := []string{"log", logFormat, "--date-order"}
	switch {
	case s.All:
		args = append(args, "--all")
	case ref == "":
		args = append(args, "HEAD")
	default:
		if err := errors.ValidateRef(ref); err != nil {
			return nil, err
		}
		args = append(args, ref)
	}
	return append(args, "--"), nil
}

// run executes git in the repository and returns stdout.
func (s *GitSource) run(ctx context.Context, args ...string) ([]byte, error) {
	bin := s.Git
	if bin == "" {
		bin = "git"
	}
	hooks := observability.Source()
	call := "git " + strings.Join(args, " ")
	hooks.OnSourceCall(ctx, s.Dir, call)
	start := time.Now()

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = s.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()

	hooks.OnSourceCallComplete(ctx, s.Dir, call, time.Since(start), err)
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, ctxErr, "git %s", args[0])
	}
	msg := strings.TrimSpace(stderr.String())
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) && strings.Contains(msg, "not a git repository") {
		return nil, errors.New(errors.ErrCodeRepoNotFound, "%s is not a git repository", s.Dir)
	}
	if msg != "" {
		err = fmt.Errorf("%w: %s", err, msg)
	}
	return nil, errors.Wrap(errors.ErrCodeNetwork, err, "git %s", args[0])
}

// gitPager streams git log in pages.
type gitPager struct {
	src  *GitSource
	ref  string
	size int
	skip int
	done bool
}

func (p *gitPager) NextPage(ctx context.Context) ([]network.Commit, error) {
	if p.done {
		return nil, nil
	}
	args, err := p.src.logArgs(p.ref)
	if err != nil {
		return nil, err
	}
	// Options must precede the trailing "--".
	paging := []string{fmt.Sprintf("--skip=%d", p.skip), fmt.Sprintf("--max-count=%d", p.size)}
	args = append(args[:len(args)-1], append(paging, "--")...)

	out, err := p.src.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	page, err := ParseLog(bytes.NewReader(out))
	if err != nil {
		return nil, err
	}
	p.skip += len(page)
	if len(page) < p.size {
		p.done = true
	}
	return page, nil
}

// ParseLog parses output of git log with the format used by [GitSource]:
// one commit per line, fields separated by 0x1f.
func ParseLog(r io.Reader) ([]network.Commit, error) {
	var commits []network.Commit
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts := strings.SplitN(text, fieldSep, 5)
		if len(parts) < 5 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "git log line %d: expected 5 fields, got %d", line, len(parts))
		}
		at, err := time.Parse(time.RFC3339, parts[2])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "git log line %d: commit date", line)
		}
		commits = append(commits, network.Commit{
			ID:          parts[0],
			ParentIDs:   strings.Fields(parts[1]),
			CommittedAt: at,
			Author:      parts[3],
			Message:     parts[4],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan git log: %w", err)
	}
	return commits, nil
}

// parseRefs parses for-each-ref output of "<object>\t<peeled>\t<name>".
func parseRefs(r io.Reader) (network.RefMap, error) {
	refs := network.RefMap{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		parts := strings.SplitN(sc.Text(), "\t", 3)
		if len(parts) != 3 {
			continue
		}
		id := parts[0]
		if parts[1] != "" {
			id = parts[1]
		}
		// origin/HEAD duplicates the default branch
		if strings.HasSuffix(parts[2], "/HEAD") {
			continue
		}
		refs.Add(id, parts[2])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan refs: %w", err)
	}
	return refs, nil
}

var _ Source = (*GitSource)(nil)
