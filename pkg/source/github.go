package source

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gitnetwork/pkg/errors"
	"github.com/matzehuels/gitnetwork/pkg/httputil"
	"github.com/matzehuels/gitnetwork/pkg/network"
	"github.com/matzehuels/gitnetwork/pkg/observability"
)

const (
	// GitHubAPI is the default REST endpoint.
	GitHubAPI = "https://api.github.com"

	// githubMaxPage is the largest per_page the API accepts.
	githubMaxPage = 100
)

var (
	githubRepoPattern = regexp.MustCompile(`^(?:https?://|git@)?github\.com[/:]([^/]+)/([^/]+?)(?:\.git)?/?$`)
	githubOwner       = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	githubRepo        = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ParseGitHubRepo recognizes "github.com/owner/repo", its https URL and its
// ssh remote form.
func ParseGitHubRepo(s string) (owner, repo string, ok bool) {
	m := githubRepoPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || !githubOwner.MatchString(m[1]) || !githubRepo.MatchString(m[2]) {
		return "", "", false
	}
	return m[1], m[2], true
}

// IsRemote reports whether repo names a hosted repository rather than a
// local path.
func IsRemote(repo string) bool {
	_, _, ok := ParseGitHubRepo(repo)
	return ok
}

// GitHubSource reads history through the GitHub REST API.
type GitHubSource struct {
	Owner   string
	Repo    string
	BaseURL string

	client *httputil.Client
}

// NewGitHubSource creates a source for owner/repo. An empty token makes
// unauthenticated requests, which have a much lower rate limit.
func NewGitHubSource(owner, repo, token string) *GitHubSource {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &GitHubSource{
		Owner:   owner,
		Repo:    repo,
		BaseURL: GitHubAPI,
		client:  httputil.NewClient(headers),
	}
}

// Client exposes the HTTP client for tuning retries and timeouts.
func (s *GitHubSource) Client() *httputil.Client { return s.client }

// Name returns "github.com/owner/repo".
func (s *GitHubSource) Name() string { return "github.com/" + s.Owner + "/" + s.Repo }

// History pages through the commits endpoint until limit commits are read.
func (s *GitHubSource) History(ctx context.Context, ref string, limit int) ([]network.Commit, error) {
	size := githubMaxPage
	if limit > 0 && limit < size {
		size = limit
	}
	p := s.Pager(ref, size)
	var out []network.Commit
	for limit <= 0 || len(out) < limit {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		out = append(out, page...)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Pager follows the Link headers of the commits endpoint.
func (s *GitHubSource) Pager(ref string, size int) network.Pager {
	if size <= 0 || size > githubMaxPage {
		size = githubMaxPage
	}
	q := url.Values{"per_page": {fmt.Sprint(size)}}
	if ref != "" && ref != "HEAD" {
		q.Set("sha", ref)
	}
	return &githubPager{src: s, ref: ref, next: s.url("commits") + "?" + q.Encode()}
}

// Resolve returns the commit id of ref. An empty ref or HEAD resolves the
// default branch.
func (s *GitHubSource) Resolve(ctx context.Context, ref string) (string, error) {
	if ref == "" || ref == "HEAD" {
		var repo struct {
			DefaultBranch string `json:"default_branch"`
		}
		if _, err := s.get(ctx, s.url(""), &repo); err != nil {
			return "", s.notFound(err, errors.ErrCodeRepoNotFound, "repository %s", s.Name())
		}
		ref = repo.DefaultBranch
	} else if err := errors.ValidateRef(ref); err != nil {
		return "", err
	}
	var c githubCommit
	if _, err := s.get(ctx, s.url("commits/"+url.PathEscape(ref)), &c); err != nil {
		return "", s.notFound(err, errors.ErrCodeCommitNotFound, "ref %s in %s", ref, s.Name())
	}
	return c.SHA, nil
}

// Refs lists branches and tags. Tags are reported at the commit they point at.
func (s *GitHubSource) Refs(ctx context.Context) (network.RefMap, error) {
	refs := network.RefMap{}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range []string{"branches", "tags"} {
		g.Go(func() error {
			named, err := s.listRefs(gctx, kind)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, r := range named {
				refs.Add(r.Commit.SHA, r.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

type githubRef struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

func (s *GitHubSource) listRefs(ctx context.Context, kind string) ([]githubRef, error) {
	var all []githubRef
	next := s.url(kind) + fmt.Sprintf("?per_page=%d", githubMaxPage)
	for next != "" {
		var page []githubRef
		var err error
		if next, err = s.get(ctx, next, &page); err != nil {
			return nil, s.notFound(err, errors.ErrCodeRepoNotFound, "repository %s", s.Name())
		}
		all = append(all, page...)
	}
	return all, nil
}

// get fetches one API resource and reports the request to the source hooks.
func (s *GitHubSource) get(ctx context.Context, u string, v any) (string, error) {
	call := "GET " + u
	if parsed, err := url.Parse(u); err == nil {
		call = "GET " + parsed.Path
	}
	hooks := observability.Source()
	hooks.OnSourceCall(ctx, s.Name(), call)
	start := time.Now()
	next, err := s.client.GetJSON(ctx, u, v)
	hooks.OnSourceCallComplete(ctx, s.Name(), call, time.Since(start), err)
	return next, err
}

func (s *GitHubSource) url(path string) string {
	u := strings.TrimSuffix(s.BaseURL, "/") + "/repos/" + s.Owner + "/" + s.Repo
	if path != "" {
		u += "/" + path
	}
	return u
}

// notFound rewrites a generic NOT_FOUND into the more specific code.
func (s *GitHubSource) notFound(err error, code errors.Code, format string, args ...any) error {
	if errors.Is(err, errors.ErrCodeNotFound) {
		return errors.New(code, format+" not found", args...)
	}
	return err
}

type githubCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name string `json:"name"`
		} `json:"author"`
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
		Message string `json:"message"`
	} `json:"commit"`
	Parents []struct {
		SHA string `json:"sha"`
	} `json:"parents"`
}

func (c githubCommit) toCommit() network.Commit {
	parents := make([]string, len(c.Parents))
	for i, p := range c.Parents {
		parents[i] = p.SHA
	}
	return network.Commit{
		ID:          c.SHA,
		ParentIDs:   parents,
		CommittedAt: c.Commit.Committer.Date,
		Author:      c.Commit.Author.Name,
		Message:     c.Commit.Message,
	}
}

// githubPager reads one API page per call.
type githubPager struct {
	src  *GitHubSource
	ref  string
	next string
}

func (p *githubPager) NextPage(ctx context.Context) ([]network.Commit, error) {
	if p.next == "" {
		return nil, nil
	}
	var page []githubCommit
	next, err := p.src.get(ctx, p.next, &page)
	if err != nil {
		return nil, p.src.notFound(err, errors.ErrCodeCommitNotFound, "ref %s in %s", p.ref, p.src.Name())
	}
	p.next = next
	out := make([]network.Commit, len(page))
	for i, c := range page {
		out[i] = c.toCommit()
	}
	return out, nil
}

var _ Source = (*GitHubSource)(nil)
