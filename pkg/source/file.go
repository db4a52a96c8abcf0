package source

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/gitnetwork/pkg/errors"
	"github.com/matzehuels/gitnetwork/pkg/network"
)

// FileCommit is one commit of a history file.
type FileCommit struct {
	ID          string    `json:"id" yaml:"id"`
	Parents     []string  `json:"parents,omitempty" yaml:"parents,omitempty"`
	CommittedAt time.Time `json:"committed_at" yaml:"committed_at"`
	Author      string    `json:"author,omitempty" yaml:"author,omitempty"`
	Message     string    `json:"message,omitempty" yaml:"message,omitempty"`
	Refs        []string  `json:"refs,omitempty" yaml:"refs,omitempty"`
}

// HistoryFile is the document format read by [FileSource]. Commits are
// listed newest first, as git log prints them.
type HistoryFile struct {
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	Head    string       `json:"head,omitempty" yaml:"head,omitempty"`
	Commits []FileCommit `json:"commits" yaml:"commits"`
}

// FileSource serves a history loaded from a JSON or YAML document.
type FileSource struct {
	name    string
	head    string
	commits []network.Commit
	index   map[string]int
	refs    network.RefMap
}

// LoadFile reads a history file. The format is chosen by extension.
func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read %s", path)
	}
	var doc HistoryFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if doc.Name == "" {
		doc.Name = path
	}
	return NewFileSource(doc)
}

// NewFileSource builds a source from an in-memory document.
func NewFileSource(doc HistoryFile) (*FileSource, error) {
	s := &FileSource{
		name:    doc.Name,
		head:    doc.Head,
		commits: make([]network.Commit, len(doc.Commits)),
		index:   make(map[string]int, len(doc.Commits)),
		refs:    network.RefMap{},
	}
	for i, c := range doc.Commits {
		if c.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidCommit, "commit %d has no id", i)
		}
		if _, dup := s.index[c.ID]; dup {
			return nil, errors.New(errors.ErrCodeDuplicateCommit, "commit %s listed twice", c.ID)
		}
		s.index[c.ID] = i
		s.commits[i] = network.Commit{
			ID:          c.ID,
			ParentIDs:   slices.Clone(c.Parents),
			CommittedAt: c.CommittedAt,
			Author:      c.Author,
			Message:     c.Message,
		}
		for _, ref := range c.Refs {
			s.refs.Add(c.ID, ref)
		}
	}
	return s, nil
}

// Name returns the document name or file path.
func (s *FileSource) Name() string { return s.name }

// History returns the commits reachable from ref in file order.
func (s *FileSource) History(ctx context.Context, ref string, limit int) ([]network.Commit, error) {
	start, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	var out []network.Commit
	if start == "" {
		out = slices.Clone(s.commits)
	} else {
		reach := s.reachable(start)
		for _, c := range s.commits {
			if reach[c.ID] {
				out = append(out, c)
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Pager serves History(ref, 0) in pages.
func (s *FileSource) Pager(ref string, size int) network.Pager {
	return &filePager{src: s, ref: ref, size: size}
}

// Resolve returns the commit ref points at. A commit id resolves to itself.
// An empty ref resolves to the document head, or to "" (the whole file)
// when the document has none.
func (s *FileSource) Resolve(ctx context.Context, ref string) (string, error) {
	if ref == "" || ref == "HEAD" {
		if s.head == "" {
			return "", nil
		}
		ref = s.head
	}
	if _, ok := s.index[ref]; ok {
		return ref, nil
	}
	for id, names := range s.refs {
		if slices.Contains(names, ref) {
			return id, nil
		}
	}
	return "", errors.New(errors.ErrCodeCommitNotFound, "ref %s not found in %s", ref, s.name)
}

// Refs returns the refs listed in the document.
func (s *FileSource) Refs(context.Context) (network.RefMap, error) {
	out := make(network.RefMap, len(s.refs))
	for id, names := range s.refs {
		out[id] = slices.Clone(names)
	}
	return out, nil
}

// reachable walks parents from start.
func (s *FileSource) reachable(start string) map[string]bool {
	seen := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		i, ok := s.index[id]
		if !ok {
			continue
		}
		for _, p := range s.commits[i].ParentIDs {
			if !seen[p] {
				seen[p] = true
				stack = append(stack, p)
			}
		}
	}
	return seen
}

// filePager resolves its history lazily so errors surface from NextPage.
type filePager struct {
	src   *FileSource
	ref   string
	size  int
	inner *network.SlicePager
}

func (p *filePager) NextPage(ctx context.Context) ([]network.Commit, error) {
	if p.inner == nil {
		history, err := p.src.History(ctx, p.ref, 0)
		if err != nil {
			return nil, err
		}
		p.inner = &network.SlicePager{Commits: history, Size: p.size}
	}
	return p.inner.NextPage(ctx)
}

var _ Source = (*FileSource)(nil)
