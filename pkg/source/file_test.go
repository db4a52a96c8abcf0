package source

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/gitnetwork/pkg/errors"
	"github.com/matzehuels/gitnetwork/pkg/network"
)

const historyYAML = `name: fixture
commits:
  - id: m2
    parents: [m1, f1]
    committed_at: 2024-01-01T00:05:00Z
    author: Ada
    message: Merge feature
    refs: [main]
  - id: f1
    parents: [m0]
    committed_at: 2024-01-01T00:04:00Z
    refs: [feature]
  - id: m1
    parents: [m0]
    committed_at: 2024-01-01T00:03:00Z
  - id: x1
    parents: [m0]
    committed_at: 2024-01-01T00:02:00Z
    refs: [experiment]
  - id: m0
    committed_at: 2024-01-01T00:01:00Z
    refs: [v0.1]
`

const historyJSON = `{
  "head": "f1",
  "commits": [
    {"id": "f1", "parents": ["m0"], "committed_at": "2024-01-01T00:04:00Z", "refs": ["feature"]},
    {"id": "m0", "committed_at": "2024-01-01T00:01:00Z"}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func ids(commits []network.Commit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.ID
	}
	return out
}

func TestFileSourceYAML(t *testing.T) {
	src, err := LoadFile(writeFile(t, "history.yaml", historyYAML))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	ctx := context.Background()

	if src.Name() != "fixture" {
		t.Errorf("Name() = %q, want fixture", src.Name())
	}

	tests := []struct {
		ref  string
		want []string
	}{
		{"", []string{"m2", "f1", "m1", "x1", "m0"}},
		{"main", []string{"m2", "f1", "m1", "m0"}},
		{"feature", []string{"f1", "m0"}},
		{"m1", []string{"m1", "m0"}},
		{"v0.1", []string{"m0"}},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := src.History(ctx, tt.ref, 0)
			if err != nil {
				t.Fatalf("History: %v", err)
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("History(%q) = %v, want %v", tt.ref, ids(got), tt.want)
			}
		})
	}

	limited, _ := src.History(ctx, "main", 2)
	if !reflect.DeepEqual(ids(limited), []string{"m2", "f1"}) {
		t.Errorf("History(main, 2) = %v", ids(limited))
	}

	refs, _ := src.Refs(ctx)
	if !reflect.DeepEqual(refs.RefsFor("m2"), []string{"main"}) {
		t.Errorf("refs of m2 = %v", refs.RefsFor("m2"))
	}

	m2, _ := src.History(ctx, "m2", 1)
	if m2[0].Author != "Ada" || !m2[0].IsMerge() {
		t.Errorf("m2 = %+v", m2[0])
	}
}

func TestFileSourceJSON(t *testing.T) {
	src, err := LoadFile(writeFile(t, "history.json", historyJSON))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	ctx := context.Background()

	head, err := src.Resolve(ctx, "")
	if err != nil || head != "f1" {
		t.Errorf("Resolve(\"\") = %q, %v; want f1", head, err)
	}

	_, err = src.Resolve(ctx, "nope")
	if !errors.Is(err, errors.ErrCodeCommitNotFound) {
		t.Errorf("Resolve(nope) err = %v, want COMMIT_NOT_FOUND", err)
	}

	window, err := network.SelectWindowFrom(ctx, src.Pager("", 1), "", 10)
	if err != nil {
		t.Fatalf("SelectWindowFrom: %v", err)
	}
	if !reflect.DeepEqual(ids(window), []string{"f1", "m0"}) {
		t.Errorf("paged window = %v", ids(window))
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    errors.Code
	}{
		{"BadJSON", "h.json", `{"commits": [`, errors.ErrCodeInvalidFormat},
		{"UnknownField", "h.json", `{"commits": [], "extra": 1}`, errors.ErrCodeInvalidFormat},
		{"BadYAML", "h.yaml", "commits: [", errors.ErrCodeInvalidFormat},
		{"MissingID", "h.json", `{"commits": [{"parents": []}]}`, errors.ErrCodeInvalidCommit},
		{"Duplicate", "h.json", `{"commits": [{"id": "a"}, {"id": "a"}]}`, errors.ErrCodeDuplicateCommit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, tt.file, tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file err = %v, want NOT_FOUND", err)
	}
}

func TestOpen(t *testing.T) {
	src, err := Open(writeFile(t, "h.yml", historyYAML))
	if err != nil {
		t.Fatalf("Open(yml): %v", err)
	}
	if _, ok := src.(*FileSource); !ok {
		t.Errorf("Open(yml) = %T, want *FileSource", src)
	}

	dir := t.TempDir()
	src, err = Open(dir)
	if err != nil {
		t.Fatalf("Open(dir): %v", err)
	}
	if g, ok := src.(*GitSource); !ok || g.Dir != dir {
		t.Errorf("Open(dir) = %#v, want GitSource for %s", src, dir)
	}

	if _, err := Open(writeFile(t, "notes.txt", "x")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Open(txt) err = %v, want INVALID_FORMAT", err)
	}
	if _, err := Open(filepath.Join(dir, "missing")); !errors.Is(err, errors.ErrCodeRepoNotFound) {
		t.Errorf("Open(missing) err = %v, want REPO_NOT_FOUND", err)
	}
}
