package graph

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/gitnetwork/pkg/network"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// mergeGraph lays out R <- P1, R <- P2, C = merge(P1, P2).
func mergeGraph(t *testing.T) *network.Graph {
	t.Helper()
	window := []network.Commit{
		{ID: "c0ffee00", ParentIDs: []string{"b1", "b2"}, CommittedAt: epoch.Add(4 * time.Minute), Message: "Merge topic\n\nbody"},
		{ID: "b1", ParentIDs: []string{"a0"}, CommittedAt: epoch.Add(3 * time.Minute)},
		{ID: "b2", ParentIDs: []string{"a0"}, CommittedAt: epoch.Add(2 * time.Minute)},
		{ID: "a0", CommittedAt: epoch.Add(time.Minute), Author: "Ada"},
	}
	g, err := network.Compute(window, network.RefMap{"c0ffee00": {"main"}}, network.Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return g
}

func TestFromNetwork(t *testing.T) {
	l := FromNetwork(mergeGraph(t), Meta{Source: "/repo", Ref: "main"})

	if l.Len() != 4 || len(l.Timeline) != 4 {
		t.Fatalf("Len() = %d, timeline = %d; want 4, 4", l.Len(), len(l.Timeline))
	}
	if l.Width != 3 {
		t.Errorf("Width = %d, want 3", l.Width)
	}
	if l.Source != "/repo" || l.Ref != "main" {
		t.Errorf("Meta = %+v", l.Meta)
	}
	if l.Stats.Edges != 4 {
		t.Errorf("Stats.Edges = %d, want 4", l.Stats.Edges)
	}

	head := l.At(3)
	if head.ID != "c0ffee00" || !head.IsMerge() {
		t.Errorf("At(3) = %+v, want merge c0ffee00", head)
	}
	if head.ShortID() != "c0ffee0" {
		t.Errorf("ShortID() = %q, want c0ffee0", head.ShortID())
	}
	if head.Subject() != "Merge topic" {
		t.Errorf("Subject() = %q, want %q", head.Subject(), "Merge topic")
	}
	if len(head.Refs) != 1 || head.Refs[0] != "main" {
		t.Errorf("Refs = %v, want [main]", head.Refs)
	}
	if len(head.ParentLanes) != 2 || head.ParentLanes[1].Lane != 3 {
		t.Errorf("ParentLanes = %v", head.ParentLanes)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLayoutNodeLookup(t *testing.T) {
	l := FromNetwork(mergeGraph(t), Meta{})

	if n, ok := l.Node("b2"); !ok || n.Time != 1 {
		t.Errorf("Node(b2) = %v, %v", n, ok)
	}
	if n, ok := l.Node("c0ff"); !ok || n.ID != "c0ffee00" {
		t.Errorf("Node(c0ff) = %v, %v; want prefix match", n, ok)
	}
	if _, ok := l.Node("zzzz"); ok {
		t.Error("Node(zzzz) should not be found")
	}
	if l.At(-1) != nil || l.At(4) != nil {
		t.Error("At out of range should be nil")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	l := FromNetwork(mergeGraph(t), Meta{RunID: "run-1", Source: "/repo", MaxCommits: 650})

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	if !strings.Contains(string(data), `"parent_lanes"`) {
		t.Errorf("JSON missing parent_lanes:\n%s", data)
	}

	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if got.RunID != "run-1" || got.MaxCommits != 650 {
		t.Errorf("Meta = %+v", got.Meta)
	}
	for i := range l.Nodes {
		if got.Nodes[i].ID != l.Nodes[i].ID || !got.Nodes[i].CommittedAt.Equal(l.Nodes[i].CommittedAt) {
			t.Errorf("node %d = %+v, want %+v", i, got.Nodes[i], l.Nodes[i])
		}
	}
}

func TestWriteReadLayout(t *testing.T) {
	l := FromNetwork(mergeGraph(t), Meta{Ref: "main"})

	var buf bytes.Buffer
	if err := WriteLayout(l, &buf); err != nil {
		t.Fatalf("WriteLayout: %v", err)
	}
	got, err := ReadLayout(&buf)
	if err != nil {
		t.Fatalf("ReadLayout: %v", err)
	}
	if got.Len() != l.Len() {
		t.Errorf("Len() = %d, want %d", got.Len(), l.Len())
	}

	path := filepath.Join(t.TempDir(), "network.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	fromFile, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if fromFile.Width != l.Width {
		t.Errorf("Width = %d, want %d", fromFile.Width, l.Width)
	}

	if _, err := ReadLayoutFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadLayoutFile(missing) should fail")
	}
}

func TestUnmarshalLayoutValidation(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{
			name:    "Empty",
			json:    `{"width": 0, "timeline": [], "nodes": []}`,
			wantErr: "",
		},
		{
			name:    "BadJSON",
			json:    `{"nodes": [`,
			wantErr: "unmarshal layout",
		},
		{
			name:    "TimelineMismatch",
			json:    `{"width": 1, "timeline": [], "nodes": [{"id": "a", "time": 0, "lanes": [1]}]}`,
			wantErr: "timeline entries",
		},
		{
			name:    "SparseTime",
			json:    `{"width": 1, "timeline": ["2024-01-01T00:00:00Z"], "nodes": [{"id": "a", "time": 3, "lanes": [1]}]}`,
			wantErr: "has time 3",
		},
		{
			name:    "NoLane",
			json:    `{"width": 1, "timeline": ["2024-01-01T00:00:00Z"], "nodes": [{"id": "a", "time": 0, "lanes": []}]}`,
			wantErr: "no lane",
		},
		{
			name: "LaneBeyondWidth",
			json: `{"width": 1, "timeline": ["2024-01-01T00:00:00Z"],
				"nodes": [{"id": "a", "time": 0, "lanes": [2]}]}`,
			wantErr: "outside",
		},
		{
			name: "EdgeToNewer",
			json: `{"width": 1, "timeline": ["2024-01-01T00:00:00Z", "2024-01-01T00:01:00Z"],
				"nodes": [{"id": "a", "time": 0, "lanes": [1], "parent_lanes": [{"id": "b", "lane": 1}]},
				          {"id": "b", "time": 1, "lanes": [1]}]}`,
			wantErr: "newer parent",
		},
		{
			name: "EdgeToUnknown",
			json: `{"width": 1, "timeline": ["2024-01-01T00:00:00Z"],
				"nodes": [{"id": "a", "time": 0, "lanes": [1], "parent_lanes": [{"id": "x", "lane": 1}]}]}`,
			wantErr: "unknown parent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLayout([]byte(tt.json))
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("UnmarshalLayout: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestIsFormat(t *testing.T) {
	for _, f := range []string{"text", "svg", "dot", "json"} {
		if !IsFormat(f) {
			t.Errorf("IsFormat(%q) = false", f)
		}
	}
	if IsFormat("png") {
		t.Error("IsFormat(png) = true")
	}
}
