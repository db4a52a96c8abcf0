package graph

import (
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/gitnetwork/pkg/network"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Output formats.
const (
	FormatText = "text"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatText, FormatSVG, FormatDOT, FormatJSON}

// IsFormat reports whether f is a supported output format.
func IsFormat(f string) bool { return slices.Contains(Formats, f) }

// shortIDLen is the length of abbreviated commit ids in rendered output.
const shortIDLen = 7

// =============================================================================
// Node - Positioned Commit
// =============================================================================

// Node is one positioned commit.
type Node struct {
	ID          string       `json:"id" bson:"id"`
	Time        int          `json:"time" bson:"time"`
	Lanes       []int        `json:"lanes" bson:"lanes"`
	Parents     []string     `json:"parents,omitempty" bson:"parents,omitempty"`
	ParentLanes []ParentLane `json:"parent_lanes,omitempty" bson:"parent_lanes,omitempty"`
	Refs        []string     `json:"refs,omitempty" bson:"refs,omitempty"`
	CommittedAt time.Time    `json:"committed_at" bson:"committed_at"`
	Author      string       `json:"author,omitempty" bson:"author,omitempty"`
	Message     string       `json:"message,omitempty" bson:"message,omitempty"`
}

// ParentLane is the lane of the edge towards one in-window parent.
type ParentLane struct {
	ID   string `json:"id" bson:"id"`
	Lane int    `json:"lane" bson:"lane"`
}

// PrimaryLane returns the first lane, or 0 for an unplaced node.
func (n *Node) PrimaryLane() int {
	if len(n.Lanes) == 0 {
		return 0
	}
	return n.Lanes[0]
}

// ShortID returns the abbreviated commit id.
func (n *Node) ShortID() string {
	if len(n.ID) <= shortIDLen {
		return n.ID
	}
	return n.ID[:shortIDLen]
}

// Subject returns the first line of the commit message.
func (n *Node) Subject() string {
	subject, _, _ := strings.Cut(n.Message, "\n")
	return strings.TrimSpace(subject)
}

// IsMerge reports whether the commit has more than one parent.
func (n *Node) IsMerge() bool { return len(n.Parents) > 1 }

// =============================================================================
// Layout - Serialized Network
// =============================================================================

// Meta describes how a layout was produced.
type Meta struct {
	RunID      string    `json:"run_id,omitempty" bson:"_id,omitempty"`
	Source     string    `json:"source,omitempty" bson:"source,omitempty"`
	Ref        string    `json:"ref,omitempty" bson:"ref,omitempty"`
	Head       string    `json:"head,omitempty" bson:"head,omitempty"`
	Target     string    `json:"target,omitempty" bson:"target,omitempty"`
	PrimaryRef string    `json:"primary_ref,omitempty" bson:"primary_ref,omitempty"`
	MaxCommits int       `json:"max_commits,omitempty" bson:"max_commits,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitzero" bson:"created_at,omitempty"`
}

// Stats mirrors network.Stats for serialized layouts.
type Stats struct {
	Chains          int `json:"chains" bson:"chains"`
	Edges           int `json:"edges" bson:"edges"`
	LaneSearchSteps int `json:"lane_search_steps" bson:"lane_search_steps"`
}

// Layout is the serialization format of a computed network.
//
// Nodes are ordered by time, oldest first, so Nodes[i].Time == i and
// Timeline[i] is the commit date of Nodes[i].
type Layout struct {
	Meta `bson:",inline"`

	Width    int         `json:"width" bson:"width"`
	Timeline []time.Time `json:"timeline" bson:"timeline"`
	Nodes    []Node      `json:"nodes" bson:"nodes"`
	Stats    Stats       `json:"stats" bson:"stats"`
}

// Len returns the number of nodes.
func (l *Layout) Len() int { return len(l.Nodes) }

// At returns the node at time t, or nil when out of range.
func (l *Layout) At(t int) *Node {
	if t < 0 || t >= len(l.Nodes) {
		return nil
	}
	return &l.Nodes[t]
}

// Node returns the node with the given commit id. Abbreviated ids match
// when they are unambiguous.
func (l *Layout) Node(id string) (*Node, bool) {
	var found *Node
	for i := range l.Nodes {
		n := &l.Nodes[i]
		if n.ID == id {
			return n, true
		}
		if len(id) >= 4 && strings.HasPrefix(n.ID, id) {
			if found != nil {
				return nil, false
			}
			found = n
		}
	}
	return found, found != nil
}

// =============================================================================
// network.Graph → Layout Conversion
// =============================================================================

// FromNetwork converts an engine result to its serialization format.
func FromNetwork(g *network.Graph, meta Meta) Layout {
	src := g.Nodes()
	out := Layout{
		Meta:     meta,
		Width:    g.Width(),
		Timeline: slices.Clone(g.Timeline()),
		Nodes:    make([]Node, len(src)),
		Stats:    Stats(g.Stats()),
	}
	for i := range src {
		out.Nodes[i] = nodeFromNetwork(&src[i])
	}
	return out
}

func nodeFromNetwork(n *network.Node) Node {
	out := Node{
		ID:          n.ID,
		Time:        n.Time,
		Lanes:       slices.Clone(n.Lanes),
		Parents:     slices.Clone(n.ParentIDs),
		Refs:        slices.Clone(n.Refs),
		CommittedAt: n.CommittedAt,
		Author:      n.Author,
		Message:     n.Message,
	}
	if len(n.ParentLanes) > 0 {
		out.ParentLanes = make([]ParentLane, len(n.ParentLanes))
		for i, pl := range n.ParentLanes {
			out.ParentLanes[i] = ParentLane{ID: pl.ID, Lane: pl.Lane}
		}
	}
	return out
}
