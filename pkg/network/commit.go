package network

import (
	"slices"
	"time"
)

// Commit is the immutable snapshot of one commit as delivered by a commit
// source. The engine never modifies a Commit.
type Commit struct {
	ID          string
	ParentIDs   []string
	CommittedAt time.Time
	Author      string
	Message     string
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool { return len(c.ParentIDs) > 1 }

// IsRoot reports whether the commit has no parents.
func (c Commit) IsRoot() bool { return len(c.ParentIDs) == 0 }

// ParentLane is the lane of the line drawn from a node to one of its parents.
type ParentLane struct {
	ID   string
	Lane int
}

// Node is the layout record of one commit inside a [Graph].
//
// The embedded Commit is a copy of the source snapshot. Time, Lanes and
// ParentLanes are written by the engine while the layout runs and are stable
// once [Compute] returns.
type Node struct {
	Commit

	// Time is the dense row index, 0 = oldest commit in the window.
	Time int

	// Lanes is an ordered set of lanes; the first one is the primary lane.
	Lanes []int

	// ParentLanes lists the edge lane for every in-window parent, in the
	// order of ParentIDs. Parents outside the window are omitted.
	ParentLanes []ParentLane

	// Refs are the ref names decorating this commit.
	Refs []string
}

// PrimaryLane returns the first lane of the node. The boolean is false when
// no chain has visited the node.
func (n *Node) PrimaryLane() (int, bool) {
	if len(n.Lanes) == 0 {
		return 0, false
	}
	return n.Lanes[0], true
}

// Placed reports whether the node has been assigned a lane.
func (n *Node) Placed() bool { return len(n.Lanes) > 0 }

// HasRef reports whether ref decorates the node.
func (n *Node) HasRef(ref string) bool {
	return ref != "" && slices.Contains(n.Refs, ref)
}

// addLane appends lane unless it is already present.
func (n *Node) addLane(lane int) {
	if !slices.Contains(n.Lanes, lane) {
		n.Lanes = append(n.Lanes, lane)
	}
}

// RefResolver maps commit ids to the ref names pointing at them.
type RefResolver interface {
	RefsFor(id string) []string
}

// RefMap is a map-backed [RefResolver].
type RefMap map[string][]string

// RefsFor returns the refs for id, or nil.
func (m RefMap) RefsFor(id string) []string { return m[id] }

// Add records ref as pointing at id.
func (m RefMap) Add(id, ref string) {
	if !slices.Contains(m[id], ref) {
		m[id] = append(m[id], ref)
	}
}

var _ RefResolver = RefMap(nil)
