package network

import (
	"context"
	"slices"
	"time"
)

// Options configures one layout run.
type Options struct {
	// Target is the commit id to center the window on. Optional.
	Target string

	// PrimaryRef is the ref whose commits are placed first and therefore
	// receive the leftmost lanes. Optional.
	PrimaryRef string

	// MaxCommits bounds the window. Zero selects DefaultMaxCommits.
	MaxCommits int
}

// Chain describes one run of commits placed together on a single lane.
type Chain struct {
	Head     string // newest commit of the run
	Lane     int
	Run      Span // time span of the run's own commits
	Reserved Span // span reserved in the table for the run
}

// Stats summarizes the work done by one layout run.
type Stats struct {
	Chains          int
	Edges           int
	LaneSearchSteps int
}

// Graph is the working state and result of one layout run.
//
// Nodes are stored in an arena indexed by time. The zero value is an empty
// layout.
type Graph struct {
	nodes        []Node
	index        map[string]int
	timeline     []time.Time
	reservations *Reservations
	chains       []Chain
	stats        Stats
}

// newGraph builds the time axis from a newest-first window: the window is
// reversed so time 0 is the oldest commit.
func newGraph(window []Commit, refs RefResolver) (*Graph, error) {
	n := len(window)
	g := &Graph{
		nodes:        make([]Node, n),
		index:        make(map[string]int, n),
		timeline:     make([]time.Time, n),
		reservations: NewReservations(n),
	}
	for i := range window {
		c := window[n-1-i]
		if _, dup := g.index[c.ID]; dup {
			return nil, &DuplicateCommitError{ID: c.ID}
		}
		node := Node{Commit: c, Time: i}
		if refs != nil {
			node.Refs = slices.Clone(refs.RefsFor(c.ID))
		}
		g.nodes[i] = node
		g.index[c.ID] = i
		g.timeline[i] = c.CommittedAt
	}
	return g, nil
}

// Compute lays out a newest-first window of commits, usually the output of
// [SelectWindow]. refs may be nil. opts.Target and opts.MaxCommits are not
// consulted; the window is taken as given.
func Compute(window []Commit, refs RefResolver, opts Options) (*Graph, error) {
	g, err := newGraph(window, refs)
	if err != nil {
		return nil, err
	}
	p := newPlacer(g, opts.PrimaryRef)
	if err := p.placeAll(); err != nil {
		return nil, err
	}
	if err := p.resolveParentLanes(); err != nil {
		return nil, err
	}
	return g, nil
}

// Layout selects a window from p and lays it out. The context is only
// consulted while reading history; the layout itself is synchronous.
func Layout(ctx context.Context, p Pager, refs RefResolver, opts Options) (*Graph, error) {
	window, err := SelectWindowFrom(ctx, p, opts.Target, opts.MaxCommits)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Compute(window, refs, opts)
}

// Len returns the number of commits in the layout.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the layout records ordered by time, oldest first. The slice
// is owned by the graph and must not be modified.
func (g *Graph) Nodes() []Node { return g.nodes }

// At returns the node at time t, or nil when t is out of range.
func (g *Graph) At(t int) *Node {
	if t < 0 || t >= len(g.nodes) {
		return nil
	}
	return &g.nodes[t]
}

// Node returns the node with the given commit id.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.nodes[i], true
}

// Timeline returns the commit date per time index.
func (g *Graph) Timeline() []time.Time { return g.timeline }

// Reservations returns the reservation table as left by the layout run.
func (g *Graph) Reservations() *Reservations { return g.reservations }

// Chains returns the placed runs in placement order.
func (g *Graph) Chains() []Chain { return g.chains }

// Stats returns counters collected during the layout run.
func (g *Graph) Stats() Stats { return g.stats }

// Width returns the highest lane used by any node or edge.
func (g *Graph) Width() int {
	w := 0
	for i := range g.nodes {
		for _, l := range g.nodes[i].Lanes {
			w = max(w, l)
		}
		for _, pl := range g.nodes[i].ParentLanes {
			w = max(w, pl.Lane)
		}
	}
	return w
}

// parents returns the arena indices of the in-window parents of node i, in
// parent order. Parents outside the window are skipped.
func (g *Graph) parents(i int) []int {
	ids := g.nodes[i].ParentIDs
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if j, ok := g.index[id]; ok {
			out = append(out, j)
		}
	}
	return out
}
