package network

import "sort"

// Lane search steps. Chains leave a gap between siblings; edges pack tighter.
const (
	chainLaneStep = 2
	edgeLaneStep  = -1
	trunkLane     = 1
)

// placer runs chain placement and edge routing over one graph.
type placer struct {
	g          *Graph
	parents    [][]int // in-window parent indices per node
	primaryRef string
}

func newPlacer(g *Graph, primaryRef string) *placer {
	p := &placer{
		g:          g,
		parents:    make([][]int, len(g.nodes)),
		primaryRef: primaryRef,
	}
	for i := range g.nodes {
		p.parents[i] = g.parents(i)
	}
	return p
}

// priorityOrder returns node indices in placement order: commits carrying
// the primary ref first, then newest commit date first. Equal dates fall
// back to the newer time index.
func (p *placer) priorityOrder() []int {
	nodes := p.g.nodes
	order := make([]int, len(nodes))
	for i := range order {
		order[i] = len(nodes) - 1 - i
	}
	sort.SliceStable(order, func(a, b int) bool {
		na, nb := &nodes[order[a]], &nodes[order[b]]
		pa, pb := na.HasRef(p.primaryRef), nb.HasRef(p.primaryRef)
		if pa != pb {
			return pa
		}
		if !na.CommittedAt.Equal(nb.CommittedAt) {
			return na.CommittedAt.After(nb.CommittedAt)
		}
		return na.Time > nb.Time
	})
	return order
}

// frame is one pending chain on the work stack: after the chain's run is
// placed, its merge parents are visited leaf by leaf, parent by parent.
type frame struct {
	run    []int
	leaf   int // position in run
	parent int // position in parents of run[leaf]
}

// next returns the next merge parent of the run that still needs a chain,
// together with the time of the commit it forks from.
func (f *frame) next(p *placer) (parent, forkTime int, ok bool) {
	for f.leaf < len(f.run) {
		l := f.run[f.leaf]
		ps := p.parents[l]
		for f.parent < len(ps) {
			c := ps[f.parent]
			f.parent++
			if !p.g.nodes[c].Placed() {
				return c, p.g.nodes[l].Time, true
			}
		}
		f.leaf++
		f.parent = 0
	}
	return 0, 0, false
}

// placeAll places a chain starting at every unplaced node in priority order.
// Forks are processed depth-first from an explicit stack, in the same order
// a recursive walk over runs and their parents would visit them.
func (p *placer) placeAll() error {
	for _, start := range p.priorityOrder() {
		if p.g.nodes[start].Placed() {
			continue
		}
		run, err := p.placeChain(start, -1)
		if err != nil {
			return err
		}
		stack := []*frame{{run: run}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			parent, forkTime, ok := top.next(p)
			if !ok {
				stack = stack[:len(stack)-1]
				continue
			}
			run, err := p.placeChain(parent, forkTime)
			if err != nil {
				return err
			}
			if len(run) > 0 {
				stack = append(stack, &frame{run: run})
			}
		}
	}
	return nil
}

// takeRun follows first in-window parents from start while they are
// unplaced and returns the visited nodes, newest first.
func (p *placer) takeRun(start int) []int {
	var run []int
	seen := make(map[int]bool)
	for c := start; !p.g.nodes[c].Placed() && !seen[c]; {
		run = append(run, c)
		seen[c] = true
		ps := p.parents[c]
		if len(ps) == 0 {
			break
		}
		c = ps[0]
	}
	return run
}

// placeChain assigns one lane to the run starting at start and reserves it.
// forkTime is the time of the child the run forked from, or -1 for a run
// started from the priority order.
func (p *placer) placeChain(start, forkTime int) ([]int, error) {
	nodes := p.g.nodes
	run := p.takeRun(start)
	if len(run) == 0 {
		return nil, nil
	}
	first, last := run[0], run[len(run)-1]
	span := NewSpan(nodes[last].Time, nodes[first].Time)

	base := trunkLane
	terminal := -1
	if ps := p.parents[last]; len(ps) > 0 {
		terminal = ps[0]
		if lane, ok := nodes[terminal].PrimaryLane(); ok {
			base = lane
		}
	}

	lane, steps, err := findFreeLane(p.g.reservations.OccupiedLanes(span), span, base, chainLaneStep, base)
	p.g.stats.LaneSearchSteps += steps
	if err != nil {
		return nil, err
	}

	for _, l := range run {
		nodes[l].addLane(lane)
		for _, c := range p.parents[l] {
			if l == last && c == terminal {
				continue
			}
			if nodes[c].Placed() {
				nodes[c].addLane(lane)
			}
		}
	}

	minTime := nodes[last].Time
	for _, c := range p.parents[last] {
		minTime = min(minTime, nodes[c].Time)
	}
	maxTime := nodes[first].Time
	if forkTime >= 0 {
		maxTime = forkTime - 1
	}
	reserved := NewSpan(minTime, maxTime)
	p.g.reservations.Reserve(reserved, lane)

	p.g.chains = append(p.g.chains, Chain{
		Head:     nodes[first].ID,
		Lane:     lane,
		Run:      span,
		Reserved: reserved,
	})
	p.g.stats.Chains++
	return run, nil
}
