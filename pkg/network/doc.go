// Package network computes commit-network layouts: deterministic
// two-dimensional coordinates for a window of git history, suitable for
// drawing a branch/merge swimlane chart.
//
// # Coordinates
//
// Every commit in the window receives a time index and one or more lanes:
//
//   - Time is dense over 0..N-1. Time 0 is the oldest commit of the window,
//     N-1 the newest. Parents always have a smaller time than their children.
//   - Lanes are positive integers. The first lane of a node is its primary
//     lane; additional lanes appear on merge parents that host incoming lines.
//   - ParentLanes holds, for every in-window parent, the lane used to draw the
//     edge towards that parent.
//
// # Algorithm
//
// Layout runs in four phases over an immutable commit snapshot:
//
//  1. [SelectWindow] picks at most MaxCommits commits, centered on a target.
//  2. The time axis is assigned by reversing the window to oldest-first.
//  3. Chains (runs of first-parent links) are placed in priority order:
//     commits decorated with the primary ref first, then newest first. Each
//     chain searches a free lane in a [Reservations] table and reserves it for
//     the span it covers; merge parents spawn nested chains, processed
//     depth-first from an explicit work stack.
//  4. Each parent edge is routed on the straight continuation lane when the
//     rows it crosses are free, otherwise on the nearest free detour lane.
//
// The engine performs no I/O and never logs. A [Graph] is built fresh per
// call and is not safe for concurrent mutation; independent layouts may run
// in parallel.
//
// # Usage
//
//	window := network.SelectWindow(history, target, network.DefaultMaxCommits)
//	g, err := network.Compute(window, refs, network.Options{PrimaryRef: "main"})
//	if err != nil {
//	    return err
//	}
//	for _, n := range g.Nodes() {
//	    lane, _ := n.PrimaryLane()
//	    fmt.Println(n.ID, n.Time, lane, n.ParentLanes)
//	}
package network
