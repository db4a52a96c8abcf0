package network

// resolveParentLanes routes every parent edge once all chains are placed.
//
// An edge keeps the straight continuation lane (the larger of the two
// endpoint lanes) when no commit between its endpoints sits on that lane.
// Otherwise a detour lane is searched downward from the continuation lane,
// never below the smaller endpoint lane. Either way the lane is reserved for
// the edge's span. Nodes are visited newest first.
func (p *placer) resolveParentLanes() error {
	nodes := p.g.nodes
	occupancy := p.commitOccupancy()

	for i := len(nodes) - 1; i >= 0; i-- {
		child := &nodes[i]
		childLane, ok := child.PrimaryLane()
		if !ok {
			continue
		}
		for _, pi := range p.parents[i] {
			parent := &nodes[pi]
			parentLane, ok := parent.PrimaryLane()
			if !ok {
				continue
			}
			span := NewSpan(parent.Time, child.Time)

			base, preferred := parentLane, childLane
			if childLane < parentLane {
				base, preferred = childLane, parentLane
			}

			lane := preferred
			if occupancy.IsOverlapping(span, preferred) {
				var steps int
				var err error
				lane, steps, err = findFreeLane(p.g.reservations.OccupiedLanes(span), span, base, edgeLaneStep, preferred)
				p.g.stats.LaneSearchSteps += steps
				if err != nil {
					return err
				}
			}

			p.g.reservations.Reserve(span, lane)
			child.ParentLanes = append(child.ParentLanes, ParentLane{ID: parent.ID, Lane: lane})
			p.g.stats.Edges++
		}
	}
	return nil
}

// commitOccupancy returns a table holding, at each time index, the lanes of
// the commit sitting there.
func (p *placer) commitOccupancy() *Reservations {
	occ := NewReservations(len(p.g.nodes))
	for i := range p.g.nodes {
		n := &p.g.nodes[i]
		for _, l := range n.Lanes {
			occ.Reserve(Span{From: n.Time, To: n.Time}, l)
		}
	}
	return occ
}
