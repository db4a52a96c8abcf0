package network

import (
	"fmt"
	"slices"
)

// Span is an inclusive range of time indices. From is never greater than To.
type Span struct {
	From int
	To   int
}

// NewSpan returns the span covering a and b in either order.
func NewSpan(a, b int) Span {
	if a > b {
		a, b = b, a
	}
	return Span{From: a, To: b}
}

// Len returns the number of time indices in the span.
func (s Span) Len() int { return s.To - s.From + 1 }

// Contains reports whether t lies inside the span, endpoints included.
func (s Span) Contains(t int) bool { return t >= s.From && t <= s.To }

// Overlaps reports whether the two spans share at least one time index.
func (s Span) Overlaps(o Span) bool { return s.From <= o.To && o.From <= s.To }

func (s Span) String() string { return fmt.Sprintf("[%d,%d]", s.From, s.To) }

// LaneSet is a set of lanes.
type LaneSet map[int]struct{}

// Has reports whether lane is in the set.
func (s LaneSet) Has(lane int) bool {
	_, ok := s[lane]
	return ok
}

// Sorted returns the lanes in ascending order.
func (s LaneSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

// Claim records one reservation made through [Reservations.Reserve].
type Claim struct {
	Span Span
	Lane int
}

// Reservations is a time-indexed multiset of occupied lanes.
//
// Time indices outside [0, size) are ignored. The zero value is not usable;
// create one with [NewReservations].
type Reservations struct {
	byTime [][]int
	claims []Claim
}

// NewReservations creates a table for size time indices.
func NewReservations(size int) *Reservations {
	return &Reservations{byTime: make([][]int, max(size, 0))}
}

// Size returns the number of time indices tracked.
func (r *Reservations) Size() int { return len(r.byTime) }

// Reserve marks lane as occupied at every time index of span.
func (r *Reservations) Reserve(span Span, lane int) {
	for t := max(span.From, 0); t <= span.To && t < len(r.byTime); t++ {
		r.byTime[t] = append(r.byTime[t], lane)
	}
	r.claims = append(r.claims, Claim{Span: span, Lane: lane})
}

// IsOverlapping reports whether lane is reserved at a time index strictly
// between the endpoints of span. Lines may meet at a shared endpoint.
func (r *Reservations) IsOverlapping(span Span, lane int) bool {
	for t := max(span.From+1, 0); t < span.To && t < len(r.byTime); t++ {
		if slices.Contains(r.byTime[t], lane) {
			return true
		}
	}
	return false
}

// OccupiedLanes returns every lane reserved anywhere within span.
func (r *Reservations) OccupiedLanes(span Span) LaneSet {
	set := LaneSet{}
	for t := max(span.From, 0); t <= span.To && t < len(r.byTime); t++ {
		for _, l := range r.byTime[t] {
			set[l] = struct{}{}
		}
	}
	return set
}

// LanesAt returns the lanes reserved at time t, in reservation order.
func (r *Reservations) LanesAt(t int) []int {
	if t < 0 || t >= len(r.byTime) {
		return nil
	}
	return slices.Clone(r.byTime[t])
}

// Claims returns all reservations in the order they were made.
func (r *Reservations) Claims() []Claim { return slices.Clone(r.claims) }

// FreeLane searches the first lane not occupied within span, starting at
// preferred and stepping by step. See [findFreeLane] for the walk.
func (r *Reservations) FreeLane(span Span, base, step, preferred int) (int, error) {
	lane, _, err := findFreeLane(r.OccupiedLanes(span), span, base, step, preferred)
	return lane, err
}

// findFreeLane walks from preferred in increments of step until it reaches a
// lane missing from occupied. Whenever the walk drops below base the step is
// negated and the walk restarts at base+step, so a downward search turns into
// an upward one. The second result is the number of steps taken; span is
// only used to describe a failed search.
func findFreeLane(occupied LaneSet, span Span, base, step, preferred int) (int, int, error) {
	if step == 0 {
		step = 2
	}
	lane := preferred
	steps := 0
	for occupied.Has(lane) {
		if steps >= MaxLaneSearchSteps {
			return 0, steps, &InvariantViolationError{Op: "find free lane", Span: span, Steps: steps}
		}
		lane += step
		if lane < base {
			step = -step
			lane = base + step
		}
		steps++
	}
	return lane, steps, nil
}
