// Package text renders commit networks for the terminal.
//
// Each commit occupies one line, newest first. Lanes are columns drawn with
// box characters; the commit's short id, refs and subject follow the lanes.
//
//	◎     3f2a1c9 (main) Merge branch 'topic'
//	│ ┐
//	● │   8d1e0b2 Fix parser
//	│ ● 44a0c1e (topic) Add lanes
//	◆ ┘   0b9e7f1 Initial commit
//
// Colors come from [render.Palette] through lipgloss and can be disabled.
package text

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gitnetwork/pkg/graph"
	"github.com/matzehuels/gitnetwork/pkg/render"
)

// Commit markers.
const (
	MarkerCommit = "●"
	MarkerMerge  = "◎"
	MarkerRoot   = "◆"
)

// Options configures text rendering.
type Options struct {
	// Color enables lane and metadata colors.
	Color bool

	// Author appends the author name to every line.
	Author bool

	// MaxSubject truncates subjects longer than this many runes. Zero keeps
	// them whole.
	MaxSubject int
}

// cell directions.
const (
	up = 1 << iota
	down
	left
	right
	marker
)

// glyphs maps a direction set to a box character.
var glyphs = map[int]string{
	up:                       "│",
	down:                     "│",
	up | down:                "│",
	left:                     "─",
	right:                    "─",
	left | right:             "─",
	down | left:              "┐",
	down | right:             "┌",
	up | left:                "┘",
	up | right:               "└",
	up | down | left:         "┤",
	up | down | right:        "├",
	down | left | right:      "┬",
	up | left | right:        "┴",
	up | down | left | right: "┼",
}

// grid is the lane area: one cell per (row, lane) plus the lane owning
// each cell's color.
type grid struct {
	width int
	cells [][]int
	color [][]int
}

func newGrid(rows, width int) *grid {
	g := &grid{width: width, cells: make([][]int, rows), color: make([][]int, rows)}
	for r := range g.cells {
		g.cells[r] = make([]int, width+1)
		g.color[r] = make([]int, width+1)
	}
	return g
}

func (g *grid) set(row, lane, dirs, colorLane int) {
	if lane < 1 || lane > g.width {
		return
	}
	g.cells[row][lane] |= dirs
	if g.color[row][lane] == 0 || dirs&marker != 0 {
		g.color[row][lane] = colorLane
	}
}

// hline draws the horizontal part of an edge on row between lanes from and
// to, ending in a corner at to that turns towards vertical.
func (g *grid) hline(row, from, to, vertical, colorLane int) {
	if from == to {
		return
	}
	step, inward, outward := 1, left, right
	if to < from {
		step, inward, outward = -1, right, left
	}
	for l := from + step; l != to; l += step {
		g.set(row, l, left|right, colorLane)
	}
	g.set(row, to, inward|vertical, colorLane)
	// the source cell gains a stub towards the line
	g.set(row, from, outward, colorLane)
}

// Render draws the layout.
func Render(l graph.Layout, opts Options) string {
	n := l.Len()
	if n == 0 {
		return ""
	}
	g := newGrid(n, l.Width)

	for t := range n {
		node := l.At(t)
		g.set(render.Row(&l, t), node.PrimaryLane(), marker, node.PrimaryLane())
	}

	for _, e := range render.Edges(&l) {
		childRow := render.Row(&l, e.Child.Time)
		parentRow := render.Row(&l, e.Parent.Time)
		cl, pl := e.Child.PrimaryLane(), e.Parent.PrimaryLane()

		g.hline(childRow, cl, e.Lane, down, e.Lane)
		for r := childRow + 1; r < parentRow; r++ {
			g.set(r, e.Lane, up|down, e.Lane)
		}
		g.hline(parentRow, pl, e.Lane, up, e.Lane)
	}

	st := newStyles(opts.Color)
	var b strings.Builder
	for t := n - 1; t >= 0; t-- {
		node := l.At(t)
		row := render.Row(&l, t)
		b.WriteString(g.line(row, node, st))
		b.WriteString(" ")
		b.WriteString(describe(node, opts, st))
		b.WriteString("\n")
	}
	return b.String()
}

// line renders one grid row, two columns per lane.
func (g *grid) line(row int, node *graph.Node, st styles) string {
	var b strings.Builder
	for lane := 1; lane <= g.width; lane++ {
		dirs := g.cells[row][lane]
		glyph := " "
		switch {
		case dirs&marker != 0:
			glyph = markerFor(node)
		case dirs != 0:
			glyph = glyphs[dirs]
		}
		b.WriteString(st.lane(g.color[row][lane], glyph))

		gap := " "
		if lane < g.width && dirs&right != 0 && g.cells[row][lane+1]&left != 0 {
			gap = "─"
		}
		if lane < g.width {
			b.WriteString(st.lane(g.color[row][lane+1], gap))
		}
	}
	return b.String()
}

func markerFor(n *graph.Node) string {
	switch {
	case n.IsMerge():
		return MarkerMerge
	case len(n.Parents) == 0:
		return MarkerRoot
	default:
		return MarkerCommit
	}
}

func describe(n *graph.Node, opts Options, st styles) string {
	parts := []string{st.id.Render(n.ShortID())}
	if len(n.Refs) > 0 {
		parts = append(parts, st.refs.Render("("+strings.Join(n.Refs, ", ")+")"))
	}
	subject := n.Subject()
	if opts.MaxSubject > 0 {
		if r := []rune(subject); len(r) > opts.MaxSubject {
			subject = string(r[:max(opts.MaxSubject-3, 0)]) + "..."
		}
	}
	if subject != "" {
		parts = append(parts, subject)
	}
	if opts.Author && n.Author != "" {
		parts = append(parts, st.author.Render("<"+n.Author+">"))
	}
	return strings.Join(parts, " ")
}

type styles struct {
	color  bool
	id     lipgloss.Style
	refs   lipgloss.Style
	author lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		return styles{}
	}
	return styles{
		color:  true,
		id:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		refs:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF87")),
		author: lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD7FF")),
	}
}

func (s styles) lane(lane int, glyph string) string {
	if !s.color || lane == 0 || glyph == " " {
		return glyph
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(render.LaneColor(lane))).Render(glyph)
}
