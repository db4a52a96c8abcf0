// Package svg renders commit networks as standalone SVG swimlane charts.
//
// Time runs top to bottom with the newest commit first; lanes are columns.
// Every parent line leaves its child diagonally towards its lane, runs
// straight down the lane and enters the parent diagonally, so lines only
// share a column where the layout assigned them the same lane.
package svg

import (
	"fmt"
	"html"
	"strings"

	"github.com/matzehuels/gitnetwork/pkg/graph"
	"github.com/matzehuels/gitnetwork/pkg/render"
)

// Options configures SVG rendering. Zero values select defaults.
type Options struct {
	LaneWidth float64 // horizontal distance between lanes
	RowHeight float64 // vertical distance between commits
	Radius    float64 // commit dot radius
	Margin    float64
	Labels    bool // draw short id, refs and subject right of the lanes
	Dates     bool // draw the commit date left of the lanes
}

// Defaults.
const (
	DefaultLaneWidth = 20.0
	DefaultRowHeight = 24.0
	DefaultRadius    = 5.0
	DefaultMargin    = 16.0

	labelWidth = 420.0
	dateWidth  = 90.0
	fontSize   = 12
)

func (o *Options) setDefaults() {
	if o.LaneWidth <= 0 {
		o.LaneWidth = DefaultLaneWidth
	}
	if o.RowHeight <= 0 {
		o.RowHeight = DefaultRowHeight
	}
	if o.Radius <= 0 {
		o.Radius = DefaultRadius
	}
	if o.Margin <= 0 {
		o.Margin = DefaultMargin
	}
}

type canvas struct {
	l    *graph.Layout
	opts Options
	left float64
}

func (c *canvas) x(lane int) float64 {
	return c.left + float64(lane)*c.opts.LaneWidth
}

func (c *canvas) y(t int) float64 {
	return c.opts.Margin + float64(render.Row(c.l, t))*c.opts.RowHeight + c.opts.RowHeight/2
}

// Render draws the layout.
func Render(l graph.Layout, opts Options) []byte {
	opts.setDefaults()
	c := &canvas{l: &l, opts: opts, left: opts.Margin}
	if opts.Dates {
		c.left += dateWidth
	}

	width := c.x(l.Width) + opts.LaneWidth + opts.Margin
	if opts.Labels {
		width += labelWidth
	}
	height := 2*opts.Margin + float64(l.Len())*opts.RowHeight

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&b, `<style>text{font-family:ui-monospace,monospace;font-size:%dpx;fill:#444}.ref{font-weight:bold;fill:#1a7f37}.date{fill:#888}</style>`+"\n", fontSize)
	b.WriteString(`<rect width="100%" height="100%" fill="white"/>` + "\n")

	b.WriteString(`<g class="edges" fill="none" stroke-width="2">` + "\n")
	for _, e := range render.Edges(&l) {
		fmt.Fprintf(&b, `<path d="%s" stroke="%s"/>`+"\n", c.edgePath(e), render.LaneColor(e.Lane))
	}
	b.WriteString("</g>\n")

	b.WriteString(`<g class="commits">` + "\n")
	for t := l.Len() - 1; t >= 0; t-- {
		c.writeNode(&b, l.At(t))
	}
	b.WriteString("</g>\n")
	b.WriteString("</svg>\n")
	return []byte(b.String())
}

// edgePath returns the path data of one parent line.
func (c *canvas) edgePath(e render.Edge) string {
	half := c.opts.RowHeight / 2
	cx, cy := c.x(e.Child.PrimaryLane()), c.y(e.Child.Time)
	px, py := c.x(e.Parent.PrimaryLane()), c.y(e.Parent.Time)
	lx := c.x(e.Lane)

	pts := [][2]float64{{cx, cy}}
	if lx != cx {
		pts = append(pts, [2]float64{lx, cy + half})
	}
	if lx != px {
		pts = append(pts, [2]float64{lx, py - half})
	}
	pts = append(pts, [2]float64{px, py})

	var d strings.Builder
	for i, p := range pts {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&d, "%s%.1f,%.1f ", cmd, p[0], p[1])
	}
	return strings.TrimSpace(d.String())
}

func (c *canvas) writeNode(b *strings.Builder, n *graph.Node) {
	x, y := c.x(n.PrimaryLane()), c.y(n.Time)
	color := render.LaneColor(n.PrimaryLane())
	fill := color
	if n.IsMerge() {
		fill = "white"
	}

	fmt.Fprintf(b, `<g id="c-%s">`, html.EscapeString(n.ID))
	fmt.Fprintf(b, `<title>%s&#10;%s&#10;%s</title>`,
		html.EscapeString(n.ID), html.EscapeString(n.Author), n.CommittedAt.UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s" stroke-width="2"/>`,
		x, y, c.opts.Radius, fill, color)

	baseline := y + fontSize/3
	if c.opts.Dates {
		fmt.Fprintf(b, `<text class="date" x="%.1f" y="%.1f">%s</text>`,
			c.opts.Margin, baseline, n.CommittedAt.UTC().Format("2006-01-02"))
	}
	if c.opts.Labels {
		tx := c.x(c.l.Width) + c.opts.LaneWidth
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f">%s`, tx, baseline, html.EscapeString(n.ShortID()))
		if len(n.Refs) > 0 {
			fmt.Fprintf(b, ` <tspan class="ref">(%s)</tspan>`, html.EscapeString(strings.Join(n.Refs, ", ")))
		}
		if s := n.Subject(); s != "" {
			fmt.Fprintf(b, " %s", html.EscapeString(s))
		}
		b.WriteString("</text>")
	}
	b.WriteString("</g>\n")
}
