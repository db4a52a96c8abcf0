// Package dot renders commit networks as Graphviz graphs.
//
// [ToDOT] pins every commit at its computed lane and row, so Graphviz only
// routes the edges and never moves a commit. [RenderSVG] runs the embedded
// Graphviz with the neato engine, which honors pinned positions.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gitnetwork/pkg/graph"
	"github.com/matzehuels/gitnetwork/pkg/render"
)

// Options configures DOT generation.
type Options struct {
	// Detailed puts refs and the subject into the node label.
	// When false, only the short id is shown.
	Detailed bool
}

// Grid spacing in points.
const (
	laneSpacing = 36
	rowSpacing  = 36
)

// ToDOT converts a layout to Graphviz DOT source with pinned positions.
func ToDOT(l graph.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph network {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=circle, style=filled, width=0.25, fixedsize=true, fontsize=10, label=\"\"];\n")
	buf.WriteString("  edge [arrowhead=none, penwidth=2];\n")
	buf.WriteString("\n")

	for t := l.Len() - 1; t >= 0; t-- {
		n := l.At(t)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range render.Edges(&l) {
		fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", e.Child.ID, e.Parent.ID, render.LaneColor(e.Lane))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n *graph.Node, detailed bool) []string {
	lane := n.PrimaryLane()
	x := lane * laneSpacing
	y := n.Time * rowSpacing
	color := render.LaneColor(lane)

	attrs := []string{
		fmt.Sprintf("pos=\"%d,%d!\"", x, y),
		fmt.Sprintf("color=%q", color),
		fmt.Sprintf("xlabel=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("tooltip=%q", n.ID),
	}
	if n.IsMerge() {
		attrs = append(attrs, "fillcolor=white")
	} else {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", color))
	}
	return attrs
}

func fmtLabel(n *graph.Node, detailed bool) string {
	if !detailed {
		return n.ShortID()
	}
	label := n.ShortID()
	if len(n.Refs) > 0 {
		label += " (" + strings.Join(n.Refs, ", ") + ")"
	}
	if s := n.Subject(); s != "" {
		label += " " + s
	}
	return label
}

// RenderSVG renders DOT source to SVG using the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element, which carries pt
// units and a transform-dependent viewBox, with a plain scalable one.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
