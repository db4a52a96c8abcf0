package render

import "github.com/matzehuels/gitnetwork/pkg/graph"

// Palette is the lane color cycle, as hex RGB.
var Palette = []string{
	"#00D7FF", // cyan
	"#AF87FF", // purple
	"#00FF87", // green
	"#FFD700", // gold
	"#FF5F87", // pink
	"#5FD7FF", // light blue
	"#FFD787", // light orange
	"#87FFD7", // aqua
}

// LaneColor returns the palette color of a lane. Lanes start at 1.
func LaneColor(lane int) string {
	if lane < 1 {
		return Palette[0]
	}
	return Palette[(lane-1)%len(Palette)]
}

// Row returns the display row of time index t: the newest commit is row 0.
func Row(l *graph.Layout, t int) int {
	return l.Len() - 1 - t
}

// Edge is one drawn parent line.
type Edge struct {
	Child, Parent *graph.Node
	Lane          int
}

// Edges lists every parent line of the layout, newest child first.
func Edges(l *graph.Layout) []Edge {
	var out []Edge
	for t := l.Len() - 1; t >= 0; t-- {
		child := l.At(t)
		for _, pl := range child.ParentLanes {
			parent, ok := l.Node(pl.ID)
			if !ok {
				continue
			}
			out = append(out, Edge{Child: child, Parent: parent, Lane: pl.Lane})
		}
	}
	return out
}
