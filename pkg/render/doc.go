// Package render holds what every commit-network renderer shares: the lane
// palette and row geometry helpers.
//
// # Renderers
//
// Each output format lives in its own subpackage and consumes a
// [graph.Layout], so layouts can be rendered from a file without access to
// the repository:
//
//   - [text]: terminal lanes drawn with box characters, colored with lipgloss
//   - [svg]: a standalone SVG swimlane chart
//   - [dot]: Graphviz DOT with pinned node positions, rendered to SVG
//
// Rows are drawn newest first: the newest commit sits on row 0.
//
// [text]: github.com/matzehuels/gitnetwork/pkg/render/text
// [svg]: github.com/matzehuels/gitnetwork/pkg/render/svg
// [dot]: github.com/matzehuels/gitnetwork/pkg/render/dot
// [graph.Layout]: github.com/matzehuels/gitnetwork/pkg/graph.Layout
package render
