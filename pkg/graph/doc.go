// Package graph provides the serialization format for commit-network layouts.
//
// This package defines the canonical wire format for gitnetwork's layout
// data, used for JSON files, API responses, caching, and the MongoDB store.
//
// # Architecture
//
// The package sits at the serialization boundary between the layout engine
// and everything that consumes its output:
//
//   - [Layout], [Node]: serialization types (this package)
//   - pkg/network.Graph: the engine's in-memory result
//
// Use [FromNetwork] to convert an engine result. Renderers in pkg/render
// consume [Layout] only, so a layout file can be rendered without access to
// the repository.
//
// # Constants
//
// This package is the single source of truth for output formats:
//
//	graph.FormatText  // "text"
//	graph.FormatSVG   // "svg"
//	graph.FormatDOT   // "dot"
//	graph.FormatJSON  // "json"
//
// # Layout Serialization
//
//	{
//	  "source": "/src/app",
//	  "ref": "main",
//	  "width": 3,
//	  "timeline": ["2024-01-01T00:01:00Z", "2024-01-01T00:02:00Z"],
//	  "nodes": [
//	    {"id": "a1", "time": 0, "lanes": [1]},
//	    {"id": "b2", "time": 1, "lanes": [1], "parents": ["a1"],
//	     "parent_lanes": [{"id": "a1", "lane": 1}]}
//	  ]
//	}
//
// Common operations:
//
//	l := graph.FromNetwork(g, graph.Meta{Source: dir, Ref: "main"})
//	data, _ := graph.MarshalLayout(l)         // Layout → []byte
//	parsed, _ := graph.UnmarshalLayout(data)  // []byte → Layout (validated)
//	graph.WriteLayoutFile(l, "network.json")
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
