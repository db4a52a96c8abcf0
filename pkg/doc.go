// Package pkg provides the core libraries for gitnetwork commit network
// layouts.
//
// # Overview
//
// gitnetwork assigns every commit in a bounded window of history to a time
// index and one or more lanes, the way hosted "network" views draw branches
// next to each other. The pkg directory is organized as:
//
//  1. [network] - The layout engine: windowing, lane placement, reservations
//  2. [source] - Commit histories from git, GitHub and fixture files
//  3. [graph] - Serialization types for layouts
//  4. [render] - Text, SVG and Graphviz output
//  5. [pipeline] - Orchestration (fetch → layout → render)
//  6. [cache], [store] - Layout caching and persistence
//
// # Architecture
//
//	git / GitHub / history file
//	         ↓
//	    [source] (pages of commits, refs)
//	         ↓
//	    [network] (window + lanes)
//	         ↓
//	    [graph] (Layout)
//	         ↓
//	    [render] → text / SVG / DOT / JSON
//
// # Quick Start
//
//	src, _ := source.Open(".")
//	head, _ := src.Resolve(ctx, "")
//	refs, _ := src.Refs(ctx)
//	window, _ := network.SelectWindowFrom(ctx, src.Pager("", source.DefaultPageSize), head, network.DefaultMaxCommits)
//	g, _ := network.Compute(window, refs, network.Options{PrimaryRef: "main"})
//	l := graph.FromNetwork(g, graph.Meta{Source: src.Name()})
//	fmt.Print(text.Render(l, text.Options{Color: true}))
//
// [network]: github.com/matzehuels/gitnetwork/pkg/network
// [source]: github.com/matzehuels/gitnetwork/pkg/source
// [graph]: github.com/matzehuels/gitnetwork/pkg/graph
// [render]: github.com/matzehuels/gitnetwork/pkg/render
// [pipeline]: github.com/matzehuels/gitnetwork/pkg/pipeline
// [cache]: github.com/matzehuels/gitnetwork/pkg/cache
// [store]: github.com/matzehuels/gitnetwork/pkg/store
package pkg
