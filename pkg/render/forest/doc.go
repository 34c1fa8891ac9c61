// Package forest renders a suite classification as a Graphviz diagram.
//
// Every suite becomes a cluster containing its root (bold) and the members
// only it absorbs. Members claimed by several suites are drawn outside any
// cluster and highlighted, with an edge from each claiming root.
//
//	dot := forest.ToDOT(result, forest.Options{Detailed: true})
//	svg, err := forest.RenderSVG(dot)
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package forest
