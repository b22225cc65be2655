// Package autolayout delegates rank assignment for a page's shapes to Graphviz.
//
// # Overview
//
// The geometry engine does not lay out arbitrary graphs itself. This package
// is the external collaborator: it takes node sizes and edges, hands them to
// Graphviz as fixed-size boxes, and returns suggested page-frame centers.
//
//	g := autolayout.FromTree(tree, links)
//	centers, err := autolayout.Layout(ctx, g, autolayout.DefaultOptions())
//	err = autolayout.Apply(tree, centers)
//
// Positions come back from Graphviz in points with the Y axis pointing up,
// which matches the page frame; they are converted to inches and shifted so
// the laid-out drawing's bottom-left corner sits at [Options.Origin].
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process without a system installation.
package autolayout
