// Package pkg provides the libraries behind tsvisio, a geometry engine for
// diagram pages made of nested shapes.
//
// # Overview
//
// Shapes are positioned relative to their parent, never absolutely. The
// packages split the work as follows:
//
//  1. [geom], [shape] - points, sizes and the per-page shape tree
//  2. [coords] - resolves parent-relative pins into the page frame
//  3. [connector] - routes connectors between shape boundaries
//  4. [container] - stacks container members and fits the container to them
//  5. [autolayout], [cache] - Graphviz placement of root shapes
//  6. [store], [page], [api] - persistence, editing sessions and HTTP
//
// # Architecture
//
// A typical edit flows through:
//
//	api or cli
//	    ↓
//	[page] (load, edit, save one page)
//	    ↓
//	[shape] tree mutation → [container] relayout → [connector] reroute
//	    ↓
//	[store] (memory, file, redis, mongo)
//
// Ambient concerns live in [config], [errors], [observability] and
// [buildinfo].
//
// # Quick Start
//
//	p, _ := page.New("page-1")
//	a, _ := p.AddShape(shape.New("a", geom.Pt(2, 4), geom.Sz(2, 2)))
//	b, _ := p.AddShape(shape.New("b", geom.Pt(6, 4), geom.Sz(2, 2)))
//	g, _ := p.Connect(a, b) // g.Begin (3,4), g.End (5,4)
//
// [geom]: github.com/zimmermanw84/ts-visio-sub000/pkg/geom
// [shape]: github.com/zimmermanw84/ts-visio-sub000/pkg/shape
// [coords]: github.com/zimmermanw84/ts-visio-sub000/pkg/coords
// [connector]: github.com/zimmermanw84/ts-visio-sub000/pkg/connector
// [container]: github.com/zimmermanw84/ts-visio-sub000/pkg/container
// [autolayout]: github.com/zimmermanw84/ts-visio-sub000/pkg/autolayout
// [cache]: github.com/zimmermanw84/ts-visio-sub000/pkg/cache
// [store]: github.com/zimmermanw84/ts-visio-sub000/pkg/store
// [page]: github.com/zimmermanw84/ts-visio-sub000/pkg/page
// [api]: github.com/zimmermanw84/ts-visio-sub000/pkg/api
// [config]: github.com/zimmermanw84/ts-visio-sub000/pkg/config
// [errors]: github.com/zimmermanw84/ts-visio-sub000/pkg/errors
// [observability]: github.com/zimmermanw84/ts-visio-sub000/pkg/observability
// [buildinfo]: github.com/zimmermanw84/ts-visio-sub000/pkg/buildinfo
package pkg
