// Package shape provides the page-level shape tree of the tsvisio engine.
//
// # Overview
//
// A [Tree] owns every [Record] on one page. Each record has a pin (anchor point
// in its parent's frame), a locpin (offset from the bounding-box origin to the
// pin) and a size. The tree is the single source of truth for hierarchy and
// local geometry; absolute positions are derived on demand by package coords.
//
//	t := shape.NewTree("page-1")
//	_ = t.Add(shape.New("frame", geom.Pt(4, 4), geom.Sz(6, 4)))
//	child := shape.New("label", geom.Pt(1, 1), geom.Sz(1, 0.5))
//	child.ParentID = "frame"
//	_ = t.Add(child)
//
// # Kinds
//
// [Kind] is a closed enum with one-way transitions:
//
//   - [KindShape] becomes [KindGroup] on its first child ([PromoteToGroup])
//   - Shape or Group becomes [KindContainer] on its first member ([PromoteToContainer])
//   - [KindForeign] never changes kind and may be unsized
//
// # Z-Order
//
// Each parent keeps its children in a sibling list ordered back to front.
// [Tree.Add] and [Tree.Attach] append, [Tree.MoveBefore] is the only reordering
// primitive. Containers rely on it to stay behind their members.
//
// # Traversal
//
// [Tree.Walk] and [Tree.Descendants] use an explicit worklist rather than
// recursion, because nesting depth is controlled by the caller.
//
// # Concurrency
//
// A Tree is owned by a single page session. It performs no locking; hosts
// that edit concurrently must serialize mutations per page.
package shape
