// Package coords resolves shape positions from their parent-relative pins into
// the page frame.
//
// Composition rule, applied from a shape up to its root:
//
//	absolute(S) = origin(P) + pin(S)      where P is S's parent
//	origin(P)   = absolute(P) - locPin(P)
//	absolute(R) = pin(R)                  for a root shape R
//
// Every call walks the live ancestor chain; nothing is cached, because any
// ancestor may have moved since the previous call. A revisited id aborts the
// walk with CYCLIC_ANCESTRY instead of looping.
//
// The package only reads through [Source]; it never mutates a tree.
package coords

import (
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
)

// Source is the read-only view of a shape tree the resolver needs.
// *shape.Tree satisfies it.
type Source interface {
	Get(id string) (*shape.Record, bool)
}

var _ Source = (*shape.Tree)(nil)

// Absolute returns the page-frame position of the shape's pin.
func Absolute(src Source, id string) (geom.Point, error) {
	r, ok := src.Get(id)
	if !ok {
		return geom.Point{}, errs.New(errs.ErrCodeShapeNotFound, "shape %q not found", id)
	}

	chain := []*shape.Record{r}
	visited := map[string]bool{id: true}
	for cur := r; cur.ParentID != ""; {
		pid := cur.ParentID
		if visited[pid] {
			return geom.Point{}, errs.New(errs.ErrCodeCyclicAncestry, "ancestry of %q revisits %q", id, pid)
		}
		visited[pid] = true

		parent, ok := src.Get(pid)
		if !ok {
			return geom.Point{}, errs.New(errs.ErrCodeShapeNotFound, "parent %q of %q not found", pid, cur.ID)
		}
		chain = append(chain, parent)
		cur = parent
	}

	// Fold from the root down so each step is literally origin(P) + pin(S).
	abs := chain[len(chain)-1].Pin
	for i := len(chain) - 2; i >= 0; i-- {
		parent := chain[i+1]
		abs = abs.Sub(parent.LocPin).Add(chain[i].Pin)
	}
	return abs, nil
}

// Origin returns the page-frame position of the bottom-left corner of the
// shape's bounding box.
func Origin(src Source, id string) (geom.Point, error) {
	abs, err := Absolute(src, id)
	if err != nil {
		return geom.Point{}, err
	}
	r, _ := src.Get(id)
	return abs.Sub(r.LocPin), nil
}

// FrameOrigin returns the page-frame origin of the coordinate frame that the
// children of parentID are expressed in. The page frame (empty parentID) has
// its origin at (0,0).
func FrameOrigin(src Source, parentID string) (geom.Point, error) {
	if parentID == "" {
		return geom.Point{}, nil
	}
	return Origin(src, parentID)
}

// Bounds returns the shape's bounding box in the page frame.
// Unsized shapes yield a zero-area rectangle at their pin.
func Bounds(src Source, id string) (geom.Rect, error) {
	o, err := Origin(src, id)
	if err != nil {
		return geom.Rect{}, err
	}
	r, _ := src.Get(id)
	return geom.RectFromOrigin(o, r.Size), nil
}

// Center returns the page-frame center of the shape's bounding box.
func Center(src Source, id string) (geom.Point, error) {
	b, err := Bounds(src, id)
	if err != nil {
		return geom.Point{}, err
	}
	return b.Center(), nil
}

// ToLocal converts a page-frame point into the frame children of parentID live in.
func ToLocal(src Source, parentID string, abs geom.Point) (geom.Point, error) {
	o, err := FrameOrigin(src, parentID)
	if err != nil {
		return geom.Point{}, err
	}
	return abs.Sub(o), nil
}

// PinForCenter returns the local pin that places the shape's bounding-box
// center at the given page-frame point, keeping its size and locpin.
func PinForCenter(src Source, id string, center geom.Point) (geom.Point, error) {
	r, ok := src.Get(id)
	if !ok {
		return geom.Point{}, errs.New(errs.ErrCodeShapeNotFound, "shape %q not found", id)
	}
	absPin := center.Sub(r.Size.Half()).Add(r.LocPin)
	return ToLocal(src, r.ParentID, absPin)
}
