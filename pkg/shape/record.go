package shape

import (
	"math"

	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
)

// Record is a positioned shape on a page.
//
// Pin is expressed in the immediate parent's local frame (the page frame for
// root shapes). LocPin is the offset from the shape's bounding-box origin to
// its pin. Absolute coordinates are never stored; see package coords.
type Record struct {
	ID       string
	ParentID string // empty for root shapes
	Name     string // optional display label

	Pin    geom.Point
	LocPin geom.Point
	Size   geom.Size

	Kind      Kind
	Container *ContainerState // non-nil only for KindContainer
}

// New returns a plain shape record whose LocPin sits at the center of its box,
// so Pin is also the shape's center.
func New(id string, pin geom.Point, size geom.Size) Record {
	return Record{
		ID:     id,
		Pin:    pin,
		LocPin: size.Half(),
		Size:   size,
	}
}

// IsRoot reports whether the shape lives directly on the page.
func (r *Record) IsRoot() bool { return r.ParentID == "" }

// Unsized reports whether the shape carries no explicit size.
func (r *Record) Unsized() bool { return r.Size.IsZero() }

// LocalOrigin returns the bottom-left corner of the shape's box in its parent's frame.
func (r *Record) LocalOrigin() geom.Point { return r.Pin.Sub(r.LocPin) }

// LocalCenter returns the center of the shape's box in its parent's frame.
func (r *Record) LocalCenter() geom.Point { return r.LocalOrigin().Add(r.Size.Half()) }

// clone returns a deep copy of the record.
func (r *Record) clone() Record {
	out := *r
	out.Container = r.Container.Clone()
	return out
}

// validateGeometry rejects sizes and positions that downstream geometry cannot handle.
// Only foreign objects may be unsized; every other kind needs a positive area.
func validateGeometry(r *Record) error {
	if !finite(r.Pin.X, r.Pin.Y, r.LocPin.X, r.LocPin.Y) {
		return errs.New(errs.ErrCodeInvalidInput, "shape %q has a non-finite pin", r.ID)
	}
	return validateSize(r.ID, r.Kind, r.Size)
}

func validateSize(id string, kind Kind, s geom.Size) error {
	if !finite(s.Width, s.Height) {
		return errs.New(errs.ErrCodeInvalidDimensions, "shape %q has non-finite size %vx%v", id, s.Width, s.Height)
	}
	if kind == KindForeign && s.IsZero() {
		return nil
	}
	if !s.Valid() {
		return errs.New(errs.ErrCodeInvalidDimensions, "shape %q must have positive width and height, got %vx%v", id, s.Width, s.Height)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func isInf(v float64) bool { return math.IsInf(v, 0) }
