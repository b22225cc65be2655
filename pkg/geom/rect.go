package geom

import "math"

// Rect is an axis-aligned rectangle in a single coordinate frame.
// Min is the bottom-left corner and Max the top-right corner.
type Rect struct {
	Min Point `json:"min" bson:"min" yaml:"min"`
	Max Point `json:"max" bson:"max" yaml:"max"`
}

// RectFromCenter builds the rectangle of the given size centered on c.
func RectFromCenter(c Point, s Size) Rect {
	h := s.Half()
	return Rect{Min: c.Sub(h), Max: c.Add(h)}
}

// RectFromOrigin builds the rectangle of the given size whose bottom-left corner is o.
func RectFromOrigin(o Point, s Size) Rect {
	return Rect{Min: o, Max: o.Add(s.Vec())}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width(), Height: r.Height()} }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Left returns the minimum X.
func (r Rect) Left() float64 { return r.Min.X }

// Right returns the maximum X.
func (r Rect) Right() float64 { return r.Max.X }

// Bottom returns the minimum Y.
func (r Rect) Bottom() float64 { return r.Min.Y }

// Top returns the maximum Y.
func (r Rect) Top() float64 { return r.Max.Y }

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Point{X: math.Min(r.Min.X, o.Min.X), Y: math.Min(r.Min.Y, o.Min.Y)},
		Max: Point{X: math.Max(r.Max.X, o.Max.X), Y: math.Max(r.Max.Y, o.Max.Y)},
	}
}

// Expand grows the rectangle by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{
		Min: Point{X: r.Min.X - pad, Y: r.Min.Y - pad},
		Max: Point{X: r.Max.X + pad, Y: r.Max.Y + pad},
	}
}

// Contains reports whether p lies inside or on the boundary of r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}
