package geom

// Size is the width and height of a shape's bounding box.
type Size struct {
	Width  float64 `json:"width" bson:"width" yaml:"width"`
	Height float64 `json:"height" bson:"height" yaml:"height"`
}

// Sz is a convenience function to create a Size.
func Sz(w, h float64) Size {
	return Size{Width: w, Height: h}
}

// Half returns the half extents as a vector.
func (s Size) Half() Point {
	return Point{X: s.Width / 2, Y: s.Height / 2}
}

// IsZero reports whether both dimensions are zero (an unsized shape).
func (s Size) IsZero() bool { return s.Width == 0 && s.Height == 0 }

// Valid reports whether both dimensions are strictly positive.
func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// Vec returns the size as a vector from a rectangle's min corner to its max corner.
func (s Size) Vec() Point { return Point{X: s.Width, Y: s.Height} }
