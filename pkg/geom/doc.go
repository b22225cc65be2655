// Package geom provides the value types shared by the tsvisio engine:
// [Point], [Size] and the axis-aligned [Rect].
//
// All values are in drawing inches. The page frame has its Y axis pointing up,
// so a rectangle's top edge is its maximum Y.
package geom
