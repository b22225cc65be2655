package shape

import (
	"fmt"

	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
)

// Kind distinguishes plain shapes from groups, containers and foreign objects.
//
// Kind only moves forward: Shape becomes Group when it acquires a child, and
// Shape or Group becomes Container on its first membership add. Nothing in
// this package turns a Group or Container back into a Shape.
type Kind int

const (
	// KindShape is a leaf shape without children or membership metadata.
	KindShape Kind = iota
	// KindGroup is a shape that owns at least one child.
	KindGroup
	// KindContainer is a shape carrying ordered membership metadata.
	KindContainer
	// KindForeign is an embedded foreign object (image, OLE). Its extents are
	// owned by the packaging layer and it may be unsized.
	KindForeign
)

var kindNames = [...]string{
	KindShape:     "shape",
	KindGroup:     "group",
	KindContainer: "container",
	KindForeign:   "foreign",
}

// String returns the lowercase wire name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a wire name back into a Kind.
// An empty string parses as KindShape.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindShape, nil
	}
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return KindShape, errs.New(errs.ErrCodeInvalidInput, "unknown shape kind %q", s)
}

// Axis is the stacking direction of a container.
type Axis int

const (
	// AxisVertical stacks members top to bottom.
	AxisVertical Axis = iota
	// AxisHorizontal stacks members left to right.
	AxisHorizontal
)

// String returns the lowercase wire name of the axis.
func (a Axis) String() string {
	switch a {
	case AxisVertical:
		return "vertical"
	case AxisHorizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// ParseAxis converts a wire name back into an Axis.
// An empty string parses as AxisVertical.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "", "vertical":
		return AxisVertical, nil
	case "horizontal":
		return AxisHorizontal, nil
	default:
		return AxisVertical, errs.New(errs.ErrCodeInvalidInput, "unknown stack axis %q", s)
	}
}

// ContainerState is the ordered membership metadata of a container.
//
// Members keeps strict insertion order. Ids are never deduplicated, removed
// or reordered by the engine.
type ContainerState struct {
	Members []string
	Axis    Axis
	Spacing float64
	Padding float64
}

// Clone returns a deep copy of the state.
func (c *ContainerState) Clone() *ContainerState {
	if c == nil {
		return nil
	}
	out := *c
	out.Members = append([]string(nil), c.Members...)
	return &out
}

// Validate checks that spacing and padding are finite and non-negative.
func (c *ContainerState) Validate() error {
	if !(c.Spacing >= 0) || isInf(c.Spacing) {
		return errs.New(errs.ErrCodeInvalidInput, "container spacing must be >= 0, got %v", c.Spacing)
	}
	if !(c.Padding >= 0) || isInf(c.Padding) {
		return errs.New(errs.ErrCodeInvalidInput, "container padding must be >= 0, got %v", c.Padding)
	}
	return nil
}

// PromoteToGroup marks r as a Group if it is still a plain Shape.
// Containers and foreign objects keep their kind. It reports whether the kind changed.
func PromoteToGroup(r *Record) bool {
	if r.Kind != KindShape {
		return false
	}
	r.Kind = KindGroup
	return true
}

// PromoteToContainer turns a Shape or Group into a Container carrying state.
// An existing Container keeps its current state and the call reports false.
// Foreign objects cannot become containers.
func PromoteToContainer(r *Record, state ContainerState) (bool, error) {
	switch r.Kind {
	case KindContainer:
		return false, nil
	case KindForeign:
		return false, errs.New(errs.ErrCodeInvalidMembership, "foreign shape %q cannot become a container", r.ID)
	}
	if err := state.Validate(); err != nil {
		return false, err
	}
	r.Kind = KindContainer
	r.Container = state.Clone()
	if r.Container.Members == nil {
		r.Container.Members = []string{}
	}
	return true, nil
}
