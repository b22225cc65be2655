package container

import (
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/coords"
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/observability"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
)

const (
	// DefaultSpacing is the gap between consecutive members, in inches.
	DefaultSpacing = 0.125
	// DefaultPadding is the gap between the members and the container edge, in inches.
	DefaultPadding = 0.25

	// fitTolerance is how far computed geometry may drift from the stored one
	// before ResizeToFit writes it back.
	fitTolerance = 1e-9

	// MinExtent is the smallest width or height a member occupies in a stack
	// and in its container's fit, so unsized members still yield a valid
	// container without padding.
	MinExtent = 0.01
)

// Engine performs container membership changes, stacking and sizing.
// It holds no per-tree state and may be shared.
type Engine struct {
	logger   *log.Logger
	defaults shape.ContainerState
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDefaults sets the stack axis, spacing and padding given to shapes that
// become containers through AddMember.
func WithDefaults(axis shape.Axis, spacing, padding float64) Option {
	return func(e *Engine) {
		e.defaults = shape.ContainerState{Axis: axis, Spacing: spacing, Padding: padding}
	}
}

// New creates an Engine with vertical stacking and the default spacing and padding.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		defaults: shape.ContainerState{Axis: shape.AxisVertical, Spacing: DefaultSpacing, Padding: DefaultPadding},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Defaults returns the state given to newly promoted containers.
func (e *Engine) Defaults() shape.ContainerState { return e.defaults }

// =============================================================================
// Membership
// =============================================================================

// AddMember appends memberID to the container's ordered members, then
// restacks and resizes the container. A plain Shape or Group is promoted to a
// Container first, using the engine defaults. The same id added twice appears
// twice.
//
// Errors:
//   - SHAPE_NOT_FOUND when either id is absent
//   - INVALID_MEMBERSHIP when the member is the container itself or one of its
//     ancestors, or when the container is a foreign object
func (e *Engine) AddMember(t *shape.Tree, containerID, memberID string) error {
	c, err := t.Lookup(containerID)
	if err != nil {
		return err
	}
	if _, err := t.Lookup(memberID); err != nil {
		return err
	}
	if err := checkMember(t, containerID, memberID); err != nil {
		return err
	}

	snap := t.Snapshot(t.IDs()...)
	if err := e.addMember(t, c, memberID); err != nil {
		t.Restore(snap)
		return err
	}
	if err := e.cascade(t, c); err != nil {
		t.Restore(snap)
		return err
	}
	e.logger.Debug("added container member", "container", containerID, "member", memberID, "members", len(c.Container.Members))
	return nil
}

func (e *Engine) addMember(t *shape.Tree, c *shape.Record, memberID string) error {
	promoted, err := shape.PromoteToContainer(c, e.defaults)
	if err != nil {
		return err
	}
	if promoted {
		e.logger.Debug("promoted shape to container", "id", c.ID, "axis", c.Container.Axis)
	}
	c.Container.Members = append(c.Container.Members, memberID)

	if err := e.restack(t, c); err != nil {
		return err
	}
	if err := e.resize(t, c, c.Container.Padding); err != nil {
		return err
	}
	return keepBehindMembers(t, c)
}

// Promote turns a Shape or Group into a Container with the given settings, or
// reconfigures an existing Container. A container that already has members is
// restacked and resized with the new settings.
func (e *Engine) Promote(t *shape.Tree, containerID string, axis shape.Axis, spacing, padding float64) error {
	c, err := t.Lookup(containerID)
	if err != nil {
		return err
	}
	state := shape.ContainerState{Axis: axis, Spacing: spacing, Padding: padding}
	if err := state.Validate(); err != nil {
		return err
	}

	snap := t.Snapshot(t.IDs()...)
	promoted, err := shape.PromoteToContainer(c, state)
	if err != nil {
		return err
	}
	if !promoted {
		c.Container.Axis = axis
		c.Container.Spacing = spacing
		c.Container.Padding = padding
	}
	if len(c.Container.Members) == 0 {
		return nil
	}
	err = e.relayout(t, c)
	if err == nil {
		err = e.cascade(t, c)
	}
	if err != nil {
		t.Restore(snap)
		return err
	}
	return nil
}

// =============================================================================
// Layout
// =============================================================================

// Restack positions every member in insertion order along the container's
// stack axis.
func (e *Engine) Restack(t *shape.Tree, containerID string) error {
	c, err := lookupContainer(t, containerID)
	if err != nil {
		return err
	}
	snap := t.Snapshot(t.IDs()...)
	if err := e.restack(t, c); err != nil {
		t.Restore(snap)
		return err
	}
	return nil
}

// ResizeToFit sizes the container around its members plus padding on every
// side and centers it on them. A container without members is left as is.
func (e *Engine) ResizeToFit(t *shape.Tree, containerID string, padding float64) error {
	c, err := lookupContainer(t, containerID)
	if err != nil {
		return err
	}
	if !(padding >= 0) || math.IsInf(padding, 0) {
		return errs.New(errs.ErrCodeInvalidInput, "padding must be >= 0, got %v", padding)
	}
	snap := t.Snapshot(t.IDs()...)
	err = e.resize(t, c, padding)
	if err == nil {
		err = e.cascade(t, c)
	}
	if err != nil {
		t.Restore(snap)
		return err
	}
	return nil
}

// Relayout restacks and resizes the container with its stored padding, then
// lays out every container that holds it as a member.
// Hosts call it after resizing a container's members.
func (e *Engine) Relayout(t *shape.Tree, containerID string) error {
	c, err := lookupContainer(t, containerID)
	if err != nil {
		return err
	}
	snap := t.Snapshot(t.IDs()...)
	err = e.relayout(t, c)
	if err == nil {
		err = e.cascade(t, c)
	}
	if err != nil {
		t.Restore(snap)
		return err
	}
	return nil
}

// Track updates containers after shapeID was moved by delta in the page
// frame. Members of a moved container that are not its descendants move with
// it. Every container listing the shape as a member is resized around its
// members without restacking, and the containers holding those are laid out
// again.
func (e *Engine) Track(t *shape.Tree, shapeID string, delta geom.Point) error {
	r, err := t.Lookup(shapeID)
	if err != nil {
		return err
	}
	snap := t.Snapshot(t.IDs()...)
	if err := e.track(t, r, delta); err != nil {
		t.Restore(snap)
		return err
	}
	return nil
}

func (e *Engine) track(t *shape.Tree, r *shape.Record, delta geom.Point) error {
	if err := carry(t, r, delta, ""); err != nil {
		return err
	}
	for _, o := range owners(t, r.ID) {
		if err := e.resize(t, o, o.Container.Padding); err != nil {
			return err
		}
		if err := e.cascade(t, o); err != nil {
			return err
		}
	}
	return nil
}

// cascade lays out, innermost first, every container that transitively holds
// c as a member. Membership loops are visited once.
func (e *Engine) cascade(t *shape.Tree, c *shape.Record) error {
	visited := map[string]bool{c.ID: true}
	queue := owners(t, c.ID)
	for len(queue) > 0 {
		o := queue[0]
		queue = queue[1:]
		if visited[o.ID] {
			continue
		}
		visited[o.ID] = true
		if err := e.relayout(t, o); err != nil {
			return err
		}
		queue = append(queue, owners(t, o.ID)...)
	}
	return nil
}

func (e *Engine) relayout(t *shape.Tree, c *shape.Record) error {
	if err := e.restack(t, c); err != nil {
		return err
	}
	if err := e.resize(t, c, c.Container.Padding); err != nil {
		return err
	}
	return keepBehindMembers(t, c)
}

func (e *Engine) restack(t *shape.Tree, c *shape.Record) error {
	state := c.Container
	for _, id := range state.Members {
		if err := checkMember(t, c.ID, id); err != nil {
			return err
		}
	}

	box, err := coords.Bounds(t, c.ID)
	if err != nil {
		return err
	}
	// Inner top-left corner; Y grows upward so "down" is decreasing Y.
	anchor := geom.Pt(box.Left()+state.Padding, box.Top()-state.Padding)
	cursor := anchor

	for i, id := range state.Members {
		m, err := t.Lookup(id)
		if err != nil {
			return err
		}
		ext := extent(m.Size)
		half := ext.Half()

		var center geom.Point
		switch state.Axis {
		case shape.AxisHorizontal:
			if i > 0 {
				cursor.X += state.Spacing
			}
			center = geom.Pt(cursor.X+half.X, anchor.Y-half.Y)
			cursor.X += ext.Width
		default:
			if i > 0 {
				cursor.Y -= state.Spacing
			}
			center = geom.Pt(anchor.X+half.X, cursor.Y-half.Y)
			cursor.Y -= ext.Height
		}

		// Pins are resolved one at a time so a member nested inside an
		// earlier member sees that member's new position.
		pin, err := coords.PinForCenter(t, id, center)
		if err != nil {
			return err
		}
		delta := pin.Sub(m.Pin)
		m.Pin = pin
		if err := carry(t, m, delta, c.ID); err != nil {
			return err
		}
	}

	observability.Engine().OnRestack(c.ID, len(state.Members))
	return nil
}

func (e *Engine) resize(t *shape.Tree, c *shape.Record, padding float64) error {
	members := c.Container.Members
	if len(members) == 0 {
		return nil
	}

	var bbox geom.Rect
	for i, id := range members {
		b, err := footprint(t, id)
		if err != nil {
			return err
		}
		if i == 0 {
			bbox = b
		} else {
			bbox = bbox.Union(b)
		}
	}

	size := bbox.Expand(padding).Size()
	locPin := shape.ScaleLocPin(c.LocPin, c.Size, size)
	oldOrigin, err := coords.Origin(t, c.ID)
	if err != nil {
		return err
	}
	newOrigin := bbox.Center().Sub(size.Half())
	pin, err := coords.ToLocal(t, c.ParentID, newOrigin.Add(locPin))
	if err != nil {
		return err
	}

	if sizeClose(size, c.Size) && pointClose(locPin, c.LocPin) && pointClose(pin, c.Pin) {
		observability.Engine().OnResize(c.ID, c.Size.Width, c.Size.Height, false)
		return nil
	}

	if err := t.SetSize(c.ID, size); err != nil {
		return err
	}
	c.LocPin = locPin
	c.Pin = pin

	// The container's frame moved from oldOrigin to newOrigin; shift its
	// children by the opposite amount so they stay put on the page.
	shift := oldOrigin.Sub(newOrigin)
	for _, id := range t.Children(c.ID) {
		child, _ := t.Get(id)
		child.Pin = child.Pin.Add(shift)
	}

	e.logger.Debug("resized container", "id", c.ID, "width", size.Width, "height", size.Height)
	observability.Engine().OnResize(c.ID, size.Width, size.Height, true)
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// footprint returns the member's page-frame box grown to at least MinExtent
// around its center.
func footprint(t *shape.Tree, id string) (geom.Rect, error) {
	b, err := coords.Bounds(t, id)
	if err != nil {
		return geom.Rect{}, err
	}
	if b.Width() >= MinExtent && b.Height() >= MinExtent {
		return b, nil
	}
	return geom.RectFromCenter(b.Center(), extent(b.Size())), nil
}

func extent(s geom.Size) geom.Size {
	return geom.Sz(math.Max(s.Width, MinExtent), math.Max(s.Height, MinExtent))
}

// Owners returns the containers listing id as a member, in tree order.
func Owners(t *shape.Tree, id string) []string {
	var out []string
	for _, o := range owners(t, id) {
		out = append(out, o.ID)
	}
	return out
}

func owners(t *shape.Tree, id string) []*shape.Record {
	var out []*shape.Record
	t.Walk(func(r *shape.Record, _ int) bool {
		if r.Container != nil && slices.Contains(r.Container.Members, id) {
			out = append(out, r)
		}
		return true
	})
	return out
}

// carry shifts, by delta, the members of a moved container and their
// members in turn, except pinned and shapes that already moved with a shifted
// ancestor's frame.
func carry(t *shape.Tree, m *shape.Record, delta geom.Point, pinned string) error {
	if delta == (geom.Point{}) || m.Container == nil {
		return nil
	}
	var order []string
	set := map[string]bool{m.ID: true}
	queue := []*shape.Record{m}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.Container == nil {
			continue
		}
		for _, id := range cur.Container.Members {
			if set[id] || id == pinned {
				continue
			}
			r, err := t.Lookup(id)
			if err != nil {
				return err
			}
			set[id] = true
			order = append(order, id)
			queue = append(queue, r)
		}
	}

	for _, id := range order {
		ancestors, err := t.Ancestors(id)
		if err != nil {
			return err
		}
		if slices.ContainsFunc(ancestors, func(a string) bool { return set[a] }) {
			continue
		}
		r, _ := t.Get(id)
		r.Pin = r.Pin.Add(delta)
	}
	return nil
}

// checkMember rejects members whose movement would move the container itself.
func checkMember(t *shape.Tree, containerID, memberID string) error {
	if memberID == containerID {
		return errs.New(errs.ErrCodeInvalidMembership, "shape %q cannot be a member of itself", memberID)
	}
	if _, err := t.Lookup(memberID); err != nil {
		return err
	}
	ancestors, err := t.Ancestors(containerID)
	if err != nil {
		return err
	}
	if slices.Contains(ancestors, memberID) {
		return errs.New(errs.ErrCodeInvalidMembership, "shape %q is an ancestor of container %q", memberID, containerID)
	}
	return nil
}

// keepBehindMembers moves the container behind every member it shares a
// sibling list with.
func keepBehindMembers(t *shape.Tree, c *shape.Record) error {
	for _, id := range c.Container.Members {
		m, ok := t.Get(id)
		if !ok || m.ParentID != c.ParentID {
			continue
		}
		if err := t.MoveBefore(c.ID, id); err != nil {
			return err
		}
	}
	return nil
}

func pointClose(a, b geom.Point) bool { return a.ApproxEqual(b, fitTolerance) }

func sizeClose(a, b geom.Size) bool {
	return math.Abs(a.Width-b.Width) <= fitTolerance && math.Abs(a.Height-b.Height) <= fitTolerance
}
