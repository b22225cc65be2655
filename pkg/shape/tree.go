package shape

import (
	"slices"

	"github.com/google/uuid"

	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
)

// pageKey is the children-index key for shapes placed directly on the page.
const pageKey = ""

// Tree owns every shape record of one page together with the parent/child
// relation and the sibling (z-order) sequence of each parent.
//
// Sibling lists are kept in rendering order: earlier entries render behind
// later ones. A child always renders in front of its parent.
//
// The zero value is not usable - use NewTree. Tree is not safe for concurrent
// use; callers serialize access per page.
type Tree struct {
	pageID   string
	records  map[string]*Record
	children map[string][]string // parent id ("" = page) -> sibling ids in z-order
}

// NewTree creates an empty tree for the given page.
func NewTree(pageID string) *Tree {
	return &Tree{
		pageID:   pageID,
		records:  make(map[string]*Record),
		children: make(map[string][]string),
	}
}

// PageID returns the identifier of the page the tree belongs to.
func (t *Tree) PageID() string { return t.pageID }

// Len returns the number of shapes in the tree.
func (t *Tree) Len() int { return len(t.records) }

// NewID returns a fresh shape id that is not yet used in the tree.
func (t *Tree) NewID() string {
	for {
		id := uuid.NewString()
		if _, taken := t.records[id]; !taken {
			return id
		}
	}
}

// Add validates rec and inserts a copy of it into the tree.
//
// Validation happens before anything is stored:
//   - the id must be valid and unused (INVALID_INPUT, DUPLICATE_SHAPE)
//   - the parent, when set, must already exist (SHAPE_NOT_FOUND)
//   - the size must be positive, except for unsized foreign objects (INVALID_DIMENSIONS)
//
// The shape is appended to the end of its parent's sibling list, which places
// it in front of existing siblings. A Shape parent is promoted to Group.
func (t *Tree) Add(rec Record) error {
	if err := errs.ValidateShapeID(rec.ID); err != nil {
		return err
	}
	if _, exists := t.records[rec.ID]; exists {
		return errs.New(errs.ErrCodeDuplicateShape, "shape %q already exists", rec.ID)
	}
	var parent *Record
	if rec.ParentID != "" {
		p, ok := t.records[rec.ParentID]
		if !ok {
			return errs.New(errs.ErrCodeShapeNotFound, "parent %q of shape %q not found", rec.ParentID, rec.ID)
		}
		parent = p
	}
	if err := validateGeometry(&rec); err != nil {
		return err
	}
	switch {
	case rec.Kind == KindContainer && rec.Container == nil:
		rec.Container = &ContainerState{Members: []string{}}
	case rec.Kind != KindContainer && rec.Container != nil:
		return errs.New(errs.ErrCodeInvalidInput, "shape %q has container state but kind %s", rec.ID, rec.Kind)
	}
	if rec.Container != nil {
		if err := rec.Container.Validate(); err != nil {
			return err
		}
	}

	stored := rec.clone()
	t.records[stored.ID] = &stored
	t.children[stored.ParentID] = append(t.children[stored.ParentID], stored.ID)
	if parent != nil {
		PromoteToGroup(parent)
	}
	return nil
}

// Get returns the record with the given id.
// The returned pointer aliases the stored record: geometry fields may be
// edited in place, but hierarchy changes must go through Attach.
func (t *Tree) Get(id string) (*Record, bool) {
	r, ok := t.records[id]
	return r, ok
}

// Lookup is like Get but reports a missing id as SHAPE_NOT_FOUND.
func (t *Tree) Lookup(id string) (*Record, error) {
	r, ok := t.records[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeShapeNotFound, "shape %q not found", id)
	}
	return r, nil
}

// SetPin moves a shape within its parent's frame.
func (t *Tree) SetPin(id string, pin geom.Point) error {
	r, err := t.Lookup(id)
	if err != nil {
		return err
	}
	if !finite(pin.X, pin.Y) {
		return errs.New(errs.ErrCodeInvalidInput, "shape %q: non-finite pin", id)
	}
	r.Pin = pin
	return nil
}

// SetLocPin changes the offset from the shape's box origin to its pin.
func (t *Tree) SetLocPin(id string, locPin geom.Point) error {
	r, err := t.Lookup(id)
	if err != nil {
		return err
	}
	if !finite(locPin.X, locPin.Y) {
		return errs.New(errs.ErrCodeInvalidInput, "shape %q: non-finite locpin", id)
	}
	r.LocPin = locPin
	return nil
}

// SetSize resizes a shape. LocPin is scaled with the size so the pin keeps
// the same relative position inside the box.
func (t *Tree) SetSize(id string, size geom.Size) error {
	r, err := t.Lookup(id)
	if err != nil {
		return err
	}
	if err := validateSize(id, r.Kind, size); err != nil {
		return err
	}
	r.LocPin = ScaleLocPin(r.LocPin, r.Size, size)
	r.Size = size
	return nil
}

// ScaleLocPin rescales a locpin from one box size to another. When the old size
// has no extent on an axis the locpin lands on the new box's center for that axis.
func ScaleLocPin(locPin geom.Point, from, to geom.Size) geom.Point {
	if from == to {
		return locPin
	}
	out := to.Half()
	if from.Width != 0 {
		out.X = locPin.X / from.Width * to.Width
	}
	if from.Height != 0 {
		out.Y = locPin.Y / from.Height * to.Height
	}
	return out
}

// Attach moves childID under parentID, or onto the page when parentID is empty.
// The child is appended to its new sibling list and its pin is left untouched,
// so it is now interpreted in the new parent's frame. Attaching a shape under
// itself or under one of its descendants fails with CYCLIC_ANCESTRY.
func (t *Tree) Attach(childID, parentID string) error {
	child, err := t.Lookup(childID)
	if err != nil {
		return err
	}
	var parent *Record
	if parentID != "" {
		if parent, err = t.Lookup(parentID); err != nil {
			return err
		}
		ancestors, err := t.Ancestors(parentID)
		if err != nil {
			return err
		}
		if parentID == childID || slices.Contains(ancestors, childID) {
			return errs.New(errs.ErrCodeCyclicAncestry, "attaching %q under %q would create a cycle", childID, parentID)
		}
	}

	old := child.ParentID
	t.children[old] = slices.DeleteFunc(t.children[old], func(s string) bool { return s == childID })
	if len(t.children[old]) == 0 {
		delete(t.children, old)
	}
	child.ParentID = parentID
	t.children[parentID] = append(t.children[parentID], childID)
	if parent != nil {
		PromoteToGroup(parent)
	}
	return nil
}

// Children returns the ids of id's children in z-order.
// Use an empty id for the page's root shapes.
func (t *Tree) Children(id string) []string {
	return slices.Clone(t.children[id])
}

// Roots returns the ids of the shapes placed directly on the page, in z-order.
func (t *Tree) Roots() []string { return t.Children(pageKey) }

// Siblings returns the sibling list that id belongs to (including id itself).
func (t *Tree) Siblings(id string) ([]string, error) {
	r, err := t.Lookup(id)
	if err != nil {
		return nil, err
	}
	return t.Children(r.ParentID), nil
}

// Index returns id's position in its sibling list. Lower indices render behind higher ones.
func (t *Tree) Index(id string) (int, error) {
	r, err := t.Lookup(id)
	if err != nil {
		return -1, err
	}
	return slices.Index(t.children[r.ParentID], id), nil
}

// MoveBefore reorders id so it sits directly behind beforeID.
// Both shapes must share a parent. Moving a shape that is already behind
// beforeID is a no-op, so existing back-to-front order is never disturbed.
func (t *Tree) MoveBefore(id, beforeID string) error {
	r, err := t.Lookup(id)
	if err != nil {
		return err
	}
	b, err := t.Lookup(beforeID)
	if err != nil {
		return err
	}
	if r.ParentID != b.ParentID {
		return errs.New(errs.ErrCodeInvalidInput, "shapes %q and %q are not siblings", id, beforeID)
	}
	list := t.children[r.ParentID]
	from := slices.Index(list, id)
	to := slices.Index(list, beforeID)
	if from < to || id == beforeID {
		return nil
	}
	list = slices.Delete(list, from, from+1)
	list = slices.Insert(list, to, id)
	t.children[r.ParentID] = list
	return nil
}

// Ancestors returns the chain of parent ids from id's parent up to its root.
// A revisited id fails with CYCLIC_ANCESTRY and a dangling parent id with
// SHAPE_NOT_FOUND.
func (t *Tree) Ancestors(id string) ([]string, error) {
	r, err := t.Lookup(id)
	if err != nil {
		return nil, err
	}
	var chain []string
	visited := map[string]bool{id: true}
	for r.ParentID != "" {
		if visited[r.ParentID] {
			return nil, errs.New(errs.ErrCodeCyclicAncestry, "ancestry of %q revisits %q", id, r.ParentID)
		}
		visited[r.ParentID] = true
		chain = append(chain, r.ParentID)
		if r, err = t.Lookup(r.ParentID); err != nil {
			return nil, err
		}
	}
	return chain, nil
}

// IsAncestor reports whether ancestorID appears in id's ancestor chain.
func (t *Tree) IsAncestor(ancestorID, id string) (bool, error) {
	chain, err := t.Ancestors(id)
	if err != nil {
		return false, err
	}
	return slices.Contains(chain, ancestorID), nil
}

// Descendants returns every shape below id in depth-first pre-order, children
// in z-order. The walk uses an explicit stack so nesting depth is not bounded
// by the goroutine stack.
func (t *Tree) Descendants(id string) []string {
	var out []string
	t.walkFrom(id, func(r *Record, _ int) bool {
		out = append(out, r.ID)
		return true
	})
	return out
}

// Walk visits every shape in depth-first pre-order: roots in z-order, each
// shape followed by its subtree. Returning false from fn skips the shape's subtree.
func (t *Tree) Walk(fn func(r *Record, depth int) bool) {
	t.walkFrom(pageKey, fn)
}

func (t *Tree) walkFrom(id string, fn func(r *Record, depth int) bool) {
	type frame struct {
		id    string
		depth int
	}
	visited := make(map[string]bool)
	stack := make([]frame, 0, len(t.children[id]))
	push := func(parent string, depth int) {
		kids := t.children[parent]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: kids[i], depth: depth})
		}
	}
	push(id, 0)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[f.id] {
			continue
		}
		visited[f.id] = true
		r, ok := t.records[f.id]
		if !ok {
			continue
		}
		if fn(r, f.depth) {
			push(f.id, f.depth+1)
		}
	}
}

// IDs returns every shape id in Walk order.
func (t *Tree) IDs() []string {
	ids := make([]string, 0, len(t.records))
	t.Walk(func(r *Record, _ int) bool {
		ids = append(ids, r.ID)
		return true
	})
	return ids
}

// Validate checks cross-record invariants that Add cannot check on its own,
// such as container members that were inserted after their container.
func (t *Tree) Validate() error {
	for _, id := range t.IDs() {
		r := t.records[id]
		if _, err := t.Ancestors(id); err != nil {
			return err
		}
		if r.Container == nil {
			continue
		}
		for _, m := range r.Container.Members {
			if _, ok := t.records[m]; !ok {
				return errs.New(errs.ErrCodeShapeNotFound, "member %q of container %q not found", m, id)
			}
		}
	}
	return nil
}

// Snapshot is a saved copy of some records and the sibling lists they live in.
// It lets multi-step edits roll back to a consistent state on failure.
type Snapshot struct {
	records  map[string]Record
	siblings map[string][]string
}

// Snapshot captures the given records and their sibling lists. Unknown ids are skipped.
func (t *Tree) Snapshot(ids ...string) *Snapshot {
	s := &Snapshot{
		records:  make(map[string]Record, len(ids)),
		siblings: make(map[string][]string),
	}
	for _, id := range ids {
		r, ok := t.records[id]
		if !ok {
			continue
		}
		s.records[id] = r.clone()
		if _, seen := s.siblings[r.ParentID]; !seen {
			s.siblings[r.ParentID] = slices.Clone(t.children[r.ParentID])
		}
	}
	return s
}

// Restore writes the captured records and sibling lists back into the tree.
// Records keep their identity, so pointers obtained from Get stay valid.
func (t *Tree) Restore(s *Snapshot) {
	for id, saved := range s.records {
		if r, ok := t.records[id]; ok {
			*r = saved.clone()
		}
	}
	for parent, list := range s.siblings {
		t.children[parent] = slices.Clone(list)
	}
}
