package container

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/coords"
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/observability"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
)

const eps = 1e-9

func newTree(t *testing.T, recs ...shape.Record) *shape.Tree {
	t.Helper()
	tr := shape.NewTree("p")
	for _, r := range recs {
		if err := tr.Add(r); err != nil {
			t.Fatalf("Add(%s): %v", r.ID, err)
		}
	}
	return tr
}

func child(id, parent string, pin geom.Point, size geom.Size) shape.Record {
	r := shape.New(id, pin, size)
	r.ParentID = parent
	return r
}

func center(t *testing.T, tr *shape.Tree, id string) geom.Point {
	t.Helper()
	c, err := coords.Center(tr, id)
	if err != nil {
		t.Fatalf("Center(%s): %v", id, err)
	}
	return c
}

func bounds(t *testing.T, tr *shape.Tree, id string) geom.Rect {
	t.Helper()
	b, err := coords.Bounds(tr, id)
	if err != nil {
		t.Fatalf("Bounds(%s): %v", id, err)
	}
	return b
}

func TestAddMemberVerticalSpacing(t *testing.T) {
	tr := newTree(t,
		shape.New("lane", geom.Pt(5, 5), geom.Sz(2, 2)),
		shape.New("a", geom.Pt(20, 20), geom.Sz(1, 0.5)),
		shape.New("b", geom.Pt(-3, 7), geom.Sz(1, 0.5)),
	)
	e := New()
	for _, m := range []string{"a", "b"} {
		if err := e.AddMember(tr, "lane", m); err != nil {
			t.Fatalf("AddMember(%s): %v", m, err)
		}
	}

	ca, cb := center(t, tr, "a"), center(t, tr, "b")
	if d := ca.Y - cb.Y; math.Abs(d-0.625) > eps {
		t.Errorf("vertical center distance = %v, want 0.625", d)
	}
	if ca.X != cb.X {
		t.Errorf("members should share a column, got x=%v and x=%v", ca.X, cb.X)
	}
	if ba, bb := bounds(t, tr, "a"), bounds(t, tr, "b"); ba.Left() != bb.Left() {
		t.Errorf("members should be left-aligned, got %v and %v", ba.Left(), bb.Left())
	}

	lane, _ := tr.Get("lane")
	if lane.Kind != shape.KindContainer {
		t.Fatalf("kind = %s, want container", lane.Kind)
	}
	if diff := cmp.Diff([]string{"a", "b"}, lane.Container.Members); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestAddMemberHorizontalSpacing(t *testing.T) {
	tr := newTree(t,
		shape.New("row", geom.Pt(0, 0), geom.Sz(3, 3)),
		shape.New("a", geom.Pt(9, 9), geom.Sz(1, 0.5)),
		shape.New("b", geom.Pt(9, 9), geom.Sz(1, 0.75)),
	)
	e := New()
	if err := e.Promote(tr, "row", shape.AxisHorizontal, DefaultSpacing, DefaultPadding); err != nil {
		t.Fatal(err)
	}
	for _, m := range []string{"a", "b"} {
		if err := e.AddMember(tr, "row", m); err != nil {
			t.Fatalf("AddMember(%s): %v", m, err)
		}
	}

	ca, cb := center(t, tr, "a"), center(t, tr, "b")
	if d := cb.X - ca.X; math.Abs(d-1.125) > eps {
		t.Errorf("horizontal center distance = %v, want 1.125", d)
	}
	if ba, bb := bounds(t, tr, "a"), bounds(t, tr, "b"); ba.Top() != bb.Top() {
		t.Errorf("members should be top-aligned, got %v and %v", ba.Top(), bb.Top())
	}
}

func TestAddMemberKeepsContainerTopLeft(t *testing.T) {
	tr := newTree(t,
		shape.New("lane", geom.Pt(5, 5), geom.Sz(2, 2)),
		shape.New("a", geom.Pt(0, 0), geom.Sz(1, 0.5)),
		shape.New("b", geom.Pt(0, 0), geom.Sz(1, 0.5)),
	)
	e := New()
	before := bounds(t, tr, "lane")
	_ = e.AddMember(tr, "lane", "a")
	_ = e.AddMember(tr, "lane", "b")

	after := bounds(t, tr, "lane")
	if after.Left() != before.Left() || after.Top() != before.Top() {
		t.Errorf("top-left moved from (%v,%v) to (%v,%v)", before.Left(), before.Top(), after.Left(), after.Top())
	}
	want := geom.Sz(1+2*DefaultPadding, 0.5+DefaultSpacing+0.5+2*DefaultPadding)
	if got := after.Size(); math.Abs(got.Width-want.Width) > eps || math.Abs(got.Height-want.Height) > eps {
		t.Errorf("size = %v, want %v", got, want)
	}
}

func TestResizeToFit(t *testing.T) {
	tr := newTree(t,
		shape.New("c", geom.Pt(5, 5), geom.Sz(4, 4)),
		child("m1", "c", geom.Pt(0, 0), geom.Sz(2, 2)),
		child("m2", "c", geom.Pt(6, 6), geom.Sz(2, 2)),
	)
	e := New()
	if err := e.Promote(tr, "c", shape.AxisVertical, DefaultSpacing, 0.5); err != nil {
		t.Fatal(err)
	}
	c, _ := tr.Get("c")
	c.Container.Members = []string{"m1", "m2"}

	// Members cover [2,4]x[2,4] and [8,10]x[8,10].
	if err := e.ResizeToFit(tr, "c", 0.5); err != nil {
		t.Fatalf("ResizeToFit() error = %v", err)
	}

	if c.Size != geom.Sz(9, 9) {
		t.Errorf("size = %v, want 9x9", c.Size)
	}
	if got := center(t, tr, "c"); got != geom.Pt(6, 6) {
		t.Errorf("center = %v, want (6,6)", got)
	}
	if c.LocPin != geom.Pt(4.5, 4.5) {
		t.Errorf("locpin = %v, want scaled to (4.5,4.5)", c.LocPin)
	}
	if got := center(t, tr, "m1"); got != geom.Pt(3, 3) {
		t.Errorf("m1 moved on the page to %v", got)
	}
	if got := center(t, tr, "m2"); got != geom.Pt(9, 9) {
		t.Errorf("m2 moved on the page to %v", got)
	}
}

func TestResizeToFitIsIdempotent(t *testing.T) {
	tr := newTree(t,
		shape.New("outer", geom.Pt(1.1, 2.3), geom.Sz(7.7, 5.3)),
		child("c", "outer", geom.Pt(0.7, 0.9), geom.Sz(1.3, 1.9)),
		child("m1", "c", geom.Pt(0.1, 0.3), geom.Sz(0.7, 0.3)),
		shape.New("m2", geom.Pt(-2.9, 4.1), geom.Sz(1.1, 0.3)),
	)
	e := New()
	if err := e.Promote(tr, "c", shape.AxisVertical, 0.1, 0.3); err != nil {
		t.Fatal(err)
	}
	c, _ := tr.Get("c")
	c.Container.Members = []string{"m1", "m2"}

	capture := func() []shape.Record {
		var out []shape.Record
		for _, id := range []string{"outer", "c", "m1", "m2"} {
			r, _ := tr.Get(id)
			cp := *r
			cp.Container = nil
			out = append(out, cp)
		}
		return out
	}

	if err := e.ResizeToFit(tr, "c", 0.3); err != nil {
		t.Fatal(err)
	}
	first := capture()
	if err := e.ResizeToFit(tr, "c", 0.3); err != nil {
		t.Fatal(err)
	}
	second := capture()

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("%s changed on second resize:\n first  %+v\n second %+v", first[i].ID, first[i], second[i])
		}
	}
}

func TestResizeToFitWithoutMembersIsNoop(t *testing.T) {
	tr := newTree(t, shape.New("c", geom.Pt(1, 1), geom.Sz(2, 2)))
	e := New()
	_ = e.Promote(tr, "c", shape.AxisVertical, 0, 0)

	if err := e.ResizeToFit(tr, "c", 1); err != nil {
		t.Fatal(err)
	}
	c, _ := tr.Get("c")
	if c.Size != geom.Sz(2, 2) || c.Pin != geom.Pt(1, 1) {
		t.Errorf("empty container changed: %+v", c)
	}
}

func TestAddMemberZOrder(t *testing.T) {
	tests := []struct {
		name  string
		order []string
	}{
		{"container last", []string{"m1", "m2", "c"}},
		{"container between", []string{"m1", "c", "m2"}},
		{"container first", []string{"c", "m1", "m2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recs []shape.Record
			for _, id := range tt.order {
				recs = append(recs, shape.New(id, geom.Pt(0, 0), geom.Sz(1, 1)))
			}
			recs = append(recs, shape.New("other", geom.Pt(0, 0), geom.Sz(1, 1)))
			tr := newTree(t, recs...)

			e := New()
			for _, m := range []string{"m1", "m2"} {
				if err := e.AddMember(tr, "c", m); err != nil {
					t.Fatal(err)
				}
				ci, _ := tr.Index("c")
				mi, _ := tr.Index(m)
				if ci > mi {
					t.Errorf("after AddMember(%s): container at %d, member at %d", m, ci, mi)
				}
			}
			if roots := tr.Roots(); roots[len(roots)-1] != "other" {
				t.Errorf("unrelated sibling reordered: %v", roots)
			}
		})
	}
}

func TestAddMemberNestedMembersStayInFront(t *testing.T) {
	tr := newTree(t,
		shape.New("c", geom.Pt(4, 4), geom.Sz(4, 4)),
		child("m", "c", geom.Pt(1, 1), geom.Sz(1, 1)),
	)
	if err := New().AddMember(tr, "c", "m"); err != nil {
		t.Fatal(err)
	}
	var order []string
	tr.Walk(func(r *shape.Record, _ int) bool {
		order = append(order, r.ID)
		return true
	})
	if diff := cmp.Diff([]string{"c", "m"}, order); diff != "" {
		t.Errorf("pre-order mismatch (-want +got):\n%s", diff)
	}
}

func TestAddMemberDuplicateIsKept(t *testing.T) {
	tr := newTree(t,
		shape.New("c", geom.Pt(4, 4), geom.Sz(4, 4)),
		shape.New("m", geom.Pt(1, 1), geom.Sz(1, 1)),
	)
	e := New()
	_ = e.AddMember(tr, "c", "m")
	if err := e.AddMember(tr, "c", "m"); err != nil {
		t.Fatal(err)
	}
	c, _ := tr.Get("c")
	if diff := cmp.Diff([]string{"m", "m"}, c.Container.Members); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestAddMemberErrors(t *testing.T) {
	build := func(t *testing.T) *shape.Tree {
		return newTree(t,
			shape.New("root", geom.Pt(4, 4), geom.Sz(8, 8)),
			child("c", "root", geom.Pt(2, 2), geom.Sz(2, 2)),
			shape.New("m", geom.Pt(1, 1), geom.Sz(1, 1)),
			shape.Record{ID: "img", Pin: geom.Pt(3, 3), Kind: shape.KindForeign, Size: geom.Sz(1, 1), LocPin: geom.Pt(0.5, 0.5)},
		)
	}

	tests := []struct {
		name      string
		container string
		member    string
		wantCode  errs.Code
	}{
		{"missing container", "ghost", "m", errs.ErrCodeShapeNotFound},
		{"missing member", "c", "ghost", errs.ErrCodeShapeNotFound},
		{"self", "c", "c", errs.ErrCodeInvalidMembership},
		{"ancestor", "c", "root", errs.ErrCodeInvalidMembership},
		{"foreign container", "img", "m", errs.ErrCodeInvalidMembership},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := build(t)
			err := New().AddMember(tr, tt.container, tt.member)
			if !errs.Is(err, tt.wantCode) {
				t.Fatalf("AddMember() error = %v, want %s", err, tt.wantCode)
			}
			if c, _ := tr.Get("c"); c.Kind == shape.KindContainer {
				t.Error("failed AddMember should not promote the container")
			}
		})
	}
}

func TestAddMemberRollsBackOnFailure(t *testing.T) {
	tr := newTree(t,
		shape.New("c", geom.Pt(4, 4), geom.Sz(2, 2)),
		shape.New("m", geom.Pt(0, 0), geom.Sz(1, 1)),
		shape.New("x", geom.Pt(9, 9), geom.Sz(1, 1)),
	)
	e := New()
	if err := e.AddMember(tr, "c", "m"); err != nil {
		t.Fatal(err)
	}
	// Moving the container under its own member makes the next restack fail.
	if err := tr.Attach("c", "m"); err != nil {
		t.Fatal(err)
	}
	c, _ := tr.Get("c")
	before := *c

	err := e.AddMember(tr, "c", "x")
	if !errs.Is(err, errs.ErrCodeInvalidMembership) {
		t.Fatalf("AddMember() error = %v, want INVALID_MEMBERSHIP", err)
	}
	if diff := cmp.Diff([]string{"m"}, c.Container.Members); diff != "" {
		t.Errorf("members not rolled back (-want +got):\n%s", diff)
	}
	if c.Size != before.Size || c.Pin != before.Pin {
		t.Errorf("container geometry not rolled back: %+v", c)
	}
	if x, _ := tr.Get("x"); x.Pin != geom.Pt(9, 9) {
		t.Errorf("member pin not rolled back: %v", x.Pin)
	}
}

func TestAddMemberUnsizedWithoutPadding(t *testing.T) {
	tr := newTree(t,
		shape.New("c", geom.Pt(5, 5), geom.Sz(2, 2)),
		shape.Record{ID: "dot", Pin: geom.Pt(9, 9), Kind: shape.KindForeign},
	)
	e := New(WithDefaults(shape.AxisVertical, 0.125, 0))

	if err := e.AddMember(tr, "c", "dot"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	c, _ := tr.Get("c")
	if math.Abs(c.Size.Width-MinExtent) > eps || math.Abs(c.Size.Height-MinExtent) > eps {
		t.Errorf("size = %v, want %vx%v", c.Size, MinExtent, MinExtent)
	}
	if dot, _ := tr.Get("dot"); !bounds(t, tr, "c").Contains(dot.Pin) {
		t.Errorf("container %+v does not contain %v", bounds(t, tr, "c"), dot.Pin)
	}

	want := *c
	if err := e.Relayout(tr, "c"); err != nil {
		t.Fatal(err)
	}
	if c.Size != want.Size || c.Pin != want.Pin || c.LocPin != want.LocPin {
		t.Errorf("relayout changed geometry: %+v, want %+v", c, want)
	}
}

// encloses reports whether inner lies within outer, allowing for rounding.
func encloses(outer, inner geom.Rect) bool {
	return inner.Left() >= outer.Left()-eps && inner.Right() <= outer.Right()+eps &&
		inner.Bottom() >= outer.Bottom()-eps && inner.Top() <= outer.Top()+eps
}

func TestNestedContainersGrowTogether(t *testing.T) {
	tests := []struct {
		name   string
		parent string // parent of the inner members
	}{
		{"members on page", ""},
		{"members inside inner", "inner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTree(t,
				shape.New("outer", geom.Pt(4, 6), geom.Sz(1.5, 1.5)),
				shape.New("inner", geom.Pt(4, 6), geom.Sz(1, 1)),
				child("a", tt.parent, geom.Pt(0.5, 0.5), geom.Sz(1, 2)),
				child("b", tt.parent, geom.Pt(0.5, 0.5), geom.Sz(1, 2)),
			)
			e := New()
			if err := e.AddMember(tr, "outer", "inner"); err != nil {
				t.Fatal(err)
			}
			for _, m := range []string{"a", "b"} {
				if err := e.AddMember(tr, "inner", m); err != nil {
					t.Fatalf("AddMember(%s): %v", m, err)
				}
			}

			outer, inner := bounds(t, tr, "outer"), bounds(t, tr, "inner")
			if !encloses(outer, inner) {
				t.Errorf("outer %+v does not enclose inner %+v", outer, inner)
			}
			for _, m := range []string{"a", "b"} {
				if b := bounds(t, tr, m); !encloses(inner, b) {
					t.Errorf("inner %+v does not enclose %s %+v", inner, m, b)
				}
			}
			if math.Abs(outer.Height()-(2+0.125+2+4*DefaultPadding)) > eps {
				t.Errorf("outer height = %v", outer.Height())
			}
		})
	}
}

func TestMembershipLoopTerminates(t *testing.T) {
	tr := newTree(t,
		shape.New("x", geom.Pt(0, 0), geom.Sz(1, 1)),
		shape.New("y", geom.Pt(5, 5), geom.Sz(1, 1)),
	)
	e := New()
	if err := e.AddMember(tr, "x", "y"); err != nil {
		t.Fatal(err)
	}
	if err := e.AddMember(tr, "y", "x"); err != nil {
		t.Fatalf("AddMember() on a membership loop: %v", err)
	}
}

func TestTrackCarriesMembers(t *testing.T) {
	tr := newTree(t,
		shape.New("lane", geom.Pt(4, 4), geom.Sz(2, 2)),
		shape.New("a", geom.Pt(0, 0), geom.Sz(1, 0.5)),
		shape.New("b", geom.Pt(0, 0), geom.Sz(1, 0.5)),
	)
	e := New()
	for _, m := range []string{"a", "b"} {
		if err := e.AddMember(tr, "lane", m); err != nil {
			t.Fatal(err)
		}
	}
	ca, cb := center(t, tr, "a"), center(t, tr, "b")

	lane, _ := tr.Get("lane")
	delta := geom.Pt(3, -1)
	if err := tr.SetPin("lane", lane.Pin.Add(delta)); err != nil {
		t.Fatal(err)
	}
	if err := e.Track(tr, "lane", delta); err != nil {
		t.Fatal(err)
	}

	if got := center(t, tr, "a"); !got.ApproxEqual(ca.Add(delta), eps) {
		t.Errorf("a center = %v, want %v", got, ca.Add(delta))
	}
	if got := center(t, tr, "b"); !got.ApproxEqual(cb.Add(delta), eps) {
		t.Errorf("b center = %v, want %v", got, cb.Add(delta))
	}
}

func TestTrackResizesOwners(t *testing.T) {
	tr := newTree(t,
		shape.New("lane", geom.Pt(4, 4), geom.Sz(2, 2)),
		shape.New("a", geom.Pt(0, 0), geom.Sz(1, 0.5)),
		shape.New("b", geom.Pt(0, 0), geom.Sz(1, 0.5)),
	)
	e := New()
	for _, m := range []string{"a", "b"} {
		if err := e.AddMember(tr, "lane", m); err != nil {
			t.Fatal(err)
		}
	}
	cb := center(t, tr, "b")

	a, _ := tr.Get("a")
	delta := geom.Pt(5, 0)
	if err := tr.SetPin("a", a.Pin.Add(delta)); err != nil {
		t.Fatal(err)
	}
	if err := e.Track(tr, "a", delta); err != nil {
		t.Fatal(err)
	}

	lane := bounds(t, tr, "lane")
	for _, m := range []string{"a", "b"} {
		if b := bounds(t, tr, m); !encloses(lane, b) {
			t.Errorf("lane %+v does not enclose %s %+v", lane, m, b)
		}
	}
	if got := center(t, tr, "b"); got != cb {
		t.Errorf("b moved to %v, want %v (no restack)", got, cb)
	}
}

func TestRestackRequiresContainer(t *testing.T) {
	tr := newTree(t, shape.New("s", geom.Pt(0, 0), geom.Sz(1, 1)))
	e := New()
	if err := e.Restack(tr, "s"); !errs.Is(err, errs.ErrCodeInvalidMembership) {
		t.Errorf("Restack(shape) error = %v", err)
	}
	if err := e.ResizeToFit(tr, "s", 0); !errs.Is(err, errs.ErrCodeInvalidMembership) {
		t.Errorf("ResizeToFit(shape) error = %v", err)
	}
	if err := e.Restack(tr, "ghost"); !errs.Is(err, errs.ErrCodeShapeNotFound) {
		t.Errorf("Restack(missing) error = %v", err)
	}
}

func TestResizeToFitRejectsNegativePadding(t *testing.T) {
	tr := newTree(t, shape.New("c", geom.Pt(0, 0), geom.Sz(1, 1)))
	e := New()
	_ = e.Promote(tr, "c", shape.AxisVertical, 0, 0)
	if err := e.ResizeToFit(tr, "c", -1); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("ResizeToFit(-1) error = %v, want INVALID_INPUT", err)
	}
}

func TestPromoteReconfigures(t *testing.T) {
	tr := newTree(t,
		shape.New("c", geom.Pt(4, 4), geom.Sz(2, 2)),
		shape.New("a", geom.Pt(0, 0), geom.Sz(1, 1)),
		shape.New("b", geom.Pt(0, 0), geom.Sz(1, 1)),
	)
	e := New()
	_ = e.AddMember(tr, "c", "a")
	_ = e.AddMember(tr, "c", "b")

	if err := e.Promote(tr, "c", shape.AxisHorizontal, 0.5, DefaultPadding); err != nil {
		t.Fatal(err)
	}
	ca, cb := center(t, tr, "a"), center(t, tr, "b")
	if ca.Y != cb.Y || math.Abs(cb.X-ca.X-1.5) > eps {
		t.Errorf("after switching to horizontal: a=%v b=%v", ca, cb)
	}

	if err := e.Promote(tr, "c", shape.AxisVertical, -1, 0); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Promote(negative spacing) error = %v", err)
	}
}

func TestEngineHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	h := &countingHooks{}
	observability.SetEngineHooks(h)

	tr := newTree(t,
		shape.New("c", geom.Pt(4, 4), geom.Sz(2, 2)),
		shape.New("a", geom.Pt(0, 0), geom.Sz(1, 1)),
	)
	if err := New().AddMember(tr, "c", "a"); err != nil {
		t.Fatal(err)
	}
	if h.restacks != 1 || h.resizes != 1 {
		t.Errorf("hooks: restacks=%d resizes=%d, want 1 and 1", h.restacks, h.resizes)
	}
}

type countingHooks struct {
	observability.NoopEngineHooks
	restacks, resizes int
}

func (h *countingHooks) OnRestack(string, int)                   { h.restacks++ }
func (h *countingHooks) OnResize(string, float64, float64, bool) { h.resizes++ }
