package page

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/connector"
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/store"
)

func newPage(t *testing.T, recs ...shape.Record) *Page {
	t.Helper()
	p, err := New("page-1")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range recs {
		if _, err := p.AddShape(r); err != nil {
			t.Fatalf("AddShape(%s): %v", r.ID, err)
		}
	}
	return p
}

func TestNewRejectsBadID(t *testing.T) {
	if _, err := New("../etc"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("New(../etc) error = %v", err)
	}
}

func TestAddShapeAssignsID(t *testing.T) {
	p := newPage(t)
	id, err := p.AddShape(shape.New("", geom.Pt(1, 1), geom.Sz(1, 1)))
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("AddShape returned an empty id")
	}
	if _, ok := p.Tree().Get(id); !ok {
		t.Errorf("shape %s not in tree", id)
	}
}

func TestMoveReroutesConnectors(t *testing.T) {
	p := newPage(t,
		shape.New("a", geom.Pt(2, 4), geom.Sz(2, 1)),
		shape.New("b", geom.Pt(6, 4), geom.Sz(2, 1)),
	)
	if _, err := p.Connect("a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := p.Move("b", geom.Pt(10, 4)); err != nil {
		t.Fatal(err)
	}
	g := p.Connectors()[0]
	if g.End != geom.Pt(9, 4) || g.Width != 6 {
		t.Errorf("connector after move = %+v, want end (9,4) width 6", g)
	}

	if err := p.MoveTo("b", geom.Pt(6, 8)); err != nil {
		t.Fatal(err)
	}
	if c, _ := p.Bounds("b"); c.Center() != geom.Pt(6, 8) {
		t.Errorf("MoveTo center = %v", c.Center())
	}
}

func TestAttachKeepsPagePosition(t *testing.T) {
	p := newPage(t,
		shape.New("frame", geom.Pt(5, 5), geom.Sz(4, 4)),
		shape.New("item", geom.Pt(6, 6), geom.Sz(1, 1)),
	)
	before, _ := p.Resolve("item")
	if err := p.Attach("item", "frame"); err != nil {
		t.Fatal(err)
	}
	after, _ := p.Resolve("item")
	if after != before {
		t.Errorf("Attach moved item from %v to %v", before, after)
	}
	if r, _ := p.Tree().Get("item"); r.ParentID != "frame" || r.Pin != geom.Pt(3, 3) {
		t.Errorf("item = parent %q pin %v, want frame (3,3)", r.ParentID, r.Pin)
	}

	if err := p.Attach("frame", "item"); !errs.Is(err, errs.ErrCodeCyclicAncestry) {
		t.Errorf("Attach(frame under item) error = %v", err)
	}
}

func TestAddMemberAndResize(t *testing.T) {
	p := newPage(t,
		shape.New("lane", geom.Pt(4, 4), geom.Sz(2, 2)),
		shape.New("a", geom.Pt(0, 0), geom.Sz(1, 0.5)),
		shape.New("b", geom.Pt(0, 0), geom.Sz(1, 0.5)),
	)
	if _, err := p.Connect("a", "b"); err != nil {
		t.Fatal(err)
	}
	for _, m := range []string{"a", "b"} {
		if err := p.AddMember("lane", m); err != nil {
			t.Fatal(err)
		}
	}

	// Growing "a" pushes "b" down and grows the lane.
	if err := p.Resize("a", geom.Sz(1, 1)); err != nil {
		t.Fatal(err)
	}
	ba, _ := p.Bounds("a")
	bb, _ := p.Bounds("b")
	if gap := ba.Bottom() - bb.Top(); math.Abs(gap-0.125) > 1e-9 {
		t.Errorf("gap between members = %v, want 0.125", gap)
	}
	lane, _ := p.Tree().Get("lane")
	if math.Abs(lane.Size.Height-(1+0.125+0.5+0.5)) > 1e-9 {
		t.Errorf("lane height = %v", lane.Size.Height)
	}

	g := p.Connectors()[0]
	if !g.Begin.ApproxEqual(geom.Pt(ba.Center().X, ba.Bottom()), 1e-9) {
		t.Errorf("connector begin %v not on a's bottom edge", g.Begin)
	}
}

func TestResizeMemberGrowsNestedContainers(t *testing.T) {
	p := newPage(t,
		shape.New("outer", geom.Pt(4, 4), geom.Sz(2, 2)),
		shape.New("inner", geom.Pt(4, 4), geom.Sz(1, 1)),
		shape.New("a", geom.Pt(0, 0), geom.Sz(1, 0.5)),
	)
	if err := p.AddMember("outer", "inner"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddMember("inner", "a"); err != nil {
		t.Fatal(err)
	}

	if err := p.Resize("a", geom.Sz(3, 3)); err != nil {
		t.Fatal(err)
	}
	outer, _ := p.Bounds("outer")
	inner, _ := p.Bounds("inner")
	want := 3 + 4*0.25
	if math.Abs(outer.Width()-want) > 1e-9 || math.Abs(outer.Height()-want) > 1e-9 {
		t.Errorf("outer = %+v, want %vx%v", outer, want, want)
	}
	if !outer.Contains(inner.Min) || !outer.Contains(inner.Max) {
		t.Errorf("outer %+v does not contain inner %+v", outer, inner)
	}
}

func TestMoveUpdatesContainers(t *testing.T) {
	p := newPage(t,
		shape.New("lane", geom.Pt(4, 4), geom.Sz(2, 2)),
		shape.New("a", geom.Pt(0, 0), geom.Sz(1, 0.5)),
		shape.New("b", geom.Pt(0, 0), geom.Sz(1, 0.5)),
	)
	for _, m := range []string{"a", "b"} {
		if err := p.AddMember("lane", m); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("container carries members", func(t *testing.T) {
		before, _ := p.Bounds("a")
		lane, _ := p.Tree().Get("lane")
		if err := p.Move("lane", lane.Pin.Add(geom.Pt(2, 1))); err != nil {
			t.Fatal(err)
		}
		after, _ := p.Bounds("a")
		if !after.Min.ApproxEqual(before.Min.Add(geom.Pt(2, 1)), 1e-9) {
			t.Errorf("a moved from %+v to %+v, want shift by (2, 1)", before, after)
		}
	})

	t.Run("member grows its container", func(t *testing.T) {
		if err := p.MoveTo("a", geom.Pt(20, 3)); err != nil {
			t.Fatal(err)
		}
		lane, _ := p.Bounds("lane")
		for _, id := range []string{"a", "b"} {
			b, _ := p.Bounds(id)
			if !lane.Contains(b.Min) || !lane.Contains(b.Max) {
				t.Errorf("lane %+v does not contain %s %+v", lane, id, b)
			}
		}
		if b, _ := p.Bounds("a"); !b.Center().ApproxEqual(geom.Pt(20, 3), 1e-9) {
			t.Errorf("a center = %v, want (20, 3)", b.Center())
		}
	})
}

func TestMakeContainer(t *testing.T) {
	p := newPage(t,
		shape.New("row", geom.Pt(4, 4), geom.Sz(2, 2)),
		shape.New("a", geom.Pt(0, 0), geom.Sz(1, 1)),
		shape.New("b", geom.Pt(0, 0), geom.Sz(1, 1)),
	)
	if err := p.MakeContainer("row", shape.AxisHorizontal, 0.5, 0); err != nil {
		t.Fatal(err)
	}
	_ = p.AddMember("row", "a")
	_ = p.AddMember("row", "b")

	ba, _ := p.Bounds("a")
	bb, _ := p.Bounds("b")
	if bb.Left()-ba.Right() != 0.5 || ba.Top() != bb.Top() {
		t.Errorf("horizontal stack: a=%+v b=%+v", ba, bb)
	}
}

func TestConnectMissingShape(t *testing.T) {
	p := newPage(t, shape.New("a", geom.Pt(0, 0), geom.Sz(1, 1)))
	if _, err := p.Connect("a", "ghost"); !errs.Is(err, errs.ErrCodeShapeNotFound) {
		t.Errorf("Connect(ghost) error = %v", err)
	}

	lenient, _ := New("p2", WithRouter(connector.NewRouter(connector.WithPolicy(connector.PolicyLenient))))
	_, _ = lenient.AddShape(shape.New("a", geom.Pt(0, 0), geom.Sz(1, 1)))
	if _, err := lenient.Connect("a", "ghost"); err != nil {
		t.Errorf("lenient Connect(ghost) error = %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	p := newPage(t,
		shape.New("lane", geom.Pt(4, 4), geom.Sz(2, 2)),
		shape.New("a", geom.Pt(0, 0), geom.Sz(1, 0.5)),
	)
	_ = p.AddMember("lane", "a")
	_, _ = p.Connect("lane", "a")
	if err := p.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	back, err := Load(ctx, s, "page-1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(p.Document().Shapes, back.Document().Shapes); diff != "" {
		t.Errorf("shapes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(p.Links(), back.Links()); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}

	if _, err := Load(ctx, s, "nope"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Load(nope) error = %v", err)
	}
}

func TestAutoLayout(t *testing.T) {
	p := newPage(t,
		shape.New("top", geom.Pt(0, 0), geom.Sz(1, 0.5)),
		shape.New("bottom", geom.Pt(0, 0), geom.Sz(1, 0.5)),
	)
	if _, err := p.Connect("top", "bottom"); err != nil {
		t.Fatal(err)
	}
	if err := p.AutoLayout(context.Background()); err != nil {
		t.Fatalf("AutoLayout() error = %v", err)
	}
	top, _ := p.Bounds("top")
	bottom, _ := p.Bounds("bottom")
	if top.Bottom() < bottom.Top() {
		t.Errorf("top %+v should sit above bottom %+v", top, bottom)
	}
	if g := p.Connectors()[0]; g.Degenerate() {
		t.Error("connector not rerouted after layout")
	}
}
