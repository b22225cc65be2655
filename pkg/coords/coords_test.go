package coords

import (
	"strconv"
	"testing"

	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
)

type level struct {
	pin, locPin geom.Point
	size        geom.Size
}

// buildChain nests one shape per level and returns the tree and the deepest id.
func buildChain(t *testing.T, levels []level) (*shape.Tree, string) {
	t.Helper()
	tr := shape.NewTree("p")
	parent := ""
	for i, l := range levels {
		id := "s" + strconv.Itoa(i)
		rec := shape.Record{ID: id, ParentID: parent, Pin: l.pin, LocPin: l.locPin, Size: l.size}
		if err := tr.Add(rec); err != nil {
			t.Fatalf("Add(%s): %v", id, err)
		}
		parent = id
	}
	return tr, parent
}

// manual composes origin(P) + pin(S) level by level.
func manual(levels []level) geom.Point {
	abs := levels[0].pin
	for i := 1; i < len(levels); i++ {
		origin := geom.Pt(abs.X-levels[i-1].locPin.X, abs.Y-levels[i-1].locPin.Y)
		abs = geom.Pt(origin.X+levels[i].pin.X, origin.Y+levels[i].pin.Y)
	}
	return abs
}

func TestAbsoluteMatchesManualComposition(t *testing.T) {
	base := []level{
		{pin: geom.Pt(4, 5), locPin: geom.Pt(2, 1.5), size: geom.Sz(4, 3)},
		{pin: geom.Pt(1, 0.5), locPin: geom.Pt(0.5, 0.25), size: geom.Sz(1, 0.5)},
		{pin: geom.Pt(0.25, 0.125), locPin: geom.Pt(0.125, 0.0625), size: geom.Sz(0.25, 0.125)},
	}

	arbitrary := make([]level, 17)
	for i := range arbitrary {
		f := float64(i + 1)
		arbitrary[i] = level{
			pin:    geom.Pt(f*0.75, -f*0.5),
			locPin: geom.Pt(f*0.25, f*0.125),
			size:   geom.Sz(f*0.5, f*0.25),
		}
	}

	tests := []struct {
		name   string
		levels []level
	}{
		{name: "depth 0", levels: base[:1]},
		{name: "depth 1", levels: base[:2]},
		{name: "depth 2", levels: base[:3]},
		{name: "depth 16", levels: arbitrary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, leaf := buildChain(t, tt.levels)
			got, err := Absolute(tr, leaf)
			if err != nil {
				t.Fatalf("Absolute() error = %v", err)
			}
			if want := manual(tt.levels); got != want {
				t.Errorf("Absolute() = %v, want %v", got, want)
			}
		})
	}
}

func TestAbsoluteRootIsPin(t *testing.T) {
	tr := shape.NewTree("p")
	if err := tr.Add(shape.New("r", geom.Pt(3, 7), geom.Sz(2, 2))); err != nil {
		t.Fatal(err)
	}
	got, err := Absolute(tr, "r")
	if err != nil || got != geom.Pt(3, 7) {
		t.Errorf("Absolute(root) = %v, %v; want (3,7)", got, err)
	}
}

func TestAbsoluteWalksLiveChain(t *testing.T) {
	tr, leaf := buildChain(t, []level{
		{pin: geom.Pt(4, 4), locPin: geom.Pt(1, 1), size: geom.Sz(2, 2)},
		{pin: geom.Pt(1, 1), locPin: geom.Pt(0.5, 0.5), size: geom.Sz(1, 1)},
	})
	before, _ := Absolute(tr, leaf)
	if err := tr.SetPin("s0", geom.Pt(10, 4)); err != nil {
		t.Fatal(err)
	}
	after, _ := Absolute(tr, leaf)
	if after.X-before.X != 6 || after.Y != before.Y {
		t.Errorf("moving the parent by (6,0) moved the child from %v to %v", before, after)
	}
}

func TestAbsoluteErrors(t *testing.T) {
	tr, _ := buildChain(t, []level{
		{pin: geom.Pt(0, 0), locPin: geom.Pt(0, 0), size: geom.Sz(1, 1)},
		{pin: geom.Pt(0, 0), locPin: geom.Pt(0, 0), size: geom.Sz(1, 1)},
		{pin: geom.Pt(0, 0), locPin: geom.Pt(0, 0), size: geom.Sz(1, 1)},
	})

	if _, err := Absolute(tr, "missing"); !errs.Is(err, errs.ErrCodeShapeNotFound) {
		t.Errorf("Absolute(missing) error = %v", err)
	}

	s0, _ := tr.Get("s0")
	s0.ParentID = "s2"
	if _, err := Absolute(tr, "s2"); !errs.Is(err, errs.ErrCodeCyclicAncestry) {
		t.Errorf("Absolute(cycle) error = %v, want CYCLIC_ANCESTRY", err)
	}

	s0.ParentID = "ghost"
	if _, err := Absolute(tr, "s1"); !errs.Is(err, errs.ErrCodeShapeNotFound) {
		t.Errorf("Absolute(dangling parent) error = %v, want SHAPE_NOT_FOUND", err)
	}
}

func TestBoundsAndCenter(t *testing.T) {
	tr := shape.NewTree("p")
	outer := shape.Record{ID: "outer", Pin: geom.Pt(5, 5), LocPin: geom.Pt(0, 0), Size: geom.Sz(4, 4)}
	inner := shape.New("inner", geom.Pt(1, 1), geom.Sz(2, 1))
	inner.ParentID = "outer"
	for _, r := range []shape.Record{outer, inner} {
		if err := tr.Add(r); err != nil {
			t.Fatal(err)
		}
	}

	b, err := Bounds(tr, "inner")
	if err != nil {
		t.Fatal(err)
	}
	want := geom.Rect{Min: geom.Pt(5, 5.5), Max: geom.Pt(7, 6.5)}
	if b != want {
		t.Errorf("Bounds(inner) = %+v, want %+v", b, want)
	}
	if c, _ := Center(tr, "inner"); c != geom.Pt(6, 6) {
		t.Errorf("Center(inner) = %v, want (6,6)", c)
	}
	if o, _ := FrameOrigin(tr, ""); o != (geom.Point{}) {
		t.Errorf("FrameOrigin(page) = %v", o)
	}
}

func TestPinForCenterInverts(t *testing.T) {
	tr := shape.NewTree("p")
	outer := shape.Record{ID: "outer", Pin: geom.Pt(3, 2), LocPin: geom.Pt(1, 0.5), Size: geom.Sz(4, 4)}
	inner := shape.Record{ID: "inner", ParentID: "outer", Pin: geom.Pt(0, 0), LocPin: geom.Pt(0.25, 0.75), Size: geom.Sz(1, 1)}
	for _, r := range []shape.Record{outer, inner} {
		if err := tr.Add(r); err != nil {
			t.Fatal(err)
		}
	}

	target := geom.Pt(10, -4)
	pin, err := PinForCenter(tr, "inner", target)
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.SetPin("inner", pin); err != nil {
		t.Fatal(err)
	}
	if c, _ := Center(tr, "inner"); c != target {
		t.Errorf("Center after PinForCenter = %v, want %v", c, target)
	}
}
