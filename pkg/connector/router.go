// Package connector computes routing geometry for connectors between shapes.
//
// A connector runs between the boundaries of two shapes, which may live in
// different subtrees at any depth. Both shapes are resolved into the page
// frame through package coords; each endpoint is where the ray from its
// shape's center toward the other shape's center leaves the shape's box.
//
//	r := connector.NewRouter()
//	g, err := r.Route(tree, "a", "b")
//	// g.Begin, g.End, g.Width (length), g.Angle (radians)
//
// The router never writes back to the tree; [Geometry] is handed to the
// persistence layer as-is.
//
// # Missing Endpoints
//
// [PolicyStrict] (the default) fails with SHAPE_NOT_FOUND when either id is
// absent. [PolicyLenient] treats a missing shape as a zero-size rectangle at
// the page origin and logs a warning, which keeps batch routing going over
// broken references. Shapes that exist but carry no size are zero-size
// rectangles under both policies.
package connector

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/coords"
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/observability"
)

// Policy selects how the router treats connector endpoints that do not exist.
type Policy int

const (
	// PolicyStrict reports a missing endpoint as SHAPE_NOT_FOUND.
	PolicyStrict Policy = iota
	// PolicyLenient routes a missing endpoint as a zero-size box at (0,0).
	PolicyLenient
)

// String returns the configuration name of the policy.
func (p Policy) String() string {
	if p == PolicyLenient {
		return "lenient"
	}
	return "strict"
}

// ParsePolicy converts a configuration name into a Policy. Empty means strict.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "strict":
		return PolicyStrict, nil
	case "lenient":
		return PolicyLenient, nil
	default:
		return PolicyStrict, errs.New(errs.ErrCodeInvalidInput, "unknown connector policy %q (must be strict or lenient)", s)
	}
}

// Geometry is the derived routing geometry of one connector.
// Width is the euclidean length between the endpoints and Angle the direction
// from Begin to End in radians.
type Geometry struct {
	FromID string     `json:"from" bson:"from" yaml:"from"`
	ToID   string     `json:"to" bson:"to" yaml:"to"`
	Begin  geom.Point `json:"begin" bson:"begin" yaml:"begin"`
	End    geom.Point `json:"end" bson:"end" yaml:"end"`
	Width  float64    `json:"width" bson:"width" yaml:"width"`
	Angle  float64    `json:"angle" bson:"angle" yaml:"angle"`
}

// Midpoint returns the point halfway between the endpoints, where the
// connector's own pin sits.
func (g Geometry) Midpoint() geom.Point {
	return geom.Pt((g.Begin.X+g.End.X)/2, (g.Begin.Y+g.End.Y)/2)
}

// Degenerate reports whether both endpoints coincide (for example a self-loop).
// This is a defined result, not an error.
func (g Geometry) Degenerate() bool { return g.Begin == g.End }

// Link names the two shapes a connector joins.
type Link struct {
	From string `json:"from" bson:"from" yaml:"from"`
	To   string `json:"to" bson:"to" yaml:"to"`
}

// Router computes connector geometry.
type Router struct {
	policy Policy
	logger *log.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithPolicy sets the missing-endpoint policy.
func WithPolicy(p Policy) Option { return func(r *Router) { r.policy = p } }

// WithLogger sets the logger used for lenient-mode warnings.
func WithLogger(l *log.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRouter creates a strict router that discards log output unless configured otherwise.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		policy: PolicyStrict,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the router's missing-endpoint policy.
func (r *Router) Policy() Policy { return r.policy }

// Route computes the connector geometry between fromID and toID.
// Each endpoint lies on its own shape's boundary, on the ray toward the other
// shape's center.
func (r *Router) Route(src coords.Source, fromID, toID string) (Geometry, error) {
	from, err := r.box(src, fromID)
	if err != nil {
		return Geometry{}, err
	}
	to, err := r.box(src, toID)
	if err != nil {
		return Geometry{}, err
	}

	fc, fh := from.Center(), from.Size().Half()
	tc, th := to.Center(), to.Size().Half()
	begin := EdgePoint(fc, fh.X, fh.Y, tc)
	end := EdgePoint(tc, th.X, th.Y, fc)

	g := Geometry{
		FromID: fromID,
		ToID:   toID,
		Begin:  begin,
		End:    end,
		Width:  begin.Distance(end),
		Angle:  begin.Angle(end),
	}
	observability.Engine().OnRoute(fromID, toID, g.Degenerate())
	return g, nil
}

// RouteAll routes a batch of links in order. In strict mode the first failure
// aborts the batch; in lenient mode only structural errors such as a cyclic
// ancestry abort it.
func (r *Router) RouteAll(src coords.Source, links []Link) ([]Geometry, error) {
	out := make([]Geometry, 0, len(links))
	for _, l := range links {
		g, err := r.Route(src, l.From, l.To)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// box resolves a shape's page-frame bounding box, applying the policy to missing ids.
func (r *Router) box(src coords.Source, id string) (geom.Rect, error) {
	b, err := coords.Bounds(src, id)
	if err == nil {
		return b, nil
	}
	if r.policy == PolicyLenient && errs.Is(err, errs.ErrCodeShapeNotFound) {
		if _, exists := src.Get(id); !exists {
			r.logger.Warn("routing missing connector endpoint at page origin", "shape", id)
			return geom.Rect{}, nil
		}
	}
	return geom.Rect{}, err
}

// EdgePoint returns where a ray from center toward the given point exits the
// axis-aligned box with the given half extents. When toward equals center the
// center itself is returned.
func EdgePoint(center geom.Point, halfWidth, halfHeight float64, toward geom.Point) geom.Point {
	dx, dy := toward.X-center.X, toward.Y-center.Y
	if dx == 0 && dy == 0 {
		return center
	}
	angle := math.Atan2(dy, dx)
	cos, sin := math.Cos(angle), math.Sin(angle)

	tx, ty := math.Inf(1), math.Inf(1)
	if cos != 0 {
		tx = halfWidth / math.Abs(cos)
	}
	if sin != 0 {
		ty = halfHeight / math.Abs(sin)
	}
	t := math.Min(tx, ty)
	return geom.Pt(center.X+t*cos, center.Y+t*sin)
}
