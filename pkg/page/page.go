// Package page is the editing session for one diagram page.
//
// A [Page] owns a single [shape.Tree] together with the page's connectors and
// passes the tree explicitly into every engine call. Edits that change
// geometry keep derived state current before they return: connectors are
// rerouted, and containers whose members were resized are laid out again.
//
//	p, _ := page.New("page-1")
//	a, _ := p.AddShape(shape.New("", geom.Pt(1, 1), geom.Sz(1, 0.5)))
//	b, _ := p.AddShape(shape.New("", geom.Pt(4, 1), geom.Sz(1, 0.5)))
//	_, _ = p.Connect(a, b)
//	_ = p.Save(ctx, s)
//
// A Page performs no locking. Hosts that edit the same page from several
// goroutines must serialize access themselves (see package api).
package page

import (
	"context"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/autolayout"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/connector"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/container"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/coords"
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/store"
)

// Page is an editing session over one page's shape tree.
type Page struct {
	id         string
	tree       *shape.Tree
	connectors []connector.Geometry

	router *connector.Router
	engine *container.Engine
	layout autolayout.Options
	logger *log.Logger
}

// Option configures a Page.
type Option func(*Page)

// WithRouter sets the connector router (default: strict).
func WithRouter(r *connector.Router) Option { return func(p *Page) { p.router = r } }

// WithEngine sets the container engine.
func WithEngine(e *container.Engine) Option { return func(p *Page) { p.engine = e } }

// WithLayoutOptions sets the options used by AutoLayout.
func WithLayoutOptions(o autolayout.Options) Option { return func(p *Page) { p.layout = o } }

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Page) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates an empty page.
func New(id string, opts ...Option) (*Page, error) {
	if err := errs.ValidatePageID(id); err != nil {
		return nil, err
	}
	return newPage(id, shape.NewTree(id), nil, opts), nil
}

// FromDocument rebuilds a page from its stored form.
func FromDocument(doc *store.Document, opts ...Option) (*Page, error) {
	t, conns, err := store.Decode(doc)
	if err != nil {
		return nil, err
	}
	return newPage(doc.PageID, t, conns, opts), nil
}

// Load reads a page from s.
func Load(ctx context.Context, s store.Store, id string, opts ...Option) (*Page, error) {
	doc, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc, opts...)
}

func newPage(id string, t *shape.Tree, conns []connector.Geometry, opts []Option) *Page {
	p := &Page{
		id:         id,
		tree:       t,
		connectors: conns,
		router:     connector.NewRouter(),
		engine:     container.New(),
		layout:     autolayout.DefaultOptions(),
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID returns the page id.
func (p *Page) ID() string { return p.id }

// Tree returns the page's shape tree. Callers must not retain it across
// edits made from other goroutines.
func (p *Page) Tree() *shape.Tree { return p.tree }

// Connectors returns a copy of the page's connector geometry.
func (p *Page) Connectors() []connector.Geometry { return slices.Clone(p.connectors) }

// Document returns the storable form of the page.
func (p *Page) Document() *store.Document { return store.Encode(p.id, p.tree, p.connectors) }

// Save writes the page to s.
func (p *Page) Save(ctx context.Context, s store.Store) error {
	return s.Save(ctx, p.Document())
}

// =============================================================================
// Shapes
// =============================================================================

// AddShape inserts rec and returns its id. An empty id is replaced with a
// fresh UUID.
func (p *Page) AddShape(rec shape.Record) (string, error) {
	if rec.ID == "" {
		rec.ID = p.tree.NewID()
	}
	if err := p.tree.Add(rec); err != nil {
		return "", err
	}
	p.logger.Debug("added shape", "page", p.id, "id", rec.ID, "parent", rec.ParentID)
	return rec.ID, nil
}

// Move sets a shape's pin in its parent's frame and reroutes connectors.
// Moving a container carries its members along; containers listing the shape
// grow or shrink around it but are not restacked, so a moved member keeps
// its new position until the next Relayout.
func (p *Page) Move(id string, pin geom.Point) error {
	r, err := p.tree.Lookup(id)
	if err != nil {
		return err
	}
	snap := p.tree.Snapshot(p.tree.IDs()...)
	delta := pin.Sub(r.Pin)
	if err := p.tree.SetPin(id, pin); err != nil {
		return err
	}
	if err := p.engine.Track(p.tree, id, delta); err != nil {
		p.tree.Restore(snap)
		return err
	}
	if err := p.Reroute(); err != nil {
		p.tree.Restore(snap)
		return err
	}
	return nil
}

// MoveTo places a shape's center at a page-frame point.
func (p *Page) MoveTo(id string, center geom.Point) error {
	pin, err := coords.PinForCenter(p.tree, id, center)
	if err != nil {
		return err
	}
	return p.Move(id, pin)
}

// Resize changes a shape's size, lays out every container that lists it as
// a member, and reroutes connectors.
func (p *Page) Resize(id string, size geom.Size) error {
	if _, err := p.tree.Lookup(id); err != nil {
		return err
	}
	owners := container.Owners(p.tree, id)
	snap := p.tree.Snapshot(p.tree.IDs()...)

	if err := p.tree.SetSize(id, size); err != nil {
		return err
	}
	for _, c := range owners {
		if err := p.engine.Relayout(p.tree, c); err != nil {
			p.tree.Restore(snap)
			return err
		}
	}
	if err := p.Reroute(); err != nil {
		p.tree.Restore(snap)
		return err
	}
	return nil
}

// Attach moves child under parent (or onto the page when parent is empty)
// without moving it on the page: its pin is rewritten for the new frame.
func (p *Page) Attach(childID, parentID string) error {
	abs, err := coords.Absolute(p.tree, childID)
	if err != nil {
		return err
	}
	// The new parent's frame does not depend on the child, so the pin can be
	// computed before the hierarchy changes.
	pin, err := coords.ToLocal(p.tree, parentID, abs)
	if err != nil {
		return err
	}
	if err := p.tree.Attach(childID, parentID); err != nil {
		return err
	}
	if err := p.tree.SetPin(childID, pin); err != nil {
		return err
	}
	return p.Reroute()
}

// Resolve returns the page-frame position of a shape's pin.
func (p *Page) Resolve(id string) (geom.Point, error) { return coords.Absolute(p.tree, id) }

// Bounds returns a shape's page-frame bounding box.
func (p *Page) Bounds(id string) (geom.Rect, error) { return coords.Bounds(p.tree, id) }

// =============================================================================
// Connectors
// =============================================================================

// Connect routes a new connector between two shapes and records it.
func (p *Page) Connect(fromID, toID string) (connector.Geometry, error) {
	g, err := p.router.Route(p.tree, fromID, toID)
	if err != nil {
		return connector.Geometry{}, err
	}
	p.connectors = append(p.connectors, g)
	return g, nil
}

// Links returns the endpoints of every recorded connector.
func (p *Page) Links() []connector.Link {
	links := make([]connector.Link, len(p.connectors))
	for i, g := range p.connectors {
		links[i] = connector.Link{From: g.FromID, To: g.ToID}
	}
	return links
}

// Reroute recomputes every connector from the current geometry. On failure
// the previous geometry is kept.
func (p *Page) Reroute() error {
	if len(p.connectors) == 0 {
		return nil
	}
	routed, err := p.router.RouteAll(p.tree, p.Links())
	if err != nil {
		return err
	}
	p.connectors = routed
	return nil
}

// =============================================================================
// Containers
// =============================================================================

// AddMember adds a member to a container and reroutes connectors.
func (p *Page) AddMember(containerID, memberID string) error {
	if err := p.engine.AddMember(p.tree, containerID, memberID); err != nil {
		return err
	}
	return p.Reroute()
}

// MakeContainer turns a shape into a container with explicit settings, or
// reconfigures an existing one.
func (p *Page) MakeContainer(id string, axis shape.Axis, spacing, padding float64) error {
	if err := p.engine.Promote(p.tree, id, axis, spacing, padding); err != nil {
		return err
	}
	return p.Reroute()
}

// ContainerDefaults returns the spacing and padding MakeContainer should keep
// for id: the shape's current settings if it is already a container, the
// engine defaults otherwise.
func (p *Page) ContainerDefaults(id string) (spacing, padding float64) {
	if r, ok := p.tree.Get(id); ok && r.Container != nil {
		return r.Container.Spacing, r.Container.Padding
	}
	d := p.engine.Defaults()
	return d.Spacing, d.Padding
}

// containers returns every container in tree order.
func (p *Page) containers() []string {
	var out []string
	p.tree.Walk(func(r *shape.Record, _ int) bool {
		if r.Kind == shape.KindContainer {
			out = append(out, r.ID)
		}
		return true
	})
	return out
}

// =============================================================================
// Layout
// =============================================================================

// AutoLayout arranges the page's root shapes with Graphviz using the recorded
// connectors as edges, then lays out every container again and reroutes.
func (p *Page) AutoLayout(ctx context.Context) error {
	g := autolayout.FromTree(p.tree, p.Links())
	centers, err := autolayout.Layout(ctx, g, p.layout)
	if err != nil {
		return err
	}

	snap := p.tree.Snapshot(p.tree.IDs()...)
	if err := autolayout.Apply(p.tree, centers); err != nil {
		return err
	}
	for _, c := range p.containers() {
		if err := p.engine.Relayout(p.tree, c); err != nil {
			p.tree.Restore(snap)
			return err
		}
	}
	if err := p.Reroute(); err != nil {
		p.tree.Restore(snap)
		return err
	}
	p.logger.Debug("auto layout applied", "page", p.id, "nodes", len(g.Nodes), "edges", len(g.Edges))
	return nil
}
