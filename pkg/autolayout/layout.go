package autolayout

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/cache"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/connector"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/coords"
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/observability"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
)

// PointsPerInch converts Graphviz points to drawing inches.
const PointsPerInch = 72.0

// minExtent keeps unsized shapes visible to Graphviz.
const minExtent = 0.01

// Engines lists the Graphviz layout engines Layout accepts.
var Engines = []string{"dot", "neato", "fdp", "sfdp", "circo", "twopi", "osage"}

// Node is a box to be placed.
type Node struct {
	ID   string
	Size geom.Size
}

// Edge is a directed relation between two nodes.
type Edge struct {
	From, To string
}

// Graph is the input handed to Graphviz.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Options configures a layout run.
type Options struct {
	// Engine is the Graphviz layout engine (default "dot").
	Engine string
	// RankDir is the dot rank direction: TB, BT, LR or RL (default TB).
	RankDir string
	// NodeSep and RankSep are minimum gaps in inches.
	NodeSep float64
	RankSep float64
	// Origin is where the bottom-left corner of the laid-out drawing lands.
	Origin geom.Point
	// Cache, when set, reuses Graphviz output for identical DOT input.
	Cache cache.Cache
}

// DefaultOptions returns top-to-bottom dot layout with half-inch gaps.
func DefaultOptions() Options {
	return Options{
		Engine:  "dot",
		RankDir: "TB",
		NodeSep: 0.5,
		RankSep: 0.5,
		Origin:  geom.Pt(0.5, 0.5),
	}
}

func (o Options) validate() error {
	if !validEngine(o.Engine) {
		return errs.New(errs.ErrCodeInvalidInput, "unknown layout engine %q", o.Engine)
	}
	switch o.RankDir {
	case "TB", "BT", "LR", "RL":
	default:
		return errs.New(errs.ErrCodeInvalidInput, "rankdir must be TB, BT, LR or RL, got %q", o.RankDir)
	}
	if !(o.NodeSep >= 0) || !(o.RankSep >= 0) {
		return errs.New(errs.ErrCodeInvalidInput, "node and rank separation must be >= 0")
	}
	return nil
}

func validEngine(name string) bool {
	for _, e := range Engines {
		if e == name {
			return true
		}
	}
	return false
}

// =============================================================================
// Input
// =============================================================================

// FromTree builds layout input from the page's root shapes. Each link is
// lifted to the roots that contain its endpoints; links inside a single root
// and links to unknown shapes are dropped.
func FromTree(t *shape.Tree, links []connector.Link) Graph {
	var g Graph
	for _, id := range t.Roots() {
		r, _ := t.Get(id)
		g.Nodes = append(g.Nodes, Node{ID: id, Size: r.Size})
	}

	rootOf := func(id string) (string, bool) {
		if _, ok := t.Get(id); !ok {
			return "", false
		}
		chain, err := t.Ancestors(id)
		if err != nil {
			return "", false
		}
		if len(chain) == 0 {
			return id, true
		}
		return chain[len(chain)-1], true
	}
	for _, l := range links {
		from, ok1 := rootOf(l.From)
		to, ok2 := rootOf(l.To)
		if !ok1 || !ok2 || from == to {
			continue
		}
		g.Edges = append(g.Edges, Edge{From: from, To: to})
	}
	return g
}

// ToDOT converts the graph to Graphviz DOT. Node ids are replaced by n0..nN so
// arbitrary shape ids never need quoting; the returned slice maps index to id.
func ToDOT(g Graph, opts Options) (string, []string, error) {
	index := make(map[string]int, len(g.Nodes))
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := index[n.ID]; dup {
			return "", nil, errs.New(errs.ErrCodeDuplicateShape, "node %q listed twice", n.ID)
		}
		index[n.ID] = len(ids)
		ids = append(ids, n.ID)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.RankDir)
	fmt.Fprintf(&buf, "  nodesep=%s;\n", ftoa(opts.NodeSep))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", ftoa(opts.RankSep))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	for i, n := range g.Nodes {
		fmt.Fprintf(&buf, "  n%d [width=%s, height=%s];\n", i,
			ftoa(math.Max(n.Size.Width, minExtent)), ftoa(math.Max(n.Size.Height, minExtent)))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		from, ok := index[e.From]
		if !ok {
			return "", nil, errs.New(errs.ErrCodeShapeNotFound, "edge source %q is not a node", e.From)
		}
		to, ok := index[e.To]
		if !ok {
			return "", nil, errs.New(errs.ErrCodeShapeNotFound, "edge target %q is not a node", e.To)
		}
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", from, to)
	}

	buf.WriteString("}\n")
	return buf.String(), ids, nil
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// =============================================================================
// Layout
// =============================================================================

// Layout runs Graphviz over g and returns the suggested page-frame center of
// every node, keyed by id.
func Layout(ctx context.Context, g Graph, opts Options) (centers map[string]geom.Point, err error) {
	start := time.Now()
	defer func() {
		observability.Engine().OnAutoLayout(ctx, opts.Engine, len(g.Nodes), time.Since(start), err)
	}()

	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(g.Nodes) == 0 {
		return map[string]geom.Point{}, nil
	}
	dot, ids, err := ToDOT(g, opts)
	if err != nil {
		return nil, err
	}

	pos, err := positions(ctx, dot, len(ids), opts)
	if err != nil {
		return nil, err
	}

	centers = make(map[string]geom.Point, len(ids))
	for i, id := range ids {
		centers[id] = pos[i].Mul(1 / PointsPerInch)
	}
	normalize(centers, g.Nodes, opts.Origin)
	return centers, nil
}

// positions renders dot, consulting opts.Cache first. Cache failures only
// cost a Graphviz run; an unreadable cached entry is dropped.
func positions(ctx context.Context, dot string, n int, opts Options) ([]geom.Point, error) {
	var key string
	if opts.Cache != nil {
		key = cache.LayoutKey(opts.Engine, dot)
		if data, hit, err := opts.Cache.Get(ctx, key); err == nil && hit {
			if pos, err := parsePositions(data, n); err == nil {
				return pos, nil
			}
			_ = opts.Cache.Delete(ctx, key)
		}
	}

	out, err := render(ctx, dot, opts.Engine)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeLayout, err, "graphviz %s layout failed", opts.Engine)
	}
	pos, err := parsePositions(out, n)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeLayout, err, "read graphviz output")
	}
	if opts.Cache != nil {
		_ = opts.Cache.Set(ctx, key, out, 0)
	}
	return pos, nil
}

func render(ctx context.Context, dot, engine string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.Layout(engine))

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	nodeStmtRe = regexp.MustCompile(`(?m)^\s*n(\d+)\s*\[([^\]]*)\]`)
	posRe      = regexp.MustCompile(`\bpos="([-+0-9.eE]+),([-+0-9.eE]+)!?"`)
)

// parsePositions reads node pos attributes (in points) from laid-out DOT.
func parsePositions(out []byte, n int) ([]geom.Point, error) {
	text := strings.ReplaceAll(string(out), "\\\n", "")
	pos := make([]geom.Point, n)
	seen := make([]bool, n)

	for _, m := range nodeStmtRe.FindAllStringSubmatch(text, -1) {
		i, err := strconv.Atoi(m[1])
		if err != nil || i >= n {
			continue
		}
		p := posRe.FindStringSubmatch(m[2])
		if p == nil {
			continue
		}
		x, errX := strconv.ParseFloat(p[1], 64)
		y, errY := strconv.ParseFloat(p[2], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("node n%d: bad pos %q,%q", i, p[1], p[2])
		}
		pos[i] = geom.Pt(x, y)
		seen[i] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("no position for node n%d", i)
		}
	}
	return pos, nil
}

// normalize shifts centers so the drawing's bottom-left corner lands on origin.
func normalize(centers map[string]geom.Point, nodes []Node, origin geom.Point) {
	minX, minY := math.Inf(1), math.Inf(1)
	for _, n := range nodes {
		c := centers[n.ID]
		h := n.Size.Half()
		minX = math.Min(minX, c.X-h.X)
		minY = math.Min(minY, c.Y-h.Y)
	}
	shift := origin.Sub(geom.Pt(minX, minY))
	for id, c := range centers {
		centers[id] = c.Add(shift)
	}
}

// =============================================================================
// Apply
// =============================================================================

// Apply moves each listed shape so its page-frame center equals the suggestion.
// Unknown ids fail with SHAPE_NOT_FOUND and leave the tree untouched.
func Apply(t *shape.Tree, centers map[string]geom.Point) error {
	ids := make([]string, 0, len(centers))
	for id := range centers {
		if _, err := t.Lookup(id); err != nil {
			return err
		}
		ids = append(ids, id)
	}
	// Ancestors first, so a moved parent is already in place when its
	// descendants are resolved.
	order := make([]string, 0, len(ids))
	t.Walk(func(r *shape.Record, _ int) bool {
		if _, ok := centers[r.ID]; ok {
			order = append(order, r.ID)
		}
		return true
	})

	snap := t.Snapshot(ids...)
	for _, id := range order {
		pin, err := coords.PinForCenter(t, id, centers[id])
		if err == nil {
			err = t.SetPin(id, pin)
		}
		if err != nil {
			t.Restore(snap)
			return err
		}
	}
	return nil
}
