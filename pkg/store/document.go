package store

import (
	"time"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/connector"
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
)

// Document is the persisted form of one page.
type Document struct {
	PageID     string               `json:"page_id" bson:"_id" yaml:"page_id"`
	Shapes     []ShapeDoc           `json:"shapes" bson:"shapes" yaml:"shapes"`
	Connectors []connector.Geometry `json:"connectors,omitempty" bson:"connectors,omitempty" yaml:"connectors,omitempty"`
	UpdatedAt  time.Time            `json:"updated_at" bson:"updated_at" yaml:"updated_at"`
}

// ShapeDoc is the persisted form of a shape record.
type ShapeDoc struct {
	ID        string        `json:"id" bson:"id" yaml:"id"`
	ParentID  string        `json:"parent_id,omitempty" bson:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Name      string        `json:"name,omitempty" bson:"name,omitempty" yaml:"name,omitempty"`
	Pin       geom.Point    `json:"pin" bson:"pin" yaml:"pin"`
	LocPin    geom.Point    `json:"loc_pin" bson:"loc_pin" yaml:"loc_pin"`
	Size      geom.Size     `json:"size" bson:"size" yaml:"size"`
	Kind      string        `json:"kind" bson:"kind" yaml:"kind"`
	Container *ContainerDoc `json:"container,omitempty" bson:"container,omitempty" yaml:"container,omitempty"`
}

// ContainerDoc is the persisted membership metadata of a container.
type ContainerDoc struct {
	Members []string `json:"members" bson:"members" yaml:"members"`
	Axis    string   `json:"axis" bson:"axis" yaml:"axis"`
	Spacing float64  `json:"spacing" bson:"spacing" yaml:"spacing"`
	Padding float64  `json:"padding" bson:"padding" yaml:"padding"`
}

// Encode converts a tree and its connectors into a Document.
func Encode(pageID string, t *shape.Tree, connectors []connector.Geometry) *Document {
	doc := &Document{
		PageID:     pageID,
		Shapes:     make([]ShapeDoc, 0, t.Len()),
		Connectors: append([]connector.Geometry(nil), connectors...),
		UpdatedAt:  time.Now().UTC(),
	}
	t.Walk(func(r *shape.Record, _ int) bool {
		doc.Shapes = append(doc.Shapes, EncodeShape(r))
		return true
	})
	return doc
}

// EncodeShape converts one record into its persisted form.
func EncodeShape(r *shape.Record) ShapeDoc {
	d := ShapeDoc{
		ID:       r.ID,
		ParentID: r.ParentID,
		Name:     r.Name,
		Pin:      r.Pin,
		LocPin:   r.LocPin,
		Size:     r.Size,
		Kind:     r.Kind.String(),
	}
	if c := r.Container; c != nil {
		d.Container = &ContainerDoc{
			Members: append([]string{}, c.Members...),
			Axis:    c.Axis.String(),
			Spacing: c.Spacing,
			Padding: c.Padding,
		}
	}
	return d
}

// Decode rebuilds the tree and connectors of a Document.
//
// Shapes may appear in any order; within one parent, document order becomes
// sibling order. A parent id that names no shape fails with SHAPE_NOT_FOUND,
// a parent chain that loops fails with CYCLIC_ANCESTRY.
func Decode(doc *Document) (*shape.Tree, []connector.Geometry, error) {
	t := shape.NewTree(doc.PageID)

	byParent := make(map[string][]int, len(doc.Shapes))
	known := make(map[string]bool, len(doc.Shapes))
	for i, d := range doc.Shapes {
		byParent[d.ParentID] = append(byParent[d.ParentID], i)
		known[d.ID] = true
	}

	// Breadth-first from the page so parents always exist before children.
	queue := []string{""}
	added := 0
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, i := range byParent[parent] {
			rec, err := decodeShape(doc.Shapes[i])
			if err != nil {
				return nil, nil, err
			}
			if err := t.Add(rec); err != nil {
				return nil, nil, err
			}
			added++
			queue = append(queue, rec.ID)
		}
	}

	if added != len(doc.Shapes) {
		for _, d := range doc.Shapes {
			if _, ok := t.Get(d.ID); ok {
				continue
			}
			if !known[d.ParentID] {
				return nil, nil, errs.New(errs.ErrCodeShapeNotFound, "parent %q of shape %q not found", d.ParentID, d.ID)
			}
			return nil, nil, errs.New(errs.ErrCodeCyclicAncestry, "shape %q is part of a parent cycle", d.ID)
		}
	}
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}
	return t, append([]connector.Geometry(nil), doc.Connectors...), nil
}

func decodeShape(d ShapeDoc) (shape.Record, error) {
	kind, err := shape.ParseKind(d.Kind)
	if err != nil {
		return shape.Record{}, err
	}
	rec := shape.Record{
		ID:       d.ID,
		ParentID: d.ParentID,
		Name:     d.Name,
		Pin:      d.Pin,
		LocPin:   d.LocPin,
		Size:     d.Size,
		Kind:     kind,
	}
	if c := d.Container; c != nil {
		axis, err := shape.ParseAxis(c.Axis)
		if err != nil {
			return shape.Record{}, err
		}
		rec.Container = &shape.ContainerState{
			Members: append([]string{}, c.Members...),
			Axis:    axis,
			Spacing: c.Spacing,
			Padding: c.Padding,
		}
	}
	return rec, nil
}
