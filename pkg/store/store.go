package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/connector"
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/observability"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
)

// Store is the interface for page persistence backends.
type Store interface {
	// Load returns the stored document of a page, or NOT_FOUND.
	Load(ctx context.Context, pageID string) (*Document, error)

	// Save creates or replaces the document of doc.PageID.
	Save(ctx context.Context, doc *Document) error

	// Delete removes a page. Deleting a missing page is not an error.
	Delete(ctx context.Context, pageID string) error

	// List returns the ids of every stored page in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// LoadShapeTree loads a page and rebuilds its tree and connectors.
func LoadShapeTree(ctx context.Context, s Store, pageID string) (*shape.Tree, []connector.Geometry, error) {
	doc, err := s.Load(ctx, pageID)
	if err != nil {
		return nil, nil, err
	}
	return Decode(doc)
}

// SaveShapeTree encodes a tree and its connectors and saves them under pageID.
func SaveShapeTree(ctx context.Context, s Store, pageID string, t *shape.Tree, connectors []connector.Geometry) error {
	if err := errs.ValidatePageID(pageID); err != nil {
		return err
	}
	return s.Save(ctx, Encode(pageID, t, connectors))
}

// =============================================================================
// Codec
// =============================================================================

// Marshal encodes a document as the JSON stored by the file and redis backends.
func Marshal(doc *Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStore, err, "marshal page %s", doc.PageID)
	}
	return data, nil
}

// Unmarshal decodes a document written by Marshal.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStore, err, "unmarshal page")
	}
	return &doc, nil
}

func notFound(pageID string) error {
	return errs.New(errs.ErrCodeNotFound, "page %q not found", pageID)
}

// =============================================================================
// Instrumentation
// =============================================================================

// Instrument wraps s so every Load and Save is reported to the store hooks
// under the given backend name.
func Instrument(backend string, s Store) Store {
	return &instrumented{Store: s, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (i *instrumented) Load(ctx context.Context, pageID string) (*Document, error) {
	start := time.Now()
	doc, err := i.Store.Load(ctx, pageID)
	observability.Store().OnLoad(ctx, i.backend, pageID, time.Since(start), err)
	return doc, err
}

func (i *instrumented) Save(ctx context.Context, doc *Document) error {
	start := time.Now()
	err := i.Store.Save(ctx, doc)
	observability.Store().OnSave(ctx, i.backend, doc.PageID, len(doc.Shapes), time.Since(start), err)
	return err
}
