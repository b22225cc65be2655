package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/connector"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/coords"
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/page"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/store"
)

// =============================================================================
// Pages
// =============================================================================

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"pages": ids})
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	p, err := s.readPage(r.Context(), chi.URLParam(r, "page"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p.Document())
}

// handlePutPage replaces a page with the posted document after checking that
// it describes a valid tree.
func (s *Server) handlePutPage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "page")
	var doc store.Document
	if err := decodeBody(r, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	if doc.PageID != "" && doc.PageID != pageID {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "document page id %q does not match %q", doc.PageID, pageID))
		return
	}
	doc.PageID = pageID
	if err := errs.ValidatePageID(pageID); err != nil {
		s.writeError(w, r, err)
		return
	}

	unlock := s.lockPage(pageID)
	defer unlock()
	p, err := page.FromDocument(&doc, s.pageOpts...)
	if err == nil {
		err = p.Save(r.Context(), s.store)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p.Document())
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "page")
	if err := errs.ValidatePageID(pageID); err != nil {
		s.writeError(w, r, err)
		return
	}
	unlock := s.lockPage(pageID)
	defer unlock()
	if err := s.store.Delete(r.Context(), pageID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Shapes
// =============================================================================

type addShapeRequest struct {
	ID       string      `json:"id"`
	ParentID string      `json:"parent_id"`
	Name     string      `json:"name"`
	Pin      geom.Point  `json:"pin"`
	LocPin   *geom.Point `json:"loc_pin"`
	Size     geom.Size   `json:"size"`
	Kind     string      `json:"kind"`
}

func (req addShapeRequest) record() (shape.Record, error) {
	kind, err := shape.ParseKind(req.Kind)
	if err != nil {
		return shape.Record{}, err
	}
	if kind == shape.KindGroup || kind == shape.KindContainer {
		return shape.Record{}, errs.New(errs.ErrCodeInvalidInput, "kind %s is reached by promotion, not creation", kind)
	}
	rec := shape.New(req.ID, req.Pin, req.Size)
	rec.ParentID = req.ParentID
	rec.Name = req.Name
	rec.Kind = kind
	if req.LocPin != nil {
		rec.LocPin = *req.LocPin
	}
	return rec, nil
}

func (s *Server) handleAddShape(w http.ResponseWriter, r *http.Request) {
	var req addShapeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := req.record()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var id string
	p, err := s.withPage(r.Context(), chi.URLParam(r, "page"), true, func(p *page.Page) error {
		var err error
		id, err = p.AddShape(rec)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, _ := p.Tree().Get(id)
	writeJSON(w, http.StatusCreated, store.EncodeShape(created))
}

// updateShapeRequest carries the edits of a PATCH. Center wins over Pin when
// both are given; ParentID is applied first.
type updateShapeRequest struct {
	ParentID *string     `json:"parent_id"`
	Pin      *geom.Point `json:"pin"`
	Center   *geom.Point `json:"center"`
	Size     *geom.Size  `json:"size"`
}

func (s *Server) handleUpdateShape(w http.ResponseWriter, r *http.Request) {
	var req updateShapeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "shape")

	p, err := s.withPage(r.Context(), chi.URLParam(r, "page"), false, func(p *page.Page) error {
		if req.ParentID != nil {
			if err := p.Attach(id, *req.ParentID); err != nil {
				return err
			}
		}
		if req.Size != nil {
			if err := p.Resize(id, *req.Size); err != nil {
				return err
			}
		}
		switch {
		case req.Center != nil:
			return p.MoveTo(id, *req.Center)
		case req.Pin != nil:
			return p.Move(id, *req.Pin)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, _ := p.Tree().Get(id)
	writeJSON(w, http.StatusOK, store.EncodeShape(updated))
}

type absoluteResponse struct {
	ID     string     `json:"id"`
	Pin    geom.Point `json:"pin"`
	Center geom.Point `json:"center"`
	Bounds geom.Rect  `json:"bounds"`
}

func (s *Server) handleAbsolute(w http.ResponseWriter, r *http.Request) {
	p, err := s.readPage(r.Context(), chi.URLParam(r, "page"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "shape")
	pin, err := p.Resolve(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	b, err := coords.Bounds(p.Tree(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, absoluteResponse{ID: id, Pin: pin, Center: b.Center(), Bounds: b})
}

// =============================================================================
// Connectors, containers, layout
// =============================================================================

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connector.Link
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var g connector.Geometry
	_, err := s.withPage(r.Context(), chi.URLParam(r, "page"), false, func(p *page.Page) error {
		var err error
		g, err = p.Connect(req.From, req.To)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

type containerRequest struct {
	Axis    string   `json:"axis"`
	Spacing *float64 `json:"spacing"`
	Padding *float64 `json:"padding"`
}

func (s *Server) handleMakeContainer(w http.ResponseWriter, r *http.Request) {
	var req containerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	axis, err := shape.ParseAxis(req.Axis)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "shape")

	p, err := s.withPage(r.Context(), chi.URLParam(r, "page"), false, func(p *page.Page) error {
		spacing, padding := p.ContainerDefaults(id)
		if req.Spacing != nil {
			spacing = *req.Spacing
		}
		if req.Padding != nil {
			padding = *req.Padding
		}
		return p.MakeContainer(id, axis, spacing, padding)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, _ := p.Tree().Get(id)
	writeJSON(w, http.StatusOK, store.EncodeShape(c))
}

type memberRequest struct {
	Member string `json:"member"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "shape")
	p, err := s.withPage(r.Context(), chi.URLParam(r, "page"), false, func(p *page.Page) error {
		return p.AddMember(id, req.Member)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, _ := p.Tree().Get(id)
	writeJSON(w, http.StatusOK, store.EncodeShape(c))
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	p, err := s.withPage(r.Context(), chi.URLParam(r, "page"), false, func(p *page.Page) error {
		return p.AutoLayout(r.Context())
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p.Document())
}
