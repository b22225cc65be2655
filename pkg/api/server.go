package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/buildinfo"
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/page"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// Server is the HTTP front end over a page store.
type Server struct {
	store     store.Store
	pageOpts  []page.Option
	logger    *log.Logger
	mu        sync.Mutex
	pageLocks map[string]*sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPageOptions sets the options every loaded page is opened with.
func WithPageOptions(opts ...page.Option) Option {
	return func(s *Server) { s.pageOpts = opts }
}

// NewServer creates a server backed by st.
func NewServer(st store.Store, opts ...Option) *Server {
	s := &Server{
		store:     st,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		pageLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/pages", func(r chi.Router) {
		r.Get("/", s.handleListPages)
		r.Route("/{page}", func(r chi.Router) {
			r.Get("/", s.handleGetPage)
			r.Put("/", s.handlePutPage)
			r.Delete("/", s.handleDeletePage)
			r.Post("/shapes", s.handleAddShape)
			r.Patch("/shapes/{shape}", s.handleUpdateShape)
			r.Get("/shapes/{shape}/absolute", s.handleAbsolute)
			r.Post("/connectors", s.handleConnect)
			r.Put("/containers/{shape}", s.handleMakeContainer)
			r.Post("/containers/{shape}/members", s.handleAddMember)
			r.Post("/layout", s.handleLayout)
		})
	})
	return r
}

// =============================================================================
// Page access
// =============================================================================

// lockPage returns the unlock function for pageID's mutation queue.
func (s *Server) lockPage(pageID string) func() {
	s.mu.Lock()
	l, ok := s.pageLocks[pageID]
	if !ok {
		l = &sync.Mutex{}
		s.pageLocks[pageID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// withPage runs fn on the loaded page under its lock and saves the page when
// fn succeeds. With create set, a missing page starts out empty.
func (s *Server) withPage(ctx context.Context, pageID string, create bool, fn func(*page.Page) error) (*page.Page, error) {
	if err := errs.ValidatePageID(pageID); err != nil {
		return nil, err
	}
	unlock := s.lockPage(pageID)
	defer unlock()

	p, err := page.Load(ctx, s.store, pageID, s.pageOpts...)
	if create && errs.Is(err, errs.ErrCodeNotFound) {
		p, err = page.New(pageID, s.pageOpts...)
	}
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := p.Save(ctx, s.store); err != nil {
		return nil, err
	}
	return p, nil
}

// readPage loads a page under its lock without saving it.
func (s *Server) readPage(ctx context.Context, pageID string) (*page.Page, error) {
	if err := errs.ValidatePageID(pageID); err != nil {
		return nil, err
	}
	unlock := s.lockPage(pageID)
	defer unlock()
	return page.Load(ctx, s.store, pageID, s.pageOpts...)
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	code := string(errs.GetCode(err))
	if code == "" {
		code = string(errs.ErrCodeInternal)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errs.UserMessage(err)})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
}
