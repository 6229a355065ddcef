// Package api provides the HTTP API for stored diagram documents.
//
// Each document is served from a session: the graph built over its stored
// model together with its undo history. Sessions are created on first use
// and every mutation is written back to the store, so the store always
// holds the latest state while undo and redo stay available for as long as
// the server runs.
//
// Routes:
//
//	GET    /healthz
//	GET    /documents
//	POST   /documents                    create with a generated ID
//	GET    /documents/{id}
//	PUT    /documents/{id}               replace, drops the history
//	DELETE /documents/{id}
//	POST   /documents/{id}/changes       XML change log, applied as one edit
//	POST   /documents/{id}/undo
//	POST   /documents/{id}/redo
//	GET    /documents/{id}/states
//	GET    /documents/{id}/report
//	GET    /documents/{id}/render.{format}   svg, dot or states
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/matzehuels/cellgraph/pkg/pipeline"
	"github.com/matzehuels/cellgraph/pkg/store"
)

// RequestTimeout bounds the handling of a single request.
const RequestTimeout = 30 * time.Second

// Server serves documents from a store.
type Server struct {
	store  store.Store
	runner *pipeline.Runner
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a server over st. Documents are built, validated and
// rendered with runner.
func New(st store.Store, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:    st,
		runner:   runner,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// Handler returns the router with all routes and middleware registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))
	r.Use(serverHeader)

	r.Get("/healthz", s.health)

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.listDocuments)
		r.Post("/", s.createDocument)

		r.Route("/{id}", func(r chi.Router) {
			r.Use(validID)
			r.Get("/", s.getDocument)
			r.Put("/", s.putDocument)
			r.Delete("/", s.deleteDocument)
			r.Post("/changes", s.applyChanges)
			r.Post("/undo", s.undo)
			r.Post("/redo", s.redo)
			r.Get("/states", s.states)
			r.Get("/report", s.report)
			r.Get("/render.{format}", s.render)
		})
	})

	return gzhttp.GzipHandler(r)
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
