package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/cellgraph/pkg/buildinfo"
	"github.com/matzehuels/cellgraph/pkg/codec"
	"github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/pipeline"
	"github.com/matzehuels/cellgraph/pkg/render"
	"github.com/matzehuels/cellgraph/pkg/store"
)

// MaxBodySize limits request bodies.
const MaxBodySize = 8 << 20

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// DocumentResponse describes a document revision.
type DocumentResponse struct {
	ID       string          `json:"id"`
	Revision int64           `json:"revision"`
	Document *codec.Document `json:"document,omitempty"`
}

// EditResponse is returned by the mutating document routes.
type EditResponse struct {
	ID       string `json:"id"`
	Revision int64  `json:"revision"`
	Changes  int    `json:"changes,omitempty"`
	CanUndo  bool   `json:"can_undo"`
	CanRedo  bool   `json:"can_redo"`
}

// ErrorResponse is the body of every error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ----- Health -----

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

// ----- Documents -----

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"documents": ids})
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	s.storeDocument(w, r, uuid.NewString(), http.StatusCreated)
}

func (s *Server) putDocument(w http.ResponseWriter, r *http.Request) {
	s.storeDocument(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

// storeDocument decodes a document body, checks that it builds and stores it
// under id. An open session for id is dropped with its history.
func (s *Server) storeDocument(w http.ResponseWriter, r *http.Request, id string, status int) {
	doc, err := readDocument(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.runner.Build(doc); err != nil {
		writeError(w, err)
		return
	}
	var rec *store.Record
	err = s.replace(id, func() (err error) {
		rec, err = s.store.Put(r.Context(), id, doc)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("stored document", "id", id, "revision", rec.Revision, "cells", len(doc.Cells))
	writeJSON(w, status, DocumentResponse{ID: id, Revision: rec.Revision})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{ID: rec.ID, Revision: rec.Revision, Document: &rec.Document})
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.replace(id, func() error {
		return s.store.Delete(r.Context(), id)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----- Edits -----

func (s *Server) applyChanges(w http.ResponseWriter, r *http.Request) {
	sess, err := s.acquire(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer sess.mu.Unlock()

	changes, err := codec.Decode(sess.graph.Model(), http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		writeError(w, err)
		return
	}
	codec.Apply(sess.graph.Model(), changes)
	rec, err := s.persist(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EditResponse{
		ID:       sess.id,
		Revision: rec.Revision,
		Changes:  len(changes),
		CanUndo:  sess.graph.CanUndo(),
		CanRedo:  sess.graph.CanRedo(),
	})
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, true)
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, false)
}

// step undoes or redoes one edit of the session history and persists the
// result.
func (s *Server) step(w http.ResponseWriter, r *http.Request, undo bool) {
	sess, err := s.acquire(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer sess.mu.Unlock()

	g := sess.graph
	switch {
	case undo && !g.CanUndo():
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "nothing to undo"))
		return
	case !undo && !g.CanRedo():
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "nothing to redo"))
		return
	case undo:
		g.Undo()
	default:
		g.Redo()
	}
	rec, err := s.persist(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EditResponse{
		ID:       sess.id,
		Revision: rec.Revision,
		CanUndo:  g.CanUndo(),
		CanRedo:  g.CanRedo(),
	})
}

// ----- Views -----

func (s *Server) states(w http.ResponseWriter, r *http.Request) {
	sess, err := s.acquire(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, pipeline.States(sess.graph))
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	sess, err := s.acquire(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, s.runner.Validate(r.Context(), sess.graph))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.acquire(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer sess.mu.Unlock()

	q := r.URL.Query()
	artifacts, err := s.runner.Render(r.Context(), sess.graph, pipeline.Options{
		Formats:    []string{format},
		Detailed:   q.Get("detailed") == "true",
		Positioned: q.Get("positioned") == "true",
		Logger:     s.logger,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[format])
}

// ----- Helpers -----

// readDocument decodes a JSON or YAML document according to the request
// content type. JSON is the default.
func readDocument(r *http.Request) (codec.Document, error) {
	f := codec.FormatJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return codec.Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "content type")
		}
		if strings.Contains(mt, "yaml") {
			f = codec.FormatYAML
		}
	}
	return codec.Read(io.LimitReader(r.Body, MaxBodySize), f)
}

func contentType(format string) string {
	switch render.Format(format) {
	case render.FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "image/svg+xml"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), ErrorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}
