package api

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/cellgraph/pkg/codec"
	"github.com/matzehuels/cellgraph/pkg/graph"
	"github.com/matzehuels/cellgraph/pkg/store"
)

// session is an open document. The graph is not safe for concurrent use,
// so every access holds mu. A closed session no longer owns the stored
// document and must not be persisted.
type session struct {
	mu       sync.Mutex
	id       string
	graph    *graph.Graph
	revision int64
	closed   bool
	lastUsed time.Time // guarded by Server.mu
}

// session returns the open session for id, loading the document from the
// store on first use.
func (s *Server) session(ctx context.Context, id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if sess, ok := s.sessions[id]; ok {
		sess.lastUsed = now
		return sess, nil
	}

	rec, err := s.runner.LoadStored(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	g, err := s.runner.Build(rec.Document)
	if err != nil {
		return nil, err
	}
	sess := &session{id: id, graph: g, revision: rec.Revision, lastUsed: now}
	s.sessions[id] = sess
	s.logger.Debug("opened session", "id", id, "revision", rec.Revision)
	return sess, nil
}

// acquire returns the open session of id with its mutex held. A session
// closed while the caller waited for it is replaced by a fresh one loaded
// from the store.
func (s *Server) acquire(ctx context.Context, id string) (*session, error) {
	for {
		sess, err := s.session(ctx, id)
		if err != nil {
			return nil, err
		}
		sess.mu.Lock()
		if !sess.closed {
			return sess, nil
		}
		sess.mu.Unlock()
	}
}

// replace closes the session of id and runs fn, which writes or deletes the
// stored document. No session of id can be opened or persisted until fn
// returns.
func (s *Server) replace(id string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.mu.Lock()
		sess.closed = true
		sess.mu.Unlock()
		delete(s.sessions, id)
	}
	return fn()
}

// EvictIdle closes the sessions not used within maxIdle and returns how
// many were closed. Sessions serving a request are skipped. The undo
// history of closed sessions is lost; the documents stay in the store.
func (s *Server) EvictIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	n := 0
	for id, sess := range s.sessions {
		if !sess.lastUsed.Before(cutoff) || !sess.mu.TryLock() {
			continue
		}
		sess.closed = true
		sess.mu.Unlock()
		delete(s.sessions, id)
		n++
	}
	if n > 0 {
		s.logger.Debug("evicted idle sessions", "count", n, "open", len(s.sessions))
	}
	return n
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (s *Server) RunEviction(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle(maxIdle)
		}
	}
}

// persist compacts the model of sess and writes it to the store. The caller
// holds sess.mu.
func (s *Server) persist(ctx context.Context, sess *session) (*store.Record, error) {
	sess.graph.Compact()
	rec, err := s.store.Put(ctx, sess.id, codec.FromModel(sess.graph.Model()))
	if err != nil {
		return nil, err
	}
	sess.revision = rec.Revision
	return rec, nil
}
