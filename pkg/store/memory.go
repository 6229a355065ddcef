package store

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/cellgraph/pkg/codec"
	"github.com/matzehuels/cellgraph/pkg/errors"
)

// MemoryStore keeps documents in memory. Records are copied through their
// JSON form so callers never share state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]memoryEntry
}

type memoryEntry struct {
	rec  Record
	body []byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	return load(ctx, BackendMemory, id, func() (*Record, error) {
		s.mu.RLock()
		e, ok := s.docs[id]
		s.mu.RUnlock()
		if !ok {
			return nil, notFound(id)
		}
		doc, err := decodeDocument(e.body)
		if err != nil {
			return nil, err
		}
		rec := e.rec
		rec.Document = doc
		return &rec, nil
	})
}

func (s *MemoryStore) Put(ctx context.Context, id string, doc codec.Document) (*Record, error) {
	return save(ctx, BackendMemory, id, func() (*Record, int, error) {
		body, err := encodeDocument(doc)
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrCodeInvalidDocument, err, "document %q", id)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		var prev *Record
		if e, ok := s.docs[id]; ok {
			prev = &e.rec
		}
		rec := next(id, prev, doc, time.Now())
		meta := *rec
		meta.Document = codec.Document{}
		s.docs[id] = memoryEntry{rec: meta, body: body}
		return rec, len(body), nil
	})
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.docs)), nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
