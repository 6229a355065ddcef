package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/cellgraph/pkg/codec"
)

// fileExt is the extension of stored documents.
const fileExt = ".json.zst"

// FileStore keeps each document as a zstd-compressed JSON file in a
// directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to ~/.config/cellgraph/documents/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "cellgraph", "documents")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, backendError(err, "create document dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) documentPath(id string) string {
	return filepath.Join(s.baseDir, id+fileExt)
}

func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	return load(ctx, BackendFile, id, func() (*Record, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.read(id)
	})
}

func (s *FileStore) read(id string) (*Record, error) {
	f, err := os.Open(s.documentPath(id))
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, backendError(err, "open document %q", id)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, backendError(err, "create zstd decoder")
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, backendError(err, "decompress document %q", id)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, backendError(err, "parse document %q", id)
	}
	return &rec, nil
}

func (s *FileStore) Put(ctx context.Context, id string, doc codec.Document) (*Record, error) {
	return save(ctx, BackendFile, id, func() (*Record, int, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		prev, err := s.read(id)
		if err != nil && !isNotFound(err) {
			return nil, 0, err
		}
		rec := next(id, prev, doc, time.Now())
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, 0, backendError(err, "marshal document %q", id)
		}

		var compressed bytes.Buffer
		enc, err := zstd.NewWriter(&compressed)
		if err != nil {
			return nil, 0, backendError(err, "create zstd encoder")
		}
		if _, err := enc.Write(data); err != nil {
			enc.Close()
			return nil, 0, backendError(err, "compress document %q", id)
		}
		if err := enc.Close(); err != nil {
			return nil, 0, backendError(err, "close zstd encoder")
		}

		// Readers never see a partially written file.
		tmp := s.documentPath(id) + ".tmp"
		if err := os.WriteFile(tmp, compressed.Bytes(), 0o644); err != nil {
			return nil, 0, backendError(err, "write document %q", id)
		}
		if err := os.Rename(tmp, s.documentPath(id)); err != nil {
			os.Remove(tmp)
			return nil, 0, backendError(err, "write document %q", id)
		}
		return rec, compressed.Len(), nil
	})
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.documentPath(id)); err != nil && !os.IsNotExist(err) {
		return backendError(err, "remove document %q", id)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, backendError(err, "read document dir")
	}
	var ids []string
	for _, entry := range entries {
		if id, ok := strings.CutSuffix(entry.Name(), fileExt); ok && !entry.IsDir() {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for document files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
