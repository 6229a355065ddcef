package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/cellgraph/pkg/codec"
	"github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/observability"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Record is a stored document.
type Record struct {
	ID        string         `json:"id" bson:"_id"`
	Revision  int64          `json:"revision" bson:"revision"`
	Document  codec.Document `json:"document" bson:"document"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for document storage backends.
type Store interface {
	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*Record, error)

	// Put stores a document, creating it or replacing the stored one, and
	// returns the new record.
	Put(ctx context.Context, id string, doc codec.Document) (*Record, error)

	// Delete removes a document. Deleting a missing document is not an
	// error.
	Delete(ctx context.Context, id string) error

	// List returns the stored IDs in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases the backend.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend  string // memory, file, sqlite or mongo
	Path     string // directory for file, database file for sqlite
	URI      string // MongoDB connection URI
	Database string // MongoDB database name
}

// Open returns the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		s, err = NewFileStore(cfg.Path)
	case BackendSQLite:
		s, err = OpenSQLite(cfg.Path)
	case BackendMongo:
		s, err = OpenMongo(ctx, cfg.URI, cfg.Database)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// notFound returns the error for a missing document.
func notFound(id string) error {
	return errors.New(errors.ErrCodeDocumentNotFound, "document %q not found", id)
}

// backendError wraps a failure of the storage system.
func backendError(err error, format string, args ...any) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeBackend, err, format, args...)
}

// load validates id, runs fn and reports the read.
func load(ctx context.Context, backend, id string, fn func() (*Record, error)) (*Record, error) {
	start := time.Now()
	rec, err := func() (*Record, error) {
		if err := errors.ValidateDocumentID(id); err != nil {
			return nil, err
		}
		return fn()
	}()
	observability.Store().OnLoad(ctx, backend, id, time.Since(start), err)
	return rec, err
}

// save validates id, runs fn and reports the write. fn returns the stored
// record and its encoded size.
func save(ctx context.Context, backend, id string, fn func() (*Record, int, error)) (*Record, error) {
	start := time.Now()
	var size int
	rec, err := func() (*Record, error) {
		if err := errors.ValidateDocumentID(id); err != nil {
			return nil, err
		}
		rec, n, err := fn()
		size = n
		return rec, err
	}()
	observability.Store().OnSave(ctx, backend, id, size, time.Since(start), err)
	return rec, err
}

// next returns the record replacing prev (nil for a new document).
func next(id string, prev *Record, doc codec.Document, now time.Time) *Record {
	rec := &Record{ID: id, Revision: 1, Document: doc, CreatedAt: now, UpdatedAt: now}
	if prev != nil {
		rec.Revision = prev.Revision + 1
		rec.CreatedAt = prev.CreatedAt
	}
	return rec
}

func encodeDocument(doc codec.Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

func decodeDocument(data []byte) (codec.Document, error) {
	var doc codec.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return codec.Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse document")
	}
	return doc, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeDocumentNotFound)
}
