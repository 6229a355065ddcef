package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/cellgraph/pkg/codec"
	"github.com/matzehuels/cellgraph/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

//go:embed pragmas.sql
var pragmasSQL string

// SQLiteStore keeps documents in a SQLite database. Bodies are stored as
// JSON.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "sqlite store needs a database path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, backendError(err, "create database directory")
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, backendError(err, "open sqlite")
	}
	// SQLite allows one writer at a time.
	conn.SetMaxOpenConns(1)

	for _, pragma := range strings.Split(pragmasSQL, "\n") {
		pragma = strings.TrimSpace(pragma)
		if pragma == "" || strings.HasPrefix(pragma, "--") {
			continue
		}
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, backendError(err, "apply pragma %q", pragma)
		}
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, backendError(err, "apply schema")
	}
	return &SQLiteStore{conn: conn, path: path}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	return load(ctx, BackendSQLite, id, func() (*Record, error) {
		rec, body, err := s.row(ctx, s.conn, id)
		if err != nil {
			return nil, err
		}
		if rec.Document, err = decodeDocument(body); err != nil {
			return nil, err
		}
		return rec, nil
	})
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) row(ctx context.Context, q queryer, id string) (*Record, []byte, error) {
	var (
		rec              = Record{ID: id}
		created, updated int64
		body             []byte
	)
	err := q.QueryRowContext(ctx,
		`SELECT revision, created_at, updated_at, body FROM documents WHERE id = ?`, id,
	).Scan(&rec.Revision, &created, &updated, &body)
	if err == sql.ErrNoRows {
		return nil, nil, notFound(id)
	}
	if err != nil {
		return nil, nil, backendError(err, "query document %q", id)
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return &rec, body, nil
}

func (s *SQLiteStore) Put(ctx context.Context, id string, doc codec.Document) (*Record, error) {
	return save(ctx, BackendSQLite, id, func() (*Record, int, error) {
		body, err := encodeDocument(doc)
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrCodeInvalidDocument, err, "document %q", id)
		}

		tx, err := s.conn.BeginTx(ctx, nil)
		if err != nil {
			return nil, 0, backendError(err, "begin transaction")
		}
		defer tx.Rollback()

		prev, _, err := s.row(ctx, tx, id)
		if err != nil && !isNotFound(err) {
			return nil, 0, err
		}
		rec := next(id, prev, doc, time.Now().UTC().Truncate(time.Millisecond))
		_, err = tx.ExecContext(ctx,
			`INSERT INTO documents (id, revision, created_at, updated_at, body) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET revision = excluded.revision, updated_at = excluded.updated_at, body = excluded.body`,
			id, rec.Revision, rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli(), body,
		)
		if err != nil {
			return nil, 0, backendError(err, "store document %q", id)
		}
		if err := tx.Commit(); err != nil {
			return nil, 0, backendError(err, "commit document %q", id)
		}
		return rec, len(body), nil
	})
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return backendError(err, "delete document %q", id)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id FROM documents ORDER BY id`)
	if err != nil {
		return nil, backendError(err, "list documents")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, backendError(err, "scan document id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return ids, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

var _ Store = (*SQLiteStore)(nil)
