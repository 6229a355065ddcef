// Package store persists documents by ID.
//
// # Backends
//
// The [Store] interface has four implementations:
//   - [MemoryStore]: in-process map for tests and single-process servers
//   - [FileStore]: one zstd-compressed JSON file per document, for the CLI
//   - [SQLiteStore]: a single SQLite database file
//   - [MongoStore]: a MongoDB collection for shared deployments
//
// [Open] selects a backend from a [Config]:
//
//	s, err := store.Open(ctx, store.Config{Backend: "sqlite", Path: "docs.db"})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	rec, err := s.Put(ctx, "flow", codec.FromModel(m))
//	rec, err = s.Get(ctx, "flow")
//
// # Revisions
//
// Every Put increments the revision of a document, starting at 1. The
// revision lets callers detect that a document changed since they read it.
//
// # Errors
//
// Missing documents return an error with code DOCUMENT_NOT_FOUND, invalid
// IDs one with INVALID_INPUT, backend failures one with BACKEND_ERROR.
// Reads and writes are reported to the registered observability store
// hooks.
package store
