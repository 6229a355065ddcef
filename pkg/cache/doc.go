// Package cache stores rendered artifacts by key.
//
// # Backends
//
//   - [FileCache]: JSON entry files below a directory, for the CLI
//   - [RedisCache]: a Redis server shared by API instances
//   - [NullCache]: stores nothing, for --no-cache
//
// Wrap a backend with [Instrument] to report hits, misses and writes to
// the registered observability cache hooks.
//
// # Keys
//
// A [Keyer] derives keys from a document hash and the options that shape
// an artifact, so changing either yields a different key:
//
//	k := cache.NewDefaultKeyer()
//	key := k.RenderKey(cache.Hash(docJSON), cache.RenderKeyOpts{Format: "svg"})
//
// [ScopedKeyer] prefixes keys to give callers separate namespaces.
package cache
