// Package pagestore provides a pluggable file-backed key-value store with paginated list storage.
//
// # Overview
//
// pagestore persists scalars, objects, and ordered collections without a database
// engine. Large collections are split into fixed-size batches ("pages") stored as
// separate records, with a metadata record tracking page and item bookkeeping.
// It separates concerns between business logic (Store, List) and persistence
// (Driver) and encoding (Codec), following SOLID principles for maintainability
// and extensibility.
//
// # Architecture
//
// The package consists of three main abstractions:
//
// 1. Store: key-scoped facade for scalar/object operations and lifecycle
// 2. List[E]: typed handle implementing the paginated list engine for one key
// 3. Driver / Codec: storage backend and serialization interfaces
//
// A list stored under key "fruit" with batch size 2 occupies records
// "fruit.1", "fruit.2", ... plus a bookkeeping record "fruit.meta".
//
// # Quick Start
//
//	store := pagestore.New(pagestore.WithDriver(pagestore.NewFilesystem("/var/data")))
//	defer store.Close()
//	ctx := context.Background()
//
//	// Scalar operations
//	store.SaveString(ctx, "greeting", "hello")
//	msg := store.GetString(ctx, "greeting", "fallback")
//
//	// Paginated lists
//	fruits := pagestore.NewList[string](store, "fruit", pagestore.Limit(100), pagestore.Batch(25))
//	fruits.Append(ctx, "apple")
//	all := fruits.All(ctx)
//	page := fruits.Page(ctx, 1)
//
// # Custom Drivers
//
// Implement the Driver interface to support custom storage backends:
//
//	type myDriver struct { /* ... */ }
//
//	func (d *myDriver) Read(ctx context.Context, key string) ([]byte, error) {
//	    // Return ErrNotFound for missing keys
//	}
//	// Implement other Driver methods...
//
//	store := pagestore.New(pagestore.WithDriver(&myDriver{}))
//
// Built-in drivers: Memory (default), Filesystem, Badger, SQLite, Pudge.
// Built-in codecs: JSONCodec (default), YAMLCodec, CBORCodec.
//
// # Thread Safety
//
// Operations on a single key are serialized internally, so multiple goroutines
// can safely share a Store and its List handles. Driver implementations must
// also be thread-safe. There is no cross-process locking; two processes
// mutating the same directory race freely.
//
// # Durability
//
// pagestore is not a transactional store. A list save writes its pages first
// and the metadata record last, so a crash mid-write can leave orphan pages
// with stale or absent metadata; readers treat such a key as absent. There is
// no write-ahead log and no rollback of pages already written when a later
// page write fails.
//
// # Error Handling
//
// The package defines sentinel errors for common cases:
//
//	_, err := pagestore.GetObject[User](ctx, store, "missing")
//	if errors.Is(err, pagestore.ErrNotFound) {
//	    // Handle missing key
//	}
//
// Read operations degrade instead of failing: a corrupt or missing page yields
// the empty value (or the accumulated prefix of a list) and the error is
// reported to the registered Observer and the Logger. Write operations return
// errors and report them.
//
// Available errors: ErrNotFound, ErrEmptyKey, ErrNilPredicate
package pagestore
