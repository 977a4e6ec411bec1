package pagestore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrNotFound     = errors.New("pagestore: not found")
	ErrEmptyKey     = errors.New("pagestore: empty key")
	ErrNilPredicate = errors.New("pagestore: nil predicate")
)

// Driver describes the byte storage operations the engine is built on.
// Implementations must be thread-safe.
//
// Read and Delete return ErrNotFound (possibly wrapped) when the key is
// absent; the engine relies on Delete's ErrNotFound as the stop condition
// when removing a paginated key.
type Driver interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Maintenance operations
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	Close() error
}

// Option customizes Store behavior.
type Option func(*Store)

// WithDriver specifies the storage driver.
// If not provided, NewMemory() will be used.
func WithDriver(d Driver) Option {
	return func(s *Store) {
		if d != nil {
			s.driver = d
		}
	}
}

// WithCodec specifies the serialization codec for pages, metadata, and objects.
// If not provided, JSONCodec is used.
func WithCodec(c Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithLogger specifies a logger for operation logging.
// If not provided, a no-op logger is used (no logging).
func WithLogger(logger Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLogTag sets a tag prefix for all log messages.
// Useful for identifying the source of logs in multi-store scenarios.
func WithLogTag(tag string) Option {
	return func(s *Store) {
		s.logTag = tag
	}
}

// WithObserver registers a change observer at construction time.
// Equivalent to calling RegisterObserver after New.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// Store exposes scalar and object storage over a Driver plus construction of
// paginated List handles. All operations are synchronous; every read and
// write completes on the calling goroutine before the method returns.
type Store struct {
	driver   Driver
	codec    Codec
	logger   Logger
	logTag   string
	locks    keyLocks
	obs      observerSlot
	observer Observer
}

// New creates a Store.
// If no driver is provided via WithDriver, NewMemory() is used.
// If no codec is provided via WithCodec, JSONCodec is used.
// If no logger is provided via WithLogger, a no-op logger is used (no logging).
func New(opts ...Option) *Store {
	s := &Store{
		driver: NewMemory(),   // Default to in-memory
		codec:  JSONCodec{},   // Default to JSON
		logger: defaultLogger, // Default to no-op
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.observer != nil {
		s.obs.register(s.observer)
		s.observer = nil
	}
	return s
}

// pageKey derives the record key of page n (1-based) of a paginated key.
func pageKey(key string, n int) string {
	return key + "." + strconv.Itoa(n)
}

// metaKey derives the record key of the bookkeeping record of a paginated key.
func metaKey(key string) string {
	return key + ".meta"
}

func (s *Store) logf(level string, ctx context.Context, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if s.logTag != "" {
		msg = s.logTag + " " + msg
	}
	switch level {
	case "info":
		s.logger.Info(ctx, msg)
	case "warn":
		s.logger.Warn(ctx, msg)
	case "error":
		s.logger.Error(ctx, msg)
	case "debug":
		s.logger.Debug(ctx, msg)
	}
}

// report routes a caught I/O or serialization error to the logger and the
// registered observer. Argument errors never pass through here.
func (s *Store) report(ctx context.Context, err error, format string, args ...interface{}) {
	s.logf("error", ctx, format+": %v", append(args, err)...)
	s.obs.notifyError(err)
}

// notify signals a successful mutation of key to the registered observer.
func (s *Store) notify(key string) {
	s.obs.notifyChange(key)
}

// RegisterObserver installs o as the change observer. There is a single
// observer slot: registering replaces any previous observer silently.
func (s *Store) RegisterObserver(o Observer) {
	s.obs.register(o)
}

// UnregisterObserver removes the current observer, if any.
func (s *Store) UnregisterObserver() {
	s.obs.register(nil)
}

// SaveObject encodes v with the codec and stores it under key.
// A nil v removes the key entirely, pages and metadata included.
func (s *Store) SaveObject(ctx context.Context, key string, v interface{}) error {
	if key == "" {
		return ErrEmptyKey
	}
	if v == nil {
		return s.Remove(ctx, key)
	}

	data, err := s.codec.Encode(v)
	if err != nil {
		s.report(ctx, err, "SaveObject %s encode failed", key)
		return err
	}

	s.locks.lock(key)
	defer s.locks.unlock(key)

	if err := s.driver.Write(ctx, key, data); err != nil {
		s.report(ctx, err, "SaveObject %s failed", key)
		return err
	}
	s.notify(key)
	return nil
}

// GetObject reads and decodes the value stored under key into T.
// Returns ErrNotFound when the key is absent.
func GetObject[T any](ctx context.Context, s *Store, key string) (T, error) {
	var zero T
	if key == "" {
		return zero, ErrEmptyKey
	}

	s.locks.rlock(key)
	data, err := s.driver.Read(ctx, key)
	s.locks.runlock(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.report(ctx, err, "GetObject %s failed", key)
		}
		return zero, err
	}

	var v T
	if err := s.codec.Decode(data, &v); err != nil {
		s.report(ctx, err, "GetObject %s decode failed", key)
		return zero, err
	}
	return v, nil
}

// GetRaw returns the stored bytes for key without decoding.
func (s *Store) GetRaw(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	s.locks.rlock(key)
	defer s.locks.runlock(key)

	data, err := s.driver.Read(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.report(ctx, err, "GetRaw %s failed", key)
	}
	return data, err
}

// SaveString stores a string value under key.
func (s *Store) SaveString(ctx context.Context, key, value string) error {
	return s.SaveObject(ctx, key, value)
}

// SaveInt stores an int value under key.
func (s *Store) SaveInt(ctx context.Context, key string, value int) error {
	return s.SaveObject(ctx, key, value)
}

// SaveInt64 stores an int64 value under key.
func (s *Store) SaveInt64(ctx context.Context, key string, value int64) error {
	return s.SaveObject(ctx, key, value)
}

// SaveFloat64 stores a float64 value under key.
func (s *Store) SaveFloat64(ctx context.Context, key string, value float64) error {
	return s.SaveObject(ctx, key, value)
}

// SaveBool stores a bool value under key.
func (s *Store) SaveBool(ctx context.Context, key string, value bool) error {
	return s.SaveObject(ctx, key, value)
}

// GetString returns the string stored under key, or def on any failure.
func (s *Store) GetString(ctx context.Context, key, def string) string {
	return getScalar(ctx, s, key, def)
}

// GetInt returns the int stored under key, or def on any failure.
func (s *Store) GetInt(ctx context.Context, key string, def int) int {
	return getScalar(ctx, s, key, def)
}

// GetInt64 returns the int64 stored under key, or def on any failure.
func (s *Store) GetInt64(ctx context.Context, key string, def int64) int64 {
	return getScalar(ctx, s, key, def)
}

// GetFloat64 returns the float64 stored under key, or def on any failure.
func (s *Store) GetFloat64(ctx context.Context, key string, def float64) float64 {
	return getScalar(ctx, s, key, def)
}

// GetBool returns the bool stored under key, or def on any failure.
func (s *Store) GetBool(ctx context.Context, key string, def bool) bool {
	return getScalar(ctx, s, key, def)
}

func getScalar[T any](ctx context.Context, s *Store, key string, def T) T {
	v, err := GetObject[T](ctx, s, key)
	if err != nil {
		return def
	}
	return v
}

// Contains reports whether a base record exists at exactly key.
// Pages and metadata records of a paginated key do not count.
func (s *Store) Contains(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}

	s.locks.rlock(key)
	defer s.locks.runlock(key)

	ok, err := s.driver.Exists(ctx, key)
	if err != nil {
		s.report(ctx, err, "Contains %s failed", key)
		return false
	}
	return ok
}

// Remove deletes every record belonging to key: pages 1, 2, ... until the
// first missing page, then the metadata record, then the base record. The
// observer is notified even when nothing existed.
func (s *Store) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.locks.lock(key)
	defer s.locks.unlock(key)
	return s.removeLocked(ctx, key)
}

// removeLocked is Remove without key locking, for callers already holding
// the write lock.
func (s *Store) removeLocked(ctx context.Context, key string) error {
	var firstErr error
	for n := 1; ; n++ {
		err := s.driver.Delete(ctx, pageKey(key, n))
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			s.report(ctx, err, "Remove %s page %d failed", key, n)
			if firstErr == nil {
				firstErr = err
			}
		}
		break
	}

	for _, k := range []string{metaKey(key), key} {
		if err := s.driver.Delete(ctx, k); err != nil && !errors.Is(err, ErrNotFound) {
			s.report(ctx, err, "Remove %s failed", k)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	s.notify(key)
	return firstErr
}

// Keys returns every record key the driver holds, page and metadata records
// included. Intended for diagnostics and the CLI.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.driver.Keys(ctx)
	if err != nil {
		s.report(ctx, err, "Keys failed")
		return nil, err
	}
	return keys, nil
}

// Clear removes every record in the store.
func (s *Store) Clear(ctx context.Context) error {
	err := s.driver.Clear(ctx)
	if err != nil {
		s.report(ctx, err, "Clear failed")
	}
	return err
}

// Close releases driver resources. The Store must not be used afterwards.
func (s *Store) Close() error {
	return s.driver.Close()
}
