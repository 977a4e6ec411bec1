package pagestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Badger implements Driver on an embedded badger database. Every record is
// one badger key; badger's own transactionality covers single records only,
// so the engine's multi-record guarantees are unchanged.
type Badger struct {
	db *badger.DB
}

// NewBadger opens (or creates) a badger database at path.
func NewBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Read(ctx context.Context, key string) ([]byte, error) {
	var result []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			result = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return result, err
}

func (b *Badger) Write(ctx context.Context, key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (b *Badger) Delete(ctx context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		// badger deletes are idempotent; probe first so absence is visible.
		if _, err := txn.Get([]byte(key)); err != nil {
			return err
		}
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return err
}

func (b *Badger) Exists(ctx context.Context, key string) (bool, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *Badger) Keys(ctx context.Context) ([]string, error) {
	var result []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			result = append(result, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return result, err
}

func (b *Badger) Clear(ctx context.Context) error {
	return b.db.DropAll()
}

func (b *Badger) Close() error {
	return b.db.Close()
}
