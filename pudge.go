package pagestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/recoilme/pudge"
)

// Pudge implements Driver on a pudge database: keys in memory, values on
// disk in a single file pair.
type Pudge struct {
	db *pudge.Db
}

// NewPudge opens (or creates) a pudge database at path.
func NewPudge(path string) (*Pudge, error) {
	db, err := pudge.Open(path, pudge.DefaultConfig)
	if err != nil {
		return nil, fmt.Errorf("open pudge: %w", err)
	}
	return &Pudge{db: db}, nil
}

func (p *Pudge) Read(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.Get(key, &value)
	if errors.Is(err, pudge.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (p *Pudge) Write(ctx context.Context, key string, value []byte) error {
	return p.db.Set(key, value)
}

func (p *Pudge) Delete(ctx context.Context, key string) error {
	err := p.db.Delete(key)
	if errors.Is(err, pudge.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return err
}

func (p *Pudge) Exists(ctx context.Context, key string) (bool, error) {
	return p.db.Has(key)
}

func (p *Pudge) Keys(ctx context.Context) ([]string, error) {
	keys, err := p.db.Keys(nil, 0, 0, true)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, string(k))
	}
	return result, nil
}

func (p *Pudge) Clear(ctx context.Context) error {
	keys, err := p.db.Keys(nil, 0, 0, true)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := p.db.Delete(string(k)); err != nil && !errors.Is(err, pudge.ErrKeyNotFound) {
			return err
		}
	}
	return nil
}

func (p *Pudge) Close() error {
	return p.db.Close()
}
