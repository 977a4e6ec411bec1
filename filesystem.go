package pagestore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Filesystem implements Driver with one file per record in a flat
// directory. Record keys map to file names via URL path escaping, so keys
// containing separators or other unsafe characters stay inside the
// directory. Writes go through a temp file and rename; a single write is
// atomic, but multi-record operations are not.
type Filesystem struct {
	dir string
}

// NewFilesystem creates a file-per-record Driver rooted at dir.
// The directory is created lazily on first write.
func NewFilesystem(dir string) *Filesystem {
	return &Filesystem{dir: dir}
}

func (f *Filesystem) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key))
}

func (f *Filesystem) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}
	return data, nil
}

func (f *Filesystem) Write(ctx context.Context, key string, value []byte) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *Filesystem) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return err
}

func (f *Filesystem) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(f.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Keys returns the record keys of every regular file in the directory.
func (f *Filesystem) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var result []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		key, err := url.PathUnescape(e.Name())
		if err != nil {
			continue
		}
		result = append(result, key)
	}
	return result, nil
}

// Clear removes every record file. The directory itself is kept.
func (f *Filesystem) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var firstErr error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(f.dir, e.Name())); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *Filesystem) Close() error {
	return nil
}
