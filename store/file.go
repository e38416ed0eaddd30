package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// File persists keys as a single JSON document on disk. Writes go through a
// temp file and rename so a crash never leaves a half-written token pair.
type File struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewFile opens or creates a file-backed store at path. The parent directory
// is created if missing; the file is owner-readable only.
func NewFile(path string) (*File, error) {
	f := &File{
		path:   path,
		values: map[string]string{},
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to create store directory")
	}

	if err := f.load(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *File) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key], nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[key] = value
	return f.flush()
}

func (f *File) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.values[key]; !ok {
		return nil
	}

	delete(f.values, key)
	return f.flush()
}

func (f *File) load() error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to read store file")
	}

	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, &f.values); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "store file is corrupt")
	}

	return nil
}

func (f *File) flush() error {
	raw, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to encode store file")
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to write store file")
	}

	if err := os.Rename(tmp, f.path); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to replace store file")
	}

	return nil
}
