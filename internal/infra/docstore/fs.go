package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tarificateur/go_backend/internal/domain/quote/document"
)

// Dir keeps documents as files in one directory.
type Dir struct {
	Path string
}

func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &Dir{Path: path}, nil
}

func (d *Dir) Get(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.Path, filepath.Base(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, document.ErrNotStored
	}
	return data, err
}

func (d *Dir) Put(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(d.Path, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(d.Path, filepath.Base(name)))
}

func (d *Dir) DeleteMatching(_ context.Context, prefix string, match func(string) bool) error {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || !match(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(d.Path, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
