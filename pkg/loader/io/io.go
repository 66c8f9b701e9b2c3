package io

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/OFFIS-RIT/graphlift/pkg/loader"
)

// IOFetcher reads table files from a local directory.
type IOFetcher struct {
	dir string
}

// NewIOFetcher creates a fetcher rooted at dir.
func NewIOFetcher(dir string) *IOFetcher {
	return &IOFetcher{dir: dir}
}

// Fetch reads dir/name. A missing file wraps loader.ErrTableNotFound.
func (f *IOFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(f.dir, filepath.Base(name))
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", loader.ErrTableNotFound, path)
	}
	return data, err
}
