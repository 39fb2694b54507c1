// Package localfs serves boundary files and metric tables from disk.
package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Fetcher reads sources as file paths, relative ones resolved against Root.
type Fetcher struct {
	Root string
}

// Fetch returns the file contents. The context is checked before reading.
func (f Fetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) && f.Root != "" {
		path = filepath.Join(f.Root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
