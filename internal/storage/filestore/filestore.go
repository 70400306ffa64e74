// Package filestore reads uploaded screenshots from a local directory.
package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/lueurxax/tolgee-ai/internal/core/ports"
)

const screenshotsFolder = "screenshots"

// Store serves files below a root directory. Paths cannot escape the root.
type Store struct {
	root *os.Root
}

var _ ports.ScreenshotStore = (*Store)(nil)

// Open opens dir as the storage root.
func Open(dir string) (*Store, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open file storage: %w", err)
	}

	return &Store{root: root}, nil
}

// ScreenshotPath returns the storage path of a screenshot file.
func (s *Store) ScreenshotPath(filename string) string {
	return path.Join(screenshotsFolder, filename)
}

// ReadFile reads a file relative to the root.
func (s *Store) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return data, nil
}

// Close releases the root directory.
func (s *Store) Close() error {
	return s.root.Close()
}
