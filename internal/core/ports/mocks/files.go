package mocks

import (
	"context"
	"sync"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
)

// ScreenshotStore is an in-memory implementation of ports.ScreenshotStore.
type ScreenshotStore struct {
	mu    sync.RWMutex
	files map[string][]byte
	reads []string
}

// NewScreenshotStore creates an empty screenshot store.
func NewScreenshotStore() *ScreenshotStore {
	return &ScreenshotStore{files: make(map[string][]byte)}
}

// Put stores a file under its screenshot path.
func (s *ScreenshotStore) Put(filename string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[s.ScreenshotPath(filename)] = data
}

// Reads returns the paths read so far.
func (s *ScreenshotStore) Reads() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.reads...)
}

// ScreenshotPath returns the storage path of a screenshot file.
func (s *ScreenshotStore) ScreenshotPath(filename string) string {
	return "screenshots/" + filename
}

// ReadFile returns stored bytes.
func (s *ScreenshotStore) ReadFile(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads = append(s.reads, path)

	data, ok := s.files[path]
	if !ok {
		return nil, ErrFileNotFound
	}

	return data, nil
}

// Highlighter records calls and prefixes the image with a marker.
type Highlighter struct {
	mu    sync.Mutex
	Calls int
}

// Highlight implements ports.ImageHighlighter.
func (h *Highlighter) Highlight(image []byte, _ domain.Screenshot, _ []int64) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Calls++

	return append([]byte("highlighted:"), image...), nil
}
