package mocks

import (
	"context"
	"sync"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
)

type translationKey struct {
	keyID      int64
	languageID int64
}

// ProjectStore is an in-memory project model. It implements ports.ProjectReader,
// ports.KeyReader, ports.LanguageReader, ports.TranslationReader,
// ports.TranslationWriter and ports.MetadataProvider.
type ProjectStore struct {
	mu           sync.RWMutex
	projects     map[int64]domain.Project
	keys         map[int64]domain.Key
	languages    map[int64][]domain.Language
	translations map[translationKey]domain.Translation

	memory  []domain.TranslationMemoryItem
	related []domain.RelatedKey

	// MetadataCalls counts TranslationMemory and RelatedKeys invocations.
	MetadataCalls int
}

// NewProjectStore creates an empty project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects:     make(map[int64]domain.Project),
		keys:         make(map[int64]domain.Key),
		languages:    make(map[int64][]domain.Language),
		translations: make(map[translationKey]domain.Translation),
	}
}

// AddProject stores a project.
func (s *ProjectStore) AddProject(p domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects[p.ID] = p
}

// AddKey stores a key.
func (s *ProjectStore) AddKey(k domain.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys[k.ID] = k
}

// AddLanguage appends a project language.
func (s *ProjectStore) AddLanguage(l domain.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.languages[l.ProjectID] = append(s.languages[l.ProjectID], l)
}

// SetMetadata replaces the canned translation memory and related keys.
func (s *ProjectStore) SetMetadata(memory []domain.TranslationMemoryItem, related []domain.RelatedKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory = memory
	s.related = related
}

// Translation returns a stored translation text.
func (s *ProjectStore) Translation(keyID, languageID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.translations[translationKey{keyID: keyID, languageID: languageID}]

	return t.Text, ok
}

// FindProject returns a project.
func (s *ProjectStore) FindProject(_ context.Context, projectID int64) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[projectID]
	if !ok {
		return nil, nil
	}

	return &p, nil
}

// FindKey returns a key.
func (s *ProjectStore) FindKey(_ context.Context, keyID int64) (*domain.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.keys[keyID]
	if !ok {
		return nil, nil
	}

	return &k, nil
}

// ProjectLanguages returns languages in insertion order.
func (s *ProjectStore) ProjectLanguages(_ context.Context, projectID int64) ([]domain.Language, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.Language(nil), s.languages[projectID]...), nil
}

// FindTranslation returns a translation.
func (s *ProjectStore) FindTranslation(_ context.Context, keyID, languageID int64) (*domain.Translation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.translations[translationKey{keyID: keyID, languageID: languageID}]
	if !ok {
		return nil, nil
	}

	return &t, nil
}

// SetTranslation stores a translation.
func (s *ProjectStore) SetTranslation(_ context.Context, keyID, languageID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.translations[translationKey{keyID: keyID, languageID: languageID}] = domain.Translation{
		KeyID:      keyID,
		LanguageID: languageID,
		Text:       text,
	}

	return nil
}

// TranslationMemory returns the canned translation memory.
func (s *ProjectStore) TranslationMemory(_ context.Context, _ domain.Key, _, _ int64, limit int) ([]domain.TranslationMemoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.MetadataCalls++

	return truncate(s.memory, limit), nil
}

// RelatedKeys returns the canned related keys.
func (s *ProjectStore) RelatedKeys(_ context.Context, _ domain.Key, _, _ int64, limit int) ([]domain.RelatedKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.MetadataCalls++

	return truncate(s.related, limit), nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}

	return items
}
