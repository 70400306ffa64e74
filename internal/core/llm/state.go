package llm

import (
	"context"
	"sync"
	"time"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
)

// SuspensionStore keeps, per logical provider name, the instant each provider
// config becomes eligible again. Entries are never pruned; expired ones are ignored.
type SuspensionStore interface {
	Suspensions(ctx context.Context, name string) (map[domain.ProviderID]time.Time, error)
	Suspend(ctx context.Context, name string, id domain.ProviderID, until time.Time) error
}

// MemorySuspensionStore is a process-local SuspensionStore. Each name has its own lock.
type MemorySuspensionStore struct {
	entries sync.Map // name -> *suspensionEntry
}

type suspensionEntry struct {
	mu    sync.Mutex
	until map[domain.ProviderID]time.Time
}

var _ SuspensionStore = (*MemorySuspensionStore)(nil)

// NewMemorySuspensionStore creates an empty store.
func NewMemorySuspensionStore() *MemorySuspensionStore {
	return &MemorySuspensionStore{}
}

func (s *MemorySuspensionStore) entry(name string) *suspensionEntry {
	if e, ok := s.entries.Load(name); ok {
		return e.(*suspensionEntry)
	}

	e, _ := s.entries.LoadOrStore(name, &suspensionEntry{until: make(map[domain.ProviderID]time.Time)})

	return e.(*suspensionEntry)
}

// Suspensions returns a snapshot of the name's suspension map.
func (s *MemorySuspensionStore) Suspensions(_ context.Context, name string) (map[domain.ProviderID]time.Time, error) {
	e := s.entry(name)

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[domain.ProviderID]time.Time, len(e.until))
	for id, until := range e.until {
		out[id] = until
	}

	return out, nil
}

// Suspend records until for id, overwriting any previous value.
func (s *MemorySuspensionStore) Suspend(_ context.Context, name string, id domain.ProviderID, until time.Time) error {
	e := s.entry(name)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.until[id] = until

	return nil
}

// RotationState remembers the last provider config used per logical name.
// Lock returns the name's entry locked; callers must Unlock it.
type RotationState struct {
	entries sync.Map // name -> *RotationEntry
}

// RotationEntry is the rotation record of one logical name.
type RotationEntry struct {
	mu       sync.Mutex
	lastUsed domain.ProviderID
}

// NewRotationState creates an empty rotation state.
func NewRotationState() *RotationState {
	return &RotationState{}
}

// Lock acquires the entry for name.
func (r *RotationState) Lock(name string) *RotationEntry {
	e, ok := r.entries.Load(name)
	if !ok {
		e, _ = r.entries.LoadOrStore(name, &RotationEntry{})
	}

	entry := e.(*RotationEntry)
	entry.mu.Lock()

	return entry
}

// Unlock releases the entry.
func (e *RotationEntry) Unlock() {
	e.mu.Unlock()
}

// Next picks the candidate after the last used one, wrapping around, and records it.
// An unknown or unset last id starts from the first candidate.
func (e *RotationEntry) Next(candidates []domain.ProviderConfig) domain.ProviderConfig {
	last := -1

	for i, c := range candidates {
		if c.ID == e.lastUsed {
			last = i
			break
		}
	}

	next := candidates[(last+1)%len(candidates)]
	e.lastUsed = next.ID

	return next
}

// LastUsed returns the id stored by the previous Next call.
func (e *RotationEntry) LastUsed() domain.ProviderID {
	return e.lastUsed
}
