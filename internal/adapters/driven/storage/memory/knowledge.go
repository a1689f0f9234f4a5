package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// Ensure stores implement the interfaces.
var (
	_ driven.KnowledgeStore = (*KnowledgeStore)(nil)
	_ driven.ProfileStore   = (*ProfileStore)(nil)
)

// KnowledgeStore is an in-memory implementation of driven.KnowledgeStore.
type KnowledgeStore struct {
	mu      sync.RWMutex
	entries []domain.KnowledgeEntry
}

// NewKnowledgeStore creates a store holding entries in the given order.
func NewKnowledgeStore(entries ...domain.KnowledgeEntry) *KnowledgeStore {
	return &KnowledgeStore{entries: append([]domain.KnowledgeEntry(nil), entries...)}
}

// Table returns the knowledge table.
func (s *KnowledgeStore) Table(_ context.Context) (*domain.KnowledgeTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.NewKnowledgeTable(s.entries), nil
}

// Replace swaps the stored entries.
func (s *KnowledgeStore) Replace(_ context.Context, entries []domain.KnowledgeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]domain.KnowledgeEntry(nil), entries...)
	return nil
}

// ProfileStore is an in-memory implementation of driven.ProfileStore.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.UserProfile
}

// NewProfileStore creates an empty profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]domain.UserProfile)}
}

// GetProfile returns the user's profile or domain.ErrNotFound.
func (s *ProfileStore) GetProfile(_ context.Context, user string) (domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[user]
	if !ok {
		return domain.UserProfile{}, domain.ErrNotFound
	}
	return p, nil
}

// SaveProfile stores a profile.
func (s *ProfileStore) SaveProfile(_ context.Context, user string, profile domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[user] = profile
	return nil
}
