package memory

import (
	"sync/atomic"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// Ensure RegistryStore implements the interface.
var _ driven.RegistryStore = (*RegistryStore)(nil)

// RegistryStore holds a registry snapshot in memory. Swap replaces it
// atomically; readers never observe a partially built registry.
type RegistryStore struct {
	current atomic.Pointer[domain.Registry]
}

// NewRegistryStore creates a store holding reg.
func NewRegistryStore(reg *domain.Registry) *RegistryStore {
	s := &RegistryStore{}
	s.current.Store(reg)
	return s
}

// Snapshot returns the current registry.
func (s *RegistryStore) Snapshot() *domain.Registry {
	return s.current.Load()
}

// Swap installs a new snapshot.
func (s *RegistryStore) Swap(reg *domain.Registry) {
	s.current.Store(reg)
}
