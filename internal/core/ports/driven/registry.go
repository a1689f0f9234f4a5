package driven

import "github.com/custodia-labs/docask/internal/core/domain"

// RegistryStore provides the current user registry snapshot.
// Implementations may reload from disk and swap snapshots atomically;
// a returned snapshot is never mutated.
type RegistryStore interface {
	// Snapshot returns the current registry.
	Snapshot() *domain.Registry
}
