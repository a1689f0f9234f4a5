package driven

import (
	"context"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// KnowledgeStore persists the static knowledge table.
type KnowledgeStore interface {
	// Table returns the knowledge table in stored position order.
	Table(ctx context.Context) (*domain.KnowledgeTable, error)

	// Replace swaps the whole table for entries, keeping their order.
	Replace(ctx context.Context, entries []domain.KnowledgeEntry) error
}

// ProfileStore persists per-user answer personalisation.
type ProfileStore interface {
	// GetProfile returns the profile for a canonical user name.
	// Returns domain.ErrNotFound if the user has no stored profile.
	GetProfile(ctx context.Context, user string) (domain.UserProfile, error)

	// SaveProfile creates or replaces a user's profile.
	SaveProfile(ctx context.Context, user string, profile domain.UserProfile) error
}
