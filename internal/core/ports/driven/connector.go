package driven

import (
	"context"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// Connector searches one document source within a scope group.
// Each source type (local directory, Drive) implements this interface.
type Connector interface {
	// Name returns the connector identifier recorded in Document.Origin.
	Name() string

	// Search returns validated documents whose text contains terms,
	// labelled and weighted from group, in discovery order.
	// Per-document failures are skipped; an error means the whole
	// group could not be searched.
	Search(ctx context.Context, group domain.ScopeGroup, terms string) ([]domain.Document, error)
}
