package driving

import (
	"context"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// AnswerService answers questions from the documents a user may see.
type AnswerService interface {
	// Ask answers query for user and returns the full result.
	// Only domain.ErrMissingUser and *domain.UnknownUserError are returned;
	// every other failure degrades to a best-effort answer.
	Ask(ctx context.Context, query, user string) (*domain.Answer, error)

	// SearchAllSources answers query for user and returns the answer text.
	SearchAllSources(ctx context.Context, query, user string) (string, error)

	// Users returns the known user names, sorted.
	Users() []string

	// Status reports the readiness of the configured sources and LLM.
	Status(ctx context.Context) domain.Status
}
