package driven

import (
	"context"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// Extractor turns the raw bytes of one format into text.
type Extractor interface {
	// Format returns the format this extractor handles.
	Format() domain.Format

	// Extract returns the document text.
	Extract(ctx context.Context, raw []byte) (string, error)
}

// TextExtractor dispatches raw bytes to the extractor for their format.
// Extract never fails: extraction errors yield "" and unsupported formats
// yield a sentinel naming the format.
type TextExtractor interface {
	// Extract returns the text of raw in the given format.
	Extract(ctx context.Context, raw []byte, format domain.Format) string

	// Register adds an extractor, replacing any for the same format.
	Register(e Extractor)

	// SupportedFormats returns the formats with a registered extractor.
	SupportedFormats() []domain.Format
}
