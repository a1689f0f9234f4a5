// Package plaintext decodes plain text documents.
package plaintext

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents, including text exported from
// native remote documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Format returns the format this extractor handles.
func (e *Extractor) Format() domain.Format {
	return domain.FormatPlainText
}

// Extract decodes raw as UTF-8, replacing invalid sequences with U+FFFD.
// A leading byte order mark is stripped; a UTF-16 mark switches decoding
// to UTF-16. Line endings are normalised to \n.
func (e *Extractor) Extract(_ context.Context, raw []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", fmt.Errorf("%w: text: %v", domain.ErrExtraction, err)
	}

	text := strings.ReplaceAll(string(out), "\r\n", "\n")
	return text, nil
}
