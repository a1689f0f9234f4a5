package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/logger"
	"github.com/custodia-labs/docask/internal/normalisers/docx"
	"github.com/custodia-labs/docask/internal/normalisers/pdf"
	"github.com/custodia-labs/docask/internal/normalisers/plaintext"
	"github.com/custodia-labs/docask/internal/normalisers/rtf"
	"github.com/custodia-labs/docask/internal/normalisers/xlsx"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// Registry maps formats to their extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.Format]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[domain.Format]driven.Extractor),
	}
}

// NewDefaultRegistry creates a registry with every built-in extractor.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(plaintext.New())
	r.Register(xlsx.New())
	r.Register(rtf.New())
	return r
}

// Register adds an extractor, replacing any for the same format.
func (r *Registry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[e.Format()] = e
}

// Extract returns the text of raw in the given format.
func (r *Registry) Extract(ctx context.Context, raw []byte, format domain.Format) string {
	r.mu.RLock()
	e, ok := r.extractors[format]
	r.mu.RUnlock()

	if !ok || !format.IsSupported() {
		return UnsupportedText(format)
	}

	text, err := e.Extract(ctx, raw)
	if err != nil {
		logger.Warn("Extracting %s text: %v", format, err)
		return ""
	}
	return text
}

// SupportedFormats returns the formats with a registered extractor, sorted.
func (r *Registry) SupportedFormats() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]domain.Format, 0, len(r.extractors))
	for f := range r.extractors {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// UnsupportedText is the sentinel returned for formats that cannot be read.
func UnsupportedText(format domain.Format) string {
	return fmt.Sprintf("[unsupported format: %s]", format)
}
