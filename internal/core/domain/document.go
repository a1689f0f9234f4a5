package domain

import (
	"fmt"
	"unicode/utf8"
)

// ContentLimit is the number of characters kept in Document.Content.
const ContentLimit = 2000

// Document is one candidate retrieved for a single query.
// Documents are created fresh per query and never persisted.
type Document struct {
	// ID is the source-specific handle used to re-fetch raw bytes
	// (a local path or a remote file id).
	ID string

	// Filename is the display name used for citation and tie-breaks.
	Filename string

	// Format is the declared document format.
	Format Format

	// Content is the extracted text bounded to ContentLimit characters.
	// This is what the language model sees by default.
	Content string

	// FullContent is the complete extracted text.
	// Only the excerpt selector reads it.
	FullContent string

	// SourceLabel is the human-readable origin, e.g. "Jeff's folder".
	SourceLabel string

	// Weight is the priority of the originating scope group.
	Weight float64

	// Scope records whether the document came from the user's own
	// scope group or the shared one.
	Scope ScopeKind

	// Origin names the connector that produced the document.
	Origin string
}

// NewDocument builds a Document from extracted text, filling Content
// from the leading characters of text.
func NewDocument(id, filename string, format Format, text string, group ScopeGroup, origin string) Document {
	return Document{
		ID:          id,
		Filename:    filename,
		Format:      format,
		Content:     Truncate(text, ContentLimit),
		FullContent: text,
		SourceLabel: group.Label,
		Weight:      group.Weight,
		Scope:       group.Kind,
		Origin:      origin,
	}
}

// Validate checks the document is well formed at a connector boundary.
func (d Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: document id is empty", ErrInvalidInput)
	}
	if d.Filename == "" {
		return fmt.Errorf("%w: document %s has no filename", ErrInvalidInput, d.ID)
	}
	if !d.Format.IsValid() {
		return fmt.Errorf("%w: document %s has unknown format %q", ErrInvalidInput, d.ID, d.Format)
	}
	if d.Weight < 0 {
		return fmt.Errorf("%w: document %s has negative weight", ErrInvalidInput, d.ID)
	}
	return nil
}

// Text returns the full content when present, otherwise the bounded content.
func (d Document) Text() string {
	if d.FullContent != "" {
		return d.FullContent
	}
	return d.Content
}

// Truncate returns the first n characters of s without splitting a rune.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
