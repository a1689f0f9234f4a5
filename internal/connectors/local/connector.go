// Package local searches a single directory of documents on disk.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docask/internal/connectors"
	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/logger"
)

// Name identifies documents produced by this connector.
const Name = "local"

// DefaultMaxResults caps the documents returned per search.
const DefaultMaxResults = 3

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Config holds local connector configuration.
type Config struct {
	// Dir is the directory searched. Subdirectories are not descended.
	Dir string

	// Exclude lists filenames never returned, matched case-insensitively.
	Exclude []string

	// MaxResults caps the documents returned per search.
	MaxResults int
}

// Connector reads documents from a local directory.
type Connector struct {
	dir        string
	exclude    domain.ExclusionList
	maxResults int
	extractor  driven.TextExtractor
	pool       *connectors.Pool
}

// New creates a local connector. pool may be nil to extract inline.
func New(cfg Config, extractor driven.TextExtractor, pool *connectors.Pool) *Connector {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	return &Connector{
		dir:        cfg.Dir,
		exclude:    domain.NewExclusionList(cfg.Exclude...),
		maxResults: cfg.MaxResults,
		extractor:  extractor,
		pool:       pool,
	}
}

// Name returns the connector name.
func (c *Connector) Name() string {
	return Name
}

// Dir returns the searched directory.
func (c *Connector) Dir() string {
	return c.dir
}

// Search returns up to MaxResults files in name order whose text contains
// terms, case-insensitively. Unreadable files are logged and skipped.
func (c *Connector) Search(ctx context.Context, group domain.ScopeGroup, terms string) ([]domain.Document, error) {
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: local: read %s: %v", domain.ErrConnector, c.dir, err)
	}

	candidates := c.candidates(entries)
	logger.Debug("Local: %d candidate files in %s", len(candidates), c.dir)

	needle := strings.ToLower(terms)
	var docs []domain.Document

	// One pool-width at a time; reading stops once enough files match.
	batch := max(c.pool.Size(), 1)
	for start := 0; start < len(candidates) && len(docs) < c.maxResults; start += batch {
		if err := ctx.Err(); err != nil {
			return docs, err
		}
		chunk := candidates[start:min(start+batch, len(candidates))]
		results := make([]*domain.Document, len(chunk))

		c.pool.Run(len(chunk), func(i int) {
			results[i] = c.match(ctx, chunk[i], needle, group)
		})

		for _, doc := range results {
			if doc != nil && len(docs) < c.maxResults {
				docs = append(docs, *doc)
			}
		}
	}

	return docs, nil
}

type candidate struct {
	path   string
	name   string
	format domain.Format
}

// candidates filters directory entries. os.ReadDir returns them sorted
// by filename, which fixes discovery order.
func (c *Connector) candidates(entries []os.DirEntry) []candidate {
	var out []candidate
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			continue
		case strings.HasPrefix(name, "."):
			continue
		case c.exclude.Excludes(name):
			logger.Debug("Local: skipping excluded file %s", name)
			continue
		}

		format := domain.FormatFromFilename(name)
		if !format.IsSupported() {
			continue
		}
		out = append(out, candidate{
			path:   filepath.Join(c.dir, name),
			name:   name,
			format: format,
		})
	}
	return out
}

func (c *Connector) match(ctx context.Context, cand candidate, needle string, group domain.ScopeGroup) *domain.Document {
	raw, err := os.ReadFile(cand.path)
	if err != nil {
		logger.Warn("Local: reading %s: %v", cand.name, err)
		return nil
	}

	text := c.extractor.Extract(ctx, raw, cand.format)
	if !strings.Contains(strings.ToLower(text), needle) {
		return nil
	}

	doc := domain.NewDocument(cand.path, cand.name, cand.format, text, group, Name)
	if err := doc.Validate(); err != nil {
		logger.Warn("Local: %v", err)
		return nil
	}
	return &doc
}

// AgentPrompt returns the extracted text of filename in the directory.
// It reports false when the file is absent or yields no text.
func (c *Connector) AgentPrompt(ctx context.Context, filename string) (string, bool) {
	if c.dir == "" || filename == "" {
		return "", false
	}
	raw, err := os.ReadFile(filepath.Join(c.dir, filepath.Base(filename)))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Local: reading agent prompt %s: %v", filename, err)
		}
		return "", false
	}

	format := domain.FormatFromFilename(filename)
	if !format.IsSupported() {
		return "", false
	}
	text := strings.TrimSpace(c.extractor.Extract(ctx, raw, format))
	return text, text != ""
}
