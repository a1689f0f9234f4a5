// Package remote searches a hierarchical remote document store, one scope
// group at a time.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docask/internal/connectors"
	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/logger"
)

// Name identifies documents produced by this connector.
const Name = "drive"

// Defaults for Config.
const (
	DefaultBatchSize  = 10
	DefaultMaxResults = 3
	DefaultPageSize   = 10
)

// Export formats for native documents.
const (
	ExportMimeText = "text/plain"
	ExportMimeCSV  = "text/csv"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Config holds remote connector configuration.
type Config struct {
	// BatchSize caps the location ids sent in one search call.
	BatchSize int

	// MaxResults caps the documents accepted per group.
	MaxResults int

	// PageSize is the number of entries requested per search call.
	PageSize int
}

// Connector searches a RemoteStore and extracts the matching files.
type Connector struct {
	store     driven.RemoteStore
	extractor driven.TextExtractor
	pool      *connectors.Pool
	cfg       Config
}

// New creates a remote connector. pool may be nil to fetch inline.
func New(store driven.RemoteStore, extractor driven.TextExtractor, pool *connectors.Pool, cfg Config) *Connector {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Connector{
		store:     store,
		extractor: extractor,
		pool:      pool,
		cfg:       cfg,
	}
}

// Name returns the connector name.
func (c *Connector) Name() string {
	return Name
}

// Search queries the group's locations in batches. Each batch fetches at
// most MaxResults matching files and accepts those whose extracted text
// still contains terms. Batching stops once MaxResults documents are
// accepted. A failed batch is logged; the search fails only when every
// batch failed.
func (c *Connector) Search(ctx context.Context, group domain.ScopeGroup, terms string) ([]domain.Document, error) {
	terms = strings.TrimSpace(terms)
	if terms == "" || len(group.LocationIDs) == 0 {
		return nil, nil
	}

	needle := strings.ToLower(terms)
	var (
		docs     []domain.Document
		failures int
		batches  int
		lastErr  error
	)

	for _, batch := range chunk(group.LocationIDs, c.cfg.BatchSize) {
		if len(docs) >= c.cfg.MaxResults {
			break
		}
		if err := ctx.Err(); err != nil {
			return docs, err
		}
		batches++

		entries, err := c.store.Search(ctx, driven.RemoteQuery{
			ParentIDs: batch,
			Terms:     terms,
			Limit:     c.cfg.PageSize,
		})
		if err != nil {
			failures++
			lastErr = err
			logger.Warn("Remote: search in %s (%d locations) failed: %v", group.Label, len(batch), err)
			continue
		}

		files := firstFiles(entries, c.cfg.MaxResults)
		results := make([]*domain.Document, len(files))
		c.pool.Run(len(files), func(i int) {
			results[i] = c.fetch(ctx, files[i], needle, group)
		})

		for _, doc := range results {
			if doc != nil && len(docs) < c.cfg.MaxResults {
				docs = append(docs, *doc)
			}
		}
	}

	if batches > 0 && failures == batches {
		return nil, fmt.Errorf("%w: remote search in %s: %w", domain.ErrConnector, group.Label, lastErr)
	}
	return docs, nil
}

// fetch downloads or exports one entry and re-validates it against terms.
func (c *Connector) fetch(ctx context.Context, entry driven.RemoteEntry, needle string, group domain.ScopeGroup) *domain.Document {
	format := formatOf(entry)
	if !format.IsSupported() {
		logger.Debug("Remote: skipping %s (%s)", entry.Name, entry.MIMEType)
		return nil
	}

	var (
		raw []byte
		err error
	)
	if domain.IsNativeMIME(entry.MIMEType) {
		raw, err = c.store.ExportText(ctx, entry.ID, exportMime(entry.MIMEType))
	} else {
		raw, err = c.store.Download(ctx, entry.ID)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		logger.Warn("Remote: fetching %s: %v", entry.Name, err)
		return nil
	}

	text := c.extractor.Extract(ctx, raw, format)
	if !strings.Contains(strings.ToLower(text), needle) {
		logger.Debug("Remote: %s matched by name only, dropped", entry.Name)
		return nil
	}

	doc := domain.NewDocument(entry.ID, entry.Name, format, text, group, Name)
	if err := doc.Validate(); err != nil {
		logger.Warn("Remote: %v", err)
		return nil
	}
	return &doc
}

// formatOf prefers the declared MIME type and falls back to the extension.
func formatOf(entry driven.RemoteEntry) domain.Format {
	if f := domain.FormatFromMIME(entry.MIMEType); f.IsSupported() {
		return f
	}
	return domain.FormatFromFilename(entry.Name)
}

func exportMime(mimeType string) string {
	if mimeType == domain.MIMEGoogleSheet {
		return ExportMimeCSV
	}
	return ExportMimeText
}

func firstFiles(entries []driven.RemoteEntry, n int) []driven.RemoteEntry {
	out := make([]driven.RemoteEntry, 0, n)
	for _, e := range entries {
		if len(out) == n {
			break
		}
		if e.IsFolder {
			continue
		}
		out = append(out, e)
	}
	return out
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += size {
		out = append(out, ids[start:min(start+size, len(ids))])
	}
	return out
}
