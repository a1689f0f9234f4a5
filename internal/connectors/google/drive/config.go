package drive

import (
	"time"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// Defaults for Config.
const (
	DefaultPageSize        = 10
	DefaultTimeout         = 20 * time.Second
	DefaultMaxDownloadSize = 20 * 1024 * 1024
	folderListPageSize     = 100
)

// Config holds Google Drive store configuration.
type Config struct {
	// PageSize is the entries requested per search call when the query sets no limit.
	PageSize int64
	// Timeout bounds a single API call.
	Timeout time.Duration
	// MaxDownloadSize caps the bytes read from a download or export.
	MaxDownloadSize int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PageSize:        DefaultPageSize,
		Timeout:         DefaultTimeout,
		MaxDownloadSize: DefaultMaxDownloadSize,
	}
}

// ConfigFromSettings builds a Config from application settings.
// Zero values keep the defaults.
func ConfigFromSettings(drive domain.DriveSettings, retrieval domain.RetrievalSettings) Config {
	cfg := DefaultConfig()
	if drive.PageSize > 0 {
		cfg.PageSize = int64(drive.PageSize)
	}
	if retrieval.RemoteTimeout > 0 {
		cfg.Timeout = retrieval.RemoteTimeout
	}
	return cfg
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxDownloadSize <= 0 {
		c.MaxDownloadSize = d.MaxDownloadSize
	}
	return c
}
