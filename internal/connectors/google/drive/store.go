// Package drive implements the remote document store on Google Drive.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docask/internal/connectors/google"
	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/logger"
)

// ErrTooLarge is returned when a download exceeds Config.MaxDownloadSize.
var ErrTooLarge = errors.New("drive: file too large")

// Ensure Store implements the interface.
var _ driven.RemoteStore = (*Store)(nil)

// Store is a RemoteStore backed by the Drive v3 API.
// Every call waits on the rate limiter and runs under Config.Timeout.
type Store struct {
	svc     *drive.Service
	limiter *google.RateLimiter
	cfg     Config
}

// NewStore wraps an authorised Drive service. A nil limiter uses the
// Drive defaults.
func NewStore(svc *drive.Service, limiter *google.RateLimiter, cfg Config) *Store {
	if limiter == nil {
		limiter = google.NewRateLimiter()
	}
	return &Store{svc: svc, limiter: limiter, cfg: cfg.withDefaults()}
}

// Connect builds a Store from stored credentials. It returns
// domain.ErrAuthRequired when the credentials are incomplete.
func Connect(ctx context.Context, settings domain.DriveSettings, cfg Config, opts ...option.ClientOption) (*Store, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: drive client id, secret and refresh token must be set", domain.ErrAuthRequired)
	}

	ts := google.NewRefreshTokenSource(ctx, settings.ClientID, settings.ClientSecret, settings.RefreshToken)
	svc, err := google.NewDriveService(ctx, ts, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	limiter := google.NewRateLimiterWithConfig(google.RateLimitConfig{
		RequestsPerSecond: settings.RequestsPerSecond,
	})
	return NewStore(svc, limiter, cfg), nil
}

// ListChildren returns the folders directly inside parentID.
func (s *Store) ListChildren(ctx context.Context, parentID string) ([]driven.RemoteEntry, error) {
	var out []driven.RemoteEntry
	pageToken := ""

	for {
		var list *drive.FileList
		err := s.call(ctx, func(ctx context.Context) error {
			req := s.svc.Files.List().
				Q(childFoldersQuery(parentID)).
				PageSize(folderListPageSize).
				Fields(fileFields).
				SupportsAllDrives(true).
				IncludeItemsFromAllDrives(true).
				Context(ctx)
			if pageToken != "" {
				req = req.PageToken(pageToken)
			}
			var err error
			list, err = req.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", parentID, err)
		}

		for _, f := range list.Files {
			out = append(out, toEntry(f))
		}

		if list.NextPageToken == "" {
			return out, nil
		}
		pageToken = list.NextPageToken
	}
}

// Search returns the first page of files matching q.
func (s *Store) Search(ctx context.Context, q driven.RemoteQuery) ([]driven.RemoteEntry, error) {
	limit := s.cfg.PageSize
	if q.Limit > 0 {
		limit = int64(q.Limit)
	}

	var list *drive.FileList
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		list, err = s.svc.Files.List().
			Q(searchQuery(q.ParentIDs, q.Terms)).
			PageSize(limit).
			Fields(fileFields).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]driven.RemoteEntry, 0, len(list.Files))
	for _, f := range list.Files {
		if e := toEntry(f); !e.IsFolder {
			out = append(out, e)
		}
	}
	logger.Debug("Drive: query %q over %d parent(s) returned %d file(s)", q.Terms, len(q.ParentIDs), len(out))
	return out, nil
}

// Download returns the raw bytes of a file.
func (s *Store) Download(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.call(ctx, func(ctx context.Context) error {
		resp, err := s.svc.Files.Get(id).SupportsAllDrives(true).Context(ctx).Download()
		if err != nil {
			return err
		}
		data, err = s.readBody(resp)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", id, err)
	}
	return data, nil
}

// ExportText converts a native document to mimeType and returns the bytes.
func (s *Store) ExportText(ctx context.Context, id, mimeType string) ([]byte, error) {
	var data []byte
	err := s.call(ctx, func(ctx context.Context) error {
		resp, err := s.svc.Files.Export(id, mimeType).Context(ctx).Download()
		if err != nil {
			return err
		}
		data, err = s.readBody(resp)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("export %s as %s: %w", id, mimeType, err)
	}
	return data, nil
}

// Ping checks the credentials by fetching the authorised user.
func (s *Store) Ping(ctx context.Context) error {
	return s.call(ctx, func(ctx context.Context) error {
		_, err := s.svc.About.Get().Fields("user").Context(ctx).Do()
		return err
	})
}

func (s *Store) readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxDownloadSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, s.cfg.MaxDownloadSize)
	}
	return data, nil
}

// call runs fn under the rate limiter and per-call timeout and maps the
// result onto domain errors. A 429 pauses the limiter for Retry-After.
func (s *Store) call(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	err := fn(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTooLarge):
		return err
	case google.IsRateLimited(err):
		s.limiter.RecordRateLimitError(google.RetryAfter(err))
		logger.Warn("Drive: rate limited, backing off")
	}
	return google.WrapError(err)
}
