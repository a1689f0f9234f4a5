package driven

import "context"

// RemoteEntry is one file or folder in a remote document store.
type RemoteEntry struct {
	// ID is the store's opaque file id.
	ID string

	// Name is the display filename.
	Name string

	// MIMEType is the entry's content type.
	MIMEType string

	// IsFolder is true for containers.
	IsFolder bool
}

// RemoteQuery describes one search call against a remote store.
type RemoteQuery struct {
	// ParentIDs restricts results to entries directly inside these containers.
	ParentIDs []string

	// Terms must occur in the entry's name or full text.
	Terms string

	// Limit caps the number of entries returned. Zero means store default.
	Limit int
}

// RemoteStore is a hierarchical document store such as Google Drive.
// Every method is a network call and honours ctx cancellation.
type RemoteStore interface {
	// ListChildren returns the folders directly inside parentID.
	ListChildren(ctx context.Context, parentID string) ([]RemoteEntry, error)

	// Search returns non-folder entries matching q, in store order.
	Search(ctx context.Context, q RemoteQuery) ([]RemoteEntry, error)

	// Download returns the raw bytes of a file.
	Download(ctx context.Context, id string) ([]byte, error)

	// ExportText returns a native document converted to plain text.
	ExportText(ctx context.Context, id, mimeType string) ([]byte, error)

	// Ping validates the store is reachable and authorised.
	Ping(ctx context.Context) error
}
