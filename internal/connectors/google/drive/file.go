package drive

import (
	"strings"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// MimeTypeFolder is the MIME type Drive reports for folders.
const MimeTypeFolder = "application/vnd.google-apps.folder"

// fileFields are the file attributes requested from the API.
const fileFields = "nextPageToken, files(id, name, mimeType)"

// toEntry converts a Drive file to a RemoteEntry.
func toEntry(f *drive.File) driven.RemoteEntry {
	return driven.RemoteEntry{
		ID:       f.Id,
		Name:     f.Name,
		MIMEType: f.MimeType,
		IsFolder: f.MimeType == MimeTypeFolder,
	}
}

// quote escapes s for use as a string literal in a Drive query.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// childFoldersQuery lists the non-trashed folders directly inside parentID.
func childFoldersQuery(parentID string) string {
	return quote(parentID) + " in parents and mimeType = " + quote(MimeTypeFolder) + " and trashed = false"
}

// searchQuery restricts a name or full-text match to the given parents.
func searchQuery(parentIDs []string, terms string) string {
	parents := make([]string, 0, len(parentIDs))
	for _, id := range parentIDs {
		parents = append(parents, quote(id)+" in parents")
	}

	var b strings.Builder
	if len(parents) > 0 {
		b.WriteString("(" + strings.Join(parents, " or ") + ") and ")
	}
	if terms = strings.TrimSpace(terms); terms != "" {
		b.WriteString("(name contains " + quote(terms) + " or fullText contains " + quote(terms) + ") and ")
	}
	b.WriteString("mimeType != " + quote(MimeTypeFolder) + " and trashed = false")
	return b.String()
}
