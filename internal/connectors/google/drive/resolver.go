package drive

import (
	"strings"

	"github.com/custodia-labs/docask/internal/connectors/remote"
	"github.com/custodia-labs/docask/internal/core/domain"
)

// ResolveWebURL returns the browser link for a Drive file id.
func ResolveWebURL(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	return "https://drive.google.com/file/d/" + id + "/view"
}

// DocumentLink returns where a user can open doc: the Drive web link for
// documents found by the remote connector, otherwise the document id,
// which for local documents is the file path.
func DocumentLink(doc domain.Document) string {
	if doc.Origin == remote.Name {
		return ResolveWebURL(doc.ID)
	}
	return doc.ID
}
