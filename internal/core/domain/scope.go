package domain

// ScopeKind distinguishes a user's own storage from shared storage.
type ScopeKind int

const (
	// ScopeShared is storage every user may search.
	ScopeShared ScopeKind = iota

	// ScopeOwned is storage that belongs to the requesting user.
	ScopeOwned
)

// String returns the string representation.
func (k ScopeKind) String() string {
	if k == ScopeOwned {
		return "owned"
	}
	return "shared"
}

// ScopeGroup is a set of storage locations sharing one weight.
type ScopeGroup struct {
	// Kind is owned or shared.
	Kind ScopeKind

	// LocationIDs are the containers to search: the root first,
	// followed by every descendant container.
	LocationIDs []string

	// Weight is the ranking priority of documents found here.
	Weight float64

	// Label is attached to every document found in this group.
	Label string
}

// Root returns the group's root container id, or "" if empty.
func (g ScopeGroup) Root() string {
	if len(g.LocationIDs) == 0 {
		return ""
	}
	return g.LocationIDs[0]
}
