package domain

import "strings"

// ExclusionList is a set of filenames that must never be returned by a
// connector. Matching is case-insensitive on the base filename.
type ExclusionList struct {
	names map[string]struct{}
}

// NewExclusionList builds an exclusion list. Empty names are ignored.
func NewExclusionList(names ...string) ExclusionList {
	l := ExclusionList{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			l.names[n] = struct{}{}
		}
	}
	return l
}

// Excludes returns true if filename is on the list.
func (l ExclusionList) Excludes(filename string) bool {
	if len(l.names) == 0 {
		return false
	}
	_, ok := l.names[strings.ToLower(filename)]
	return ok
}

// Len returns the number of excluded names.
func (l ExclusionList) Len() int {
	return len(l.names)
}
