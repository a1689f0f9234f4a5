package domain

import (
	"regexp"
	"strings"
)

// KnowledgeEntry is a static definition of a product or vendor.
type KnowledgeEntry struct {
	// Name is the canonical name.
	Name string

	// Category groups entries, e.g. "vendor" or "product".
	Category string

	// Description is the definitional answer returned when no
	// documents mention the entity.
	Description string

	// Aliases are alternative names that resolve to Name.
	Aliases []string
}

// KnowledgeTable is an ordered, read-only list of entries.
// Lookups scan entries in order, so the first match wins.
type KnowledgeTable struct {
	entries  []KnowledgeEntry
	patterns [][]*regexp.Regexp
}

// NewKnowledgeTable builds a table; entries keep their given order.
func NewKnowledgeTable(entries []KnowledgeEntry) *KnowledgeTable {
	t := &KnowledgeTable{
		entries:  make([]KnowledgeEntry, 0, len(entries)),
		patterns: make([][]*regexp.Regexp, 0, len(entries)),
	}
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		var pats []*regexp.Regexp
		for _, name := range append([]string{e.Name}, e.Aliases...) {
			if p := PhrasePattern(name); p != nil {
				pats = append(pats, p)
			}
		}
		t.entries = append(t.entries, e)
		t.patterns = append(t.patterns, pats)
	}
	return t
}

// Entries returns a copy of the table's entries in order.
func (t *KnowledgeTable) Entries() []KnowledgeEntry {
	if t == nil {
		return nil
	}
	out := make([]KnowledgeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *KnowledgeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Match returns the first entry whose name or alias occurs in text
// as a whole phrase, case-insensitively.
func (t *KnowledgeTable) Match(text string) (KnowledgeEntry, bool) {
	if t == nil || text == "" {
		return KnowledgeEntry{}, false
	}
	for i, pats := range t.patterns {
		for _, p := range pats {
			if p.MatchString(text) {
				return t.entries[i], true
			}
		}
	}
	return KnowledgeEntry{}, false
}

// PhrasePattern compiles a case-insensitive, word-bounded pattern for a
// phrase. Internal whitespace matches any run of whitespace.
// Returns nil for an empty phrase.
func PhrasePattern(phrase string) *regexp.Regexp {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return nil
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}])(` + strings.Join(quoted, `\s+`) + `)($|[^\p{L}\p{N}])`)
}
