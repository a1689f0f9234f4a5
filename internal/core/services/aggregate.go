package services

import (
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// Aggregate ranks documents from every connector and scope group.
//
// Documents are stably sorted by weight descending; at equal weight owned
// documents precede shared ones and discovery order is kept. When entity
// is set, documents whose filename contains it move to the front, still
// in ranked order. Repeated documents (same origin and id) keep their
// best-ranked copy. The input slice is not modified.
func Aggregate(docs []domain.Document, entity string) []domain.Document {
	ranked := make([]domain.Document, len(docs))
	copy(ranked, docs)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Scope == domain.ScopeOwned && ranked[j].Scope != domain.ScopeOwned
	})

	if key := foldKey(entity); key != "" {
		sort.SliceStable(ranked, func(i, j int) bool {
			return strings.Contains(foldKey(ranked[i].Filename), key) &&
				!strings.Contains(foldKey(ranked[j].Filename), key)
		})
	}

	return dedupe(ranked)
}

func dedupe(docs []domain.Document) []domain.Document {
	seen := make(map[string]struct{}, len(docs))
	out := docs[:0]
	for _, d := range docs {
		key := d.Origin + "\x00" + d.ID
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}

// foldKey lower-cases s and drops separators so "FordDirect" matches
// "Ford_Direct_Q2.pdf".
func foldKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
