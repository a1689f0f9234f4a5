package services

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/logger"
)

// Strategy names recorded in NormalizedQuery.Strategy.
const (
	StrategyEntity      = "entity"
	StrategyIntent      = "intent"
	StrategyPhraseStrip = "phrase-strip"
	StrategyCapitalised = "capitalised"
	StrategyOriginal    = "original"
)

// minTermsLength is the shortest result accepted before falling back
// to capitalised-word extraction.
const minTermsLength = 3

type phraseRule struct {
	phrase  string
	pattern *regexp.Regexp
}

type synonymRule struct {
	canonical string
	phrases   []phraseRule
}

type intentRule struct {
	name     string
	triggers []phraseRule
}

// normalizeStrategy is one step of the normalisation chain. run receives
// the trimmed query and its synonym-canonicalised form and reports whether
// the step claimed the query.
//
// Primary steps run until one claims. Fallback steps run only while the
// claimed terms are shorter than minTermsLength.
type normalizeStrategy struct {
	name     string
	fallback bool
	run      func(query, working string) (string, bool)
}

// QueryNormalizer maps free-form questions to compact search terms.
// It is immutable after construction and safe for concurrent use.
type QueryNormalizer struct {
	knowledge  *domain.KnowledgeTable
	synonyms   []synonymRule
	intents    []intentRule
	leadIns    []phraseRule
	stopWords  map[string]struct{}
	strategies []normalizeStrategy
}

// NewQueryNormalizer builds a normaliser from configured rules.
// The knowledge table is optional.
func NewQueryNormalizer(rules domain.NormalizerRules, knowledge *domain.KnowledgeTable) *QueryNormalizer {
	n := &QueryNormalizer{
		knowledge: knowledge,
		stopWords: make(map[string]struct{}, len(rules.StopWords)),
		leadIns:   compilePhrases(rules.LeadIns),
	}

	for _, w := range rules.StopWords {
		n.stopWords[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}

	canonicals := sortedKeys(rules.Synonyms)
	for _, canonical := range canonicals {
		n.synonyms = append(n.synonyms, synonymRule{
			canonical: canonical,
			phrases:   compilePhrases(rules.Synonyms[canonical]),
		})
	}

	for _, name := range sortedKeys(rules.Intents) {
		n.intents = append(n.intents, intentRule{
			name:     name,
			triggers: compilePhrases(rules.Intents[name]),
		})
	}

	n.strategies = []normalizeStrategy{
		{name: StrategyEntity, run: n.entityMatch},
		{name: StrategyIntent, run: n.intentMatch},
		{name: StrategyPhraseStrip, run: n.phraseStrip},
		{name: StrategyCapitalised, fallback: true, run: n.capitalised},
	}

	return n
}

// Normalize returns the search form of query. It never fails: when every
// strategy collapses the query, capitalised words or the query itself
// are returned.
func (n *QueryNormalizer) Normalize(query string) domain.NormalizedQuery {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.NormalizedQuery{}
	}

	working := n.canonicaliseSynonyms(query)

	terms, strategy, claimed := "", "", false
	for _, s := range n.strategies {
		if s.fallback {
			if claimed && utf8.RuneCountInString(terms) >= minTermsLength {
				break
			}
		} else if claimed {
			continue
		}

		out, ok := s.run(query, working)
		if !ok {
			continue
		}
		terms, strategy, claimed = out, s.name, true

		if s.name == StrategyEntity {
			logger.Debug("Normalised %q to entity %q", query, out)
			return domain.NormalizedQuery{Terms: out, Entity: out, Strategy: StrategyEntity}
		}
	}

	if strategy != StrategyCapitalised && utf8.RuneCountInString(terms) < minTermsLength {
		terms, strategy = query, StrategyOriginal
	}

	logger.Debug("Normalised %q to %q (%s)", query, terms, strategy)
	return domain.NormalizedQuery{Terms: terms, Strategy: strategy}
}

// entityMatch looks the query up in the knowledge table, retrying with
// synonyms canonicalised.
func (n *QueryNormalizer) entityMatch(query, working string) (string, bool) {
	if entry, ok := n.knowledge.Match(query); ok {
		return entry.Name, true
	}
	if working == query {
		return "", false
	}
	entry, ok := n.knowledge.Match(working)
	if !ok {
		return "", false
	}
	return entry.Name, true
}

func (n *QueryNormalizer) canonicaliseSynonyms(query string) string {
	out := query
	for _, rule := range n.synonyms {
		replacement := "${1}" + strings.ReplaceAll(rule.canonical, "$", "$$") + "${3}"
		for _, p := range rule.phrases {
			out = replaceAllPhrase(p.pattern, out, replacement)
		}
	}
	return out
}

// intentMatch strips the first present trigger phrase. A matched trigger
// decides the result even when nothing remains, so trigger-only queries
// fall through to the capitalised fallback.
func (n *QueryNormalizer) intentMatch(_, working string) (string, bool) {
	for _, intent := range n.intents {
		for _, trigger := range intent.triggers {
			if !trigger.pattern.MatchString(working) {
				continue
			}
			rest := replaceAllPhrase(trigger.pattern, working, "${1} ${3}")
			rest = n.stripLeadIns(rest)
			rest = n.dropStopWords(rest)
			logger.Debug("Intent %q matched trigger %q", intent.name, trigger.phrase)
			return cleanTerms(rest), true
		}
	}
	return "", false
}

func (n *QueryNormalizer) phraseStrip(_, working string) (string, bool) {
	out := cleanTerms(n.stripLeadIns(working))
	return out, out != ""
}

func (n *QueryNormalizer) stripLeadIns(s string) string {
	for _, p := range n.leadIns {
		s = replaceAllPhrase(p.pattern, s, "${1} ${3}")
	}
	return s
}

func (n *QueryNormalizer) dropStopWords(s string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		word := strings.ToLower(strings.TrimFunc(f, isEdgePunct))
		if word == "" || isPossessive(word) {
			continue
		}
		if _, stop := n.stopWords[word]; stop {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func (n *QueryNormalizer) capitalised(query, _ string) (string, bool) {
	words := n.capitalisedWords(query)
	return words, words != ""
}

// capitalisedWords extracts likely proper nouns from the original query,
// skipping possessives and stop-words.
func (n *QueryNormalizer) capitalisedWords(query string) string {
	var words []string
	for _, f := range strings.Fields(query) {
		word := strings.TrimFunc(f, isEdgePunct)
		if word == "" {
			continue
		}
		first := []rune(word)[0]
		if !unicode.IsUpper(first) && !unicode.IsDigit(first) {
			continue
		}
		lower := strings.ToLower(word)
		if isPossessive(lower) {
			continue
		}
		if _, stop := n.stopWords[lower]; stop {
			continue
		}
		if unicode.IsDigit(first) && !containsUpper(word) {
			continue
		}
		words = append(words, word)
	}
	return strings.Join(words, " ")
}

// replaceAllPhrase applies a word-bounded pattern until no match remains.
// Adjacent matches share boundary characters, so a single pass can miss them.
func replaceAllPhrase(p *regexp.Regexp, s, repl string) string {
	for i := 0; i < 8 && p.MatchString(s); i++ {
		s = p.ReplaceAllString(s, repl)
	}
	return s
}

func compilePhrases(phrases []string) []phraseRule {
	rules := make([]phraseRule, 0, len(phrases))
	for _, phrase := range phrases {
		phrase = strings.TrimSpace(phrase)
		if p := domain.PhrasePattern(phrase); p != nil {
			rules = append(rules, phraseRule{phrase: phrase, pattern: p})
		}
	}
	// Longest first so "summary of" is stripped before "summary".
	sort.SliceStable(rules, func(i, j int) bool {
		if len(rules[i].phrase) != len(rules[j].phrase) {
			return len(rules[i].phrase) > len(rules[j].phrase)
		}
		return rules[i].phrase < rules[j].phrase
	})
	return rules
}

func cleanTerms(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) && r != '%' || unicode.IsSpace(r)
	})
	return strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}

func isEdgePunct(r rune) bool {
	return unicode.IsPunct(r) && r != '%' && r != '\''
}

func isPossessive(word string) bool {
	return len(word) > 2 && (strings.HasSuffix(word, "'s") || strings.HasSuffix(word, "’s"))
}

func containsUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
