package services

import (
	"strings"
	"unicode/utf8"
)

// excerptMarker wraps a selected window to signal truncation.
const excerptMarker = "..."

// SelectExcerpt returns the window of text most dense in query terms.
//
// Windows of window runes start every step runes. A window scores the
// number of distinct lower-cased terms it contains; the first
// best-scoring window wins and ties go to the earlier window, so a text
// with no term hits yields its first window. The result is wrapped in
// ellipsis markers and is at most window+6 runes long. Text that already
// fits in one window is returned unchanged.
func SelectExcerpt(fullText, terms string, window, step int) string {
	if window <= 0 {
		return ""
	}
	if utf8.RuneCountInString(fullText) <= window {
		return fullText
	}
	if step <= 0 {
		step = window
	}

	runes := []rune(fullText)
	lower := []rune(strings.ToLower(fullText))
	needles := distinctTerms(terms)

	bestStart, bestScore := 0, -1
	for start := 0; start < len(runes); start += step {
		end := min(start+window, len(runes))
		score := scoreWindow(string(lower[start:end]), needles)
		if score > bestScore {
			bestStart, bestScore = start, score
		}
		if end == len(runes) {
			break
		}
	}

	end := min(bestStart+window, len(runes))
	return excerptMarker + string(runes[bestStart:end]) + excerptMarker
}

// distinctTerms splits terms on whitespace into unique lower-cased words.
func distinctTerms(terms string) []string {
	fields := strings.Fields(strings.ToLower(terms))
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func scoreWindow(lowerWindow string, needles []string) int {
	score := 0
	for _, n := range needles {
		if strings.Contains(lowerWindow, n) {
			score++
		}
	}
	return score
}
