// Package rtf strips Rich Text Format markup down to plain text.
package rtf

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles RTF documents.
type Extractor struct{}

// New creates a new RTF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Format returns the format this extractor handles.
func (e *Extractor) Format() domain.Format {
	return domain.FormatRichText
}

// Extract strips control words and non-text groups.
func (e *Extractor) Extract(_ context.Context, raw []byte) (string, error) {
	return Strip(string(raw)), nil
}

// Destinations whose content is never document text.
var skipDestinations = map[string]bool{
	"fonttbl":            true,
	"colortbl":           true,
	"stylesheet":         true,
	"listtable":          true,
	"listoverridetable":  true,
	"rsidtbl":            true,
	"info":               true,
	"pict":               true,
	"object":             true,
	"header":             true,
	"headerl":            true,
	"headerr":            true,
	"headerf":            true,
	"footer":             true,
	"footerl":            true,
	"footerr":            true,
	"footerf":            true,
	"generator":          true,
	"xmlnstbl":           true,
	"themedata":          true,
	"colorschememapping": true,
	"latentstyles":       true,
	"datastore":          true,
}

var specialWords = map[string]string{
	"par":       "\n",
	"line":      "\n",
	"sect":      "\n",
	"page":      "\n",
	"row":       "\n",
	"tab":       "\t",
	"cell":      "\t",
	"emdash":    "—",
	"endash":    "–",
	"bullet":    "•",
	"lquote":    "‘",
	"rquote":    "’",
	"ldblquote": "“",
	"rdblquote": "”",
}

type groupState struct {
	skip  bool
	fresh bool // no content seen since the group opened
	uc    int  // fallback characters following \u
}

type stripper struct {
	src     string
	pos     int
	out     strings.Builder
	cur     groupState
	stack   []groupState
	pending int // fallback characters still to drop
}

// Strip converts RTF source to plain text. Hex escapes are decoded as
// Windows-1252 and \u escapes as Unicode code points.
func Strip(src string) string {
	s := &stripper{src: src, cur: groupState{uc: 1}}
	s.run()

	lines := strings.Split(s.out.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (s *stripper) run() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch c {
		case '{':
			s.stack = append(s.stack, s.cur)
			s.cur.fresh = true
			s.pos++
		case '}':
			if n := len(s.stack); n > 0 {
				s.cur = s.stack[n-1]
				s.stack = s.stack[:n-1]
			}
			s.pos++
		case '\\':
			s.pos++
			s.control()
		case '\r', '\n':
			s.pos++
		default:
			s.pos++
			s.cur.fresh = false
			if s.pending > 0 {
				s.pending--
				continue
			}
			if c >= 0x80 {
				s.emitRune(charmap.Windows1252.DecodeByte(c))
				continue
			}
			s.emit(string(c))
		}
	}
}

func (s *stripper) control() {
	if s.pos >= len(s.src) {
		return
	}
	c := s.src[s.pos]
	switch {
	case c == '\\' || c == '{' || c == '}':
		s.pos++
		s.text(string(c))
	case c == '\'':
		s.pos++
		if s.pos+2 > len(s.src) {
			s.pos = len(s.src)
			return
		}
		b, err := strconv.ParseUint(s.src[s.pos:s.pos+2], 16, 8)
		s.pos += 2
		if err != nil {
			return
		}
		if s.pending > 0 {
			s.pending--
			return
		}
		s.cur.fresh = false
		s.emitRune(charmap.Windows1252.DecodeByte(byte(b)))
	case c == '*':
		s.pos++
		s.cur.skip = true
	case c == '~':
		s.pos++
		s.text(" ")
	case c == '_':
		s.pos++
		s.text("-")
	case c == '\r' || c == '\n':
		s.pos++
		s.text("\n")
	case isLetter(c):
		word, param, hasParam := s.word()
		s.handleWord(word, param, hasParam)
	default:
		s.pos++
	}
}

// word reads a control word, its optional numeric parameter and the
// single delimiting space.
func (s *stripper) word() (string, int, bool) {
	start := s.pos
	for s.pos < len(s.src) && isLetter(s.src[s.pos]) {
		s.pos++
	}
	word := s.src[start:s.pos]

	numStart := s.pos
	if s.pos < len(s.src) && s.src[s.pos] == '-' {
		s.pos++
	}
	for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
	}
	param, err := strconv.Atoi(s.src[numStart:s.pos])
	hasParam := err == nil

	if s.pos < len(s.src) && s.src[s.pos] == ' ' {
		s.pos++
	}
	return word, param, hasParam
}

func (s *stripper) handleWord(word string, param int, hasParam bool) {
	if s.cur.fresh && skipDestinations[word] {
		s.cur.skip = true
	}
	s.cur.fresh = false

	switch word {
	case "u":
		if !hasParam {
			return
		}
		if param < 0 {
			param += 65536
		}
		s.emitRune(rune(param))
		s.pending = s.cur.uc
	case "uc":
		if hasParam && param >= 0 {
			s.cur.uc = param
		}
	default:
		if text, ok := specialWords[word]; ok {
			s.emit(text)
		}
	}
}

func (s *stripper) text(t string) {
	s.cur.fresh = false
	if s.pending > 0 {
		s.pending--
		return
	}
	s.emit(t)
}

func (s *stripper) emit(t string) {
	if !s.cur.skip {
		s.out.WriteString(t)
	}
}

func (s *stripper) emitRune(r rune) {
	if !s.cur.skip {
		s.out.WriteRune(r)
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
