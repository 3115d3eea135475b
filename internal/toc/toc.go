// Package toc assigns heading anchors and collects a table of contents.
package toc

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dgallion1/mdrender/internal/token"
)

// Entry is one heading in the table of contents.
type Entry struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
	Text  string `json:"text"`
}

var lower = cases.Lower(language.Und)

// Normalize turns heading text into an anchor slug: lowercase, punctuation
// removed, runs of whitespace and hyphens collapsed to a single '-', no
// leading or trailing '-'. It may return "".
func Normalize(s string) string {
	s = lower.String(s)
	var sb strings.Builder
	pendingDash := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r), r == '-':
			pendingDash = sb.Len() > 0
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), r == '_':
			if pendingDash {
				sb.WriteByte('-')
				pendingDash = false
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Slugger hands out unique slugs within one document.
type Slugger struct {
	seen map[string]int
	used map[string]bool
}

func NewSlugger() *Slugger {
	return &Slugger{seen: make(map[string]int), used: make(map[string]bool)}
}

// Reserve marks id as taken without producing a slug for it.
func (s *Slugger) Reserve(id string) {
	s.used[id] = true
}

// Slug returns a unique slug for text. The first use of a base is returned
// as is; later uses get -1, -2, ... Empty text falls back to heading-<level>.
func (s *Slugger) Slug(text string, level int) string {
	base := Normalize(text)
	if base == "" {
		base = "heading-" + strconv.Itoa(level)
	}
	for {
		n := s.seen[base]
		s.seen[base] = n + 1
		slug := base
		if n > 0 {
			slug = base + "-" + strconv.Itoa(n)
		}
		if !s.used[slug] {
			s.used[slug] = true
			return slug
		}
	}
}

// Extract returns a copy of tokens with an id on every heading that lacks
// one, plus the headings in document order. tokens is not modified.
func Extract(tokens []token.Token) ([]token.Token, []Entry) {
	out := make([]token.Token, len(tokens))
	copy(out, tokens)

	s := NewSlugger()
	for _, tok := range tokens {
		if tok.Type != token.TypeHeadingOpen {
			continue
		}
		if id, ok := tok.Attr("id"); ok && id != "" {
			s.Reserve(id)
		}
	}

	var entries []Entry
	for i, tok := range tokens {
		if tok.Type != token.TypeHeadingOpen {
			continue
		}
		level := headingLevel(tok.Tag)
		if level < 1 || level > 6 {
			continue
		}
		var text string
		if i+1 < len(tokens) && tokens[i+1].Type == token.TypeInline {
			text = inlineText(tokens[i+1])
		}

		id, ok := tok.Attr("id")
		if !ok || id == "" {
			id = s.Slug(text, level)
			out[i] = tok.WithAttr("id", id)
		}
		entries = append(entries, Entry{ID: id, Level: level, Text: text})
	}
	return out, entries
}

func headingLevel(tag string) int {
	if len(tag) != 2 || tag[0] != 'h' {
		return 0
	}
	n, err := strconv.Atoi(tag[1:])
	if err != nil {
		return 0
	}
	return n
}

// inlineText joins the text children of an inline token. Code spans and
// other non-text children do not contribute.
func inlineText(tok token.Token) string {
	var sb strings.Builder
	for _, c := range tok.Children {
		if c.Type == token.TypeText {
			sb.WriteString(c.Content)
		}
	}
	return strings.TrimSpace(sb.String())
}
