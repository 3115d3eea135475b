package builder

import (
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/mdrender/internal/highlight"
	"github.com/dgallion1/mdrender/internal/rendertree"
)

// diagramLanguages are fence languages rendered client side instead of
// being highlighted.
var diagramLanguages = map[string]bool{
	"mermaid": true,
}

// FenceEnricher turns fenced code into a highlighted, line-numbered block.
type FenceEnricher struct {
	hl        highlight.Highlighter
	log       *slog.Logger
	supported map[string]bool
}

// NewFenceEnricher builds an enricher around hl. The supported set is
// captured once.
func NewFenceEnricher(hl highlight.Highlighter, log *slog.Logger) *FenceEnricher {
	supported := make(map[string]bool)
	for _, l := range hl.SupportedLanguages() {
		supported[strings.ToLower(l)] = true
	}
	return &FenceEnricher{hl: hl, log: log, supported: supported}
}

// Language returns the effective language for a fence info string: its
// first word, lowercased, or plaintext when unsupported or missing.
func (e *FenceEnricher) Language(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return highlight.Plaintext
	}
	lang := strings.ToLower(fields[0])
	if diagramLanguages[lang] || e.supported[lang] {
		return lang
	}
	return highlight.Plaintext
}

// Enrich builds the node for one fence. key is the fence's identity key.
func (e *FenceEnricher) Enrich(info, code, key string) *rendertree.Node {
	lang := e.Language(info)
	if diagramLanguages[lang] {
		return rendertree.El("pre", map[string]any{
			rendertree.AttrKey:   key,
			rendertree.AttrClass: lang,
		}, rendertree.Text(code))
	}

	markup, err := e.hl.Highlight(code, lang)
	if err != nil {
		e.log.Warn("highlight failed, using plain code", "lang", lang, "error", err)
		markup = html.EscapeString(code)
	}

	lines := lineCount(code)
	numbers := make([]rendertree.Child, 0, lines)
	for i := 1; i <= lines; i++ {
		n := strconv.Itoa(i)
		numbers = append(numbers, rendertree.El("span", map[string]any{
			rendertree.AttrClass: "line-number",
			"data-line":          n,
		}, rendertree.Text(n)))
	}

	wrapper := rendertree.El("pre",
		map[string]any{
			rendertree.AttrKey:   key,
			rendertree.AttrClass: "hljs",
			"data-lang":          lang,
		},
		rendertree.El("div", map[string]any{rendertree.AttrClass: "line-numbers"}, numbers...),
		rendertree.El("code", map[string]any{
			rendertree.AttrClass:     "language-" + lang,
			rendertree.AttrInnerHTML: markup,
		}),
		&rendertree.Node{
			Tag:       "button",
			Component: rendertree.ComponentCopyButton,
			Attrs:     map[string]any{"data-copy": code},
		},
	)
	wrapper.Component = rendertree.ComponentCodeWrapper
	return wrapper
}

// lineCount counts lines in code; a trailing newline does not start a line.
func lineCount(code string) int {
	return strings.Count(strings.TrimSuffix(code, "\n"), "\n") + 1
}
