package hast

import (
	"fmt"
	"strings"

	"github.com/dgallion1/mdrender/internal/highlight"
)

// Highlight replaces the text of every pre > code.language-X with
// highlighted markup. Unsupported languages are highlighted as plaintext.
func Highlight(root *Node, hl highlight.Highlighter) error {
	var firstErr error
	Walk(root, func(el *Node) bool {
		if el.TagName != "pre" {
			return true
		}
		for _, code := range el.Children {
			if code.Type != Element || code.TagName != "code" {
				continue
			}
			lang, ok := codeLanguage(code)
			if !ok {
				continue
			}
			if !highlight.Supports(hl, lang) {
				lang = highlight.Plaintext
			}
			markup, err := hl.Highlight(TextContent(code), lang)
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("highlight %s: %w", lang, err)
				}
				continue
			}
			frag, err := FromHTML(markup)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			code.Children = frag.Children
			if el.Properties == nil {
				el.Properties = make(map[string]any)
			}
			el.Properties["dataLang"] = lang
		}
		return false
	})
	return firstErr
}

func codeLanguage(code *Node) (string, bool) {
	for _, c := range code.ClassNames() {
		if lang, ok := strings.CutPrefix(c, "language-"); ok && lang != "" {
			return lang, true
		}
	}
	return "", false
}
