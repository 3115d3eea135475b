// Package highlight turns source code into syntax-highlighted HTML markup.
package highlight

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Plaintext is the language used for blocks without a supported language.
const Plaintext = "plaintext"

// DefaultStyle is the chroma style used for generated CSS.
const DefaultStyle = "monokai"

// Highlighter produces highlighted markup for a code block.
type Highlighter interface {
	Highlight(code, language string) (string, error)
	SupportedLanguages() []string
}

// DefaultLanguages is the set of languages loaded by default.
var DefaultLanguages = []string{
	"bat", "c", "cmake", "cpp", "css", "dart", "docker", "fish", "go",
	"groovy", "html", "http", "java", "javascript", "js", "json", "json5",
	"jsx", "kotlin", "latex", "less", "lua", "markdown", "md", "nginx",
	"postcss", "powershell", "prisma", "proto", "protobuf", "py", "python",
	"rust", "rs", "sass", "scss", "shell", "sql", "stylus", "systemd",
	"toml", "ts", "tsx", "typescript", "vue", "wasm", "xml", "yaml", "yml",
	"zig", "bash", "sh", "diff", "dockerfile",
}

// Chroma is a Highlighter backed by chroma lexers. Only languages given to
// NewChroma that chroma knows about are reported as supported.
type Chroma struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
	lexers    map[string]chroma.Lexer
}

// NewChroma loads lexers for languages and the named style. Unknown style
// names fall back to chroma's default style.
func NewChroma(style string, languages []string) *Chroma {
	c := &Chroma{
		style: styles.Get(style),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
		lexers: make(map[string]chroma.Lexer, len(languages)+1),
	}
	for _, lang := range languages {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if l := lexers.Get(lang); l != nil {
			c.lexers[lang] = chroma.Coalesce(l)
		}
	}
	c.lexers[Plaintext] = lexers.Fallback
	return c
}

// SupportedLanguages returns the loaded language names, sorted.
func (c *Chroma) SupportedLanguages() []string {
	out := make([]string, 0, len(c.lexers))
	for name := range c.lexers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Highlight renders code as class-annotated HTML spans. A language that was
// not loaded is highlighted as plaintext.
func (c *Chroma) Highlight(code, language string) (string, error) {
	lexer, ok := c.lexers[strings.ToLower(language)]
	if !ok {
		lexer = lexers.Fallback
	}
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", language, err)
	}
	var sb strings.Builder
	if err := c.formatter.Format(&sb, c.style, it); err != nil {
		return "", fmt.Errorf("format %s: %w", language, err)
	}
	return sb.String(), nil
}

// WriteCSS writes the stylesheet matching the highlighter's classes.
func (c *Chroma) WriteCSS(w io.Writer) error {
	return c.formatter.WriteCSS(w, c.style)
}

// Supports reports whether language is in h's supported set.
func Supports(h Highlighter, language string) bool {
	language = strings.ToLower(language)
	for _, l := range h.SupportedLanguages() {
		if l == language {
			return true
		}
	}
	return false
}
