package token

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Tokenizer parses Markdown with goldmark and flattens the resulting AST
// into a token stream. It is safe for concurrent use.
type Tokenizer struct {
	md        goldmark.Markdown
	allowHTML bool
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithHTML makes raw HTML blocks and spans come through as html_block /
// html_inline tokens. Without it raw HTML is emitted as literal text.
func WithHTML(allow bool) Option {
	return func(t *Tokenizer) { t.allowHTML = allow }
}

// NewTokenizer returns a tokenizer with tables, task lists, linkify,
// {#id} heading attributes and the mark/sup/sub/strikethrough syntax enabled.
func NewTokenizer(opts ...Option) *Tokenizer {
	t := &Tokenizer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.TaskList,
				extension.Linkify,
				InlineSyntax,
			),
			goldmark.WithParserOptions(
				parser.WithAttribute(),
			),
		),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Parse tokenizes src. It is deterministic and has no side effects.
func (t *Tokenizer) Parse(src string) []Token {
	source := []byte(src)
	doc := t.md.Parser().Parse(text.NewReader(source))
	w := &walker{source: source, allowHTML: t.allowHTML}
	w.children(doc)
	return w.out
}

type walker struct {
	source    []byte
	allowHTML bool
	out       []Token
}

func (w *walker) emit(tok Token) { w.out = append(w.out, tok) }

func (w *walker) children(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.block(c)
	}
}

func (w *walker) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.Paragraph:
		w.emit(openToken("paragraph", "p"))
		w.emit(w.inline(node))
		w.emit(closeToken("paragraph", "p"))

	case *ast.TextBlock:
		// Tight list items carry their text without a paragraph wrapper.
		w.emit(w.inline(node))

	case *ast.Heading:
		tag := "h" + strconv.Itoa(node.Level)
		w.emit(openToken("heading", tag, w.attributes(node)...))
		w.emit(w.inline(node))
		w.emit(closeToken("heading", tag))

	case *ast.Blockquote:
		w.emit(openToken("blockquote", "blockquote"))
		w.children(node)
		w.emit(closeToken("blockquote", "blockquote"))

	case *ast.List:
		kind, tag := "bullet_list", "ul"
		var attrs []Attr
		if node.IsOrdered() {
			kind, tag = "ordered_list", "ol"
			if node.Start != 1 {
				attrs = append(attrs, Attr{Name: "start", Value: strconv.Itoa(node.Start)})
			}
		}
		w.emit(openToken(kind, tag, attrs...))
		w.children(node)
		w.emit(closeToken(kind, tag))

	case *ast.ListItem:
		w.emit(openToken("list_item", "li"))
		w.children(node)
		w.emit(closeToken("list_item", "li"))

	case *ast.ThematicBreak:
		w.emit(Token{Type: TypeHr, Tag: "hr"})

	case *ast.FencedCodeBlock:
		var info string
		if node.Info != nil {
			info = string(node.Info.Segment.Value(w.source))
		}
		w.emit(Token{Type: TypeFence, Tag: "code", Info: info, Content: w.lines(node)})

	case *ast.CodeBlock:
		w.emit(Token{Type: TypeCodeBlock, Tag: "code", Content: w.lines(node)})

	case *ast.HTMLBlock:
		raw := w.lines(node)
		if node.HasClosure() {
			raw += string(node.ClosureLine.Value(w.source))
		}
		if w.allowHTML {
			w.emit(Token{Type: TypeHTMLBlock, Content: raw})
			return
		}
		w.emit(openToken("paragraph", "p"))
		w.emit(Token{Type: TypeInline, Content: raw, Children: []Token{textToken(strings.TrimRight(raw, "\n"))}})
		w.emit(closeToken("paragraph", "p"))

	case *east.Table:
		w.table(node)

	default:
		// Unknown block kinds still reach the builder, which decides what
		// to do with them.
		w.emit(Token{Type: kindName(n), Content: w.lines(n)})
	}
}

func (w *walker) table(table *east.Table) {
	w.emit(openToken("table", "table"))
	bodyOpen := false
	for c := table.FirstChild(); c != nil; c = c.NextSibling() {
		switch row := c.(type) {
		case *east.TableHeader:
			w.emit(openToken("thead", "thead"))
			w.emit(openToken("tr", "tr"))
			w.cells(row, "th")
			w.emit(closeToken("tr", "tr"))
			w.emit(closeToken("thead", "thead"))
		case *east.TableRow:
			if !bodyOpen {
				w.emit(openToken("tbody", "tbody"))
				bodyOpen = true
			}
			w.emit(openToken("tr", "tr"))
			w.cells(row, "td")
			w.emit(closeToken("tr", "tr"))
		}
	}
	if bodyOpen {
		w.emit(closeToken("tbody", "tbody"))
	}
	w.emit(closeToken("table", "table"))
}

func (w *walker) cells(row ast.Node, tag string) {
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		cell, ok := c.(*east.TableCell)
		if !ok {
			continue
		}
		var attrs []Attr
		if cell.Alignment != east.AlignNone {
			attrs = append(attrs, Attr{Name: "style", Value: "text-align:" + cell.Alignment.String()})
		}
		w.emit(openToken(tag, tag, attrs...))
		w.emit(w.inline(cell))
		w.emit(closeToken(tag, tag))
	}
}

// inline builds the single inline token holding n's inline children.
func (w *walker) inline(n ast.Node) Token {
	var children []Token
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		children = w.inlineNode(c, children)
	}
	return Token{Type: TypeInline, Content: w.lines(n), Children: children}
}

func (w *walker) inlineChildren(n ast.Node, out []Token) []Token {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = w.inlineNode(c, out)
	}
	return out
}

func (w *walker) inlineNode(n ast.Node, out []Token) []Token {
	switch node := n.(type) {
	case *ast.Text:
		if v := w.textValue(node); len(v) > 0 {
			out = append(out, textToken(v))
		}
		switch {
		case node.HardLineBreak():
			out = append(out, Token{Type: TypeHardBreak, Tag: "br"})
		case node.SoftLineBreak():
			out = append(out, Token{Type: TypeSoftBreak})
		}

	case *ast.String:
		out = append(out, textToken(string(node.Value)))

	case *ast.CodeSpan:
		out = append(out, Token{Type: TypeCodeInline, Tag: "code", Content: w.plainText(node)})

	case *ast.Emphasis:
		kind, tag := "em", "em"
		if node.Level >= 2 {
			kind, tag = "strong", "strong"
		}
		out = append(out, openToken(kind, tag))
		out = w.inlineChildren(node, out)
		out = append(out, closeToken(kind, tag))

	case *ast.Link:
		attrs := []Attr{{Name: "href", Value: string(node.Destination)}}
		if len(node.Title) > 0 {
			attrs = append(attrs, Attr{Name: "title", Value: string(node.Title)})
		}
		out = append(out, openToken("link", "a", attrs...))
		out = w.inlineChildren(node, out)
		out = append(out, closeToken("link", "a"))

	case *ast.AutoLink:
		href := string(node.URL(w.source))
		if node.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(href), "mailto:") {
			href = "mailto:" + href
		}
		out = append(out, openToken("link", "a", Attr{Name: "href", Value: href}))
		out = append(out, textToken(string(node.Label(w.source))))
		out = append(out, closeToken("link", "a"))

	case *ast.Image:
		alt := w.plainText(node)
		attrs := []Attr{
			{Name: "src", Value: string(node.Destination)},
			{Name: "alt", Value: alt},
		}
		if len(node.Title) > 0 {
			attrs = append(attrs, Attr{Name: "title", Value: string(node.Title)})
		}
		out = append(out, Token{Type: TypeImage, Tag: "img", Content: alt, Attrs: attrs})

	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			buf.Write(seg.Value(w.source))
		}
		if w.allowHTML {
			out = append(out, Token{Type: TypeHTMLInline, Content: buf.String()})
		} else {
			out = append(out, textToken(buf.String()))
		}

	case *east.TaskCheckBox:
		attrs := []Attr{{Name: "type", Value: "checkbox"}, {Name: "disabled", Value: ""}}
		if node.IsChecked {
			attrs = append(attrs, Attr{Name: "checked", Value: ""})
		}
		out = append(out, Token{Type: TypeCheckbox, Tag: "input", Attrs: attrs})

	case *east.Strikethrough:
		out = append(out, openToken("s", "s"))
		out = w.inlineChildren(node, out)
		out = append(out, closeToken("s", "s"))

	case *Mark:
		out = append(out, openToken("mark", "mark"))
		out = w.inlineChildren(node, out)
		out = append(out, closeToken("mark", "mark"))

	case *Superscript:
		out = append(out, openToken("sup", "sup"))
		out = w.inlineChildren(node, out)
		out = append(out, closeToken("sup", "sup"))

	case *Subscript:
		out = append(out, openToken("sub", "sub"))
		out = w.inlineChildren(node, out)
		out = append(out, closeToken("sub", "sub"))

	default:
		out = append(out, Token{Type: kindName(n), Content: w.plainText(n)})
	}
	return out
}

// attributes converts goldmark node attributes ({#id .class}) to token attrs.
func (w *walker) attributes(n ast.Node) []Attr {
	var attrs []Attr
	for _, a := range n.Attributes() {
		var v string
		switch val := a.Value.(type) {
		case []byte:
			v = string(val)
		case string:
			v = val
		default:
			v = fmt.Sprint(val)
		}
		attrs = append(attrs, Attr{Name: string(a.Name), Value: v})
	}
	return attrs
}

func (w *walker) lines(n ast.Node) string {
	if n.Type() != ast.TypeBlock {
		return ""
	}
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(w.source))
	}
	return buf.String()
}

// plainText concatenates the literal text below n.
func (w *walker) plainText(n ast.Node) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.WriteString(w.textValue(t))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return buf.String()
}

// textValue returns the display text of t: backslash escapes and entity
// references are decoded unless the segment is raw (code span content).
func (w *walker) textValue(t *ast.Text) string {
	v := t.Segment.Value(w.source)
	if t.IsRaw() {
		return string(v)
	}
	return string(util.UnescapePunctuations(util.ResolveNumericReferences(util.ResolveEntityNames(v))))
}

func kindName(n ast.Node) string {
	return strings.ToLower(n.Kind().String())
}
