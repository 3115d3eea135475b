// Package token turns Markdown source into a flat, ordered token stream.
//
// The stream mirrors the document structure with paired open/close tokens
// for containers, leaf tokens for self-contained content, and one "inline"
// token per block of inline content whose Children hold the (again flat)
// inline tokens.
package token

// Nesting tells whether a token opens a container, closes one, or stands alone.
type Nesting int

const (
	Self  Nesting = 0
	Open  Nesting = 1
	Close Nesting = -1
)

// Attr is one attribute of a token. Order of a token's Attrs is significant.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Token is a single unit of the token stream.
type Token struct {
	Type     string  `json:"type"`              // e.g. "paragraph_open", "text", "fence"
	Tag      string  `json:"tag,omitempty"`     // element name for container and element-like leaves
	Nesting  Nesting `json:"nesting"`           // Open, Close or Self
	Content  string  `json:"content,omitempty"` // literal text for leaves
	Info     string  `json:"info,omitempty"`    // fence info string
	Attrs    []Attr  `json:"attrs,omitempty"`
	Children []Token `json:"children,omitempty"` // only set on "inline" tokens
}

// Well-known token types.
const (
	TypeInline        = "inline"
	TypeText          = "text"
	TypeSoftBreak     = "softbreak"
	TypeHardBreak     = "hardbreak"
	TypeCodeInline    = "code_inline"
	TypeFence         = "fence"
	TypeCodeBlock     = "code_block"
	TypeHr            = "hr"
	TypeImage         = "image"
	TypeCheckbox      = "checkbox_input"
	TypeHTMLBlock     = "html_block"
	TypeHTMLInline    = "html_inline"
	TypeHeadingOpen   = "heading_open"
	TypeHeadingClose  = "heading_close"
	TypeParagraphOpen = "paragraph_open"
)

// Attr returns the value of the named attribute.
func (t Token) Attr(name string) (string, bool) {
	for _, a := range t.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// WithAttr returns a copy of t with the attribute set. An existing attribute
// keeps its position; a new one is appended.
func (t Token) WithAttr(name, value string) Token {
	attrs := make([]Attr, 0, len(t.Attrs)+1)
	replaced := false
	for _, a := range t.Attrs {
		if a.Name == name {
			a.Value = value
			replaced = true
		}
		attrs = append(attrs, a)
	}
	if !replaced {
		attrs = append(attrs, Attr{Name: name, Value: value})
	}
	t.Attrs = attrs
	return t
}

func openToken(kind, tag string, attrs ...Attr) Token {
	return Token{Type: kind + "_open", Tag: tag, Nesting: Open, Attrs: attrs}
}

func closeToken(kind, tag string) Token {
	return Token{Type: kind + "_close", Tag: tag, Nesting: Close}
}

func textToken(content string) Token {
	return Token{Type: TypeText, Content: content}
}
