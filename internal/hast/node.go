// Package hast is a small generic HTML syntax tree: roots, elements, text
// and comments, with element attributes held as typed properties.
package hast

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeType is the kind of a Node.
type NodeType int

const (
	Root NodeType = iota
	Element
	Text
	Comment
)

var nodeTypeNames = [...]string{"root", "element", "text", "comment"}

func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

func (t NodeType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Node is one node of the tree. Properties values are string, bool or
// []string.
type Node struct {
	Type       NodeType       `json:"type"`
	TagName    string         `json:"tagName,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Children   []*Node        `json:"children,omitempty"`
	Value      string         `json:"value,omitempty"`
}

// NewRoot returns a root holding children.
func NewRoot(children ...*Node) *Node {
	return &Node{Type: Root, Children: children}
}

// NewElement returns an element. props may be nil.
func NewElement(tag string, props map[string]any, children ...*Node) *Node {
	return &Node{Type: Element, TagName: tag, Properties: props, Children: children}
}

// NewText returns a text node.
func NewText(value string) *Node {
	return &Node{Type: Text, Value: value}
}

// ClassNames returns the element's class list.
func (n *Node) ClassNames() []string {
	if n == nil {
		return nil
	}
	cls, _ := n.Properties["className"].([]string)
	return cls
}

// HasClass reports whether the element carries class c.
func (n *Node) HasClass(c string) bool {
	for _, cls := range n.ClassNames() {
		if cls == c {
			return true
		}
	}
	return false
}

// TextContent concatenates every text value below n.
func TextContent(n *Node) string {
	var sb strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Type == Text {
			sb.WriteString(n.Value)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

var booleanAttrs = map[string]bool{
	"allowfullscreen": true, "async": true, "autoplay": true, "checked": true,
	"controls": true, "default": true, "defer": true, "disabled": true,
	"hidden": true, "loop": true, "multiple": true, "muted": true,
	"novalidate": true, "open": true, "readonly": true, "required": true,
	"selected": true,
}

// PropertyName maps an HTML attribute name to its property name:
// class→className, for→htmlFor, data-foo-bar→dataFooBar.
func PropertyName(attr string) string {
	switch attr {
	case "class":
		return "className"
	case "for":
		return "htmlFor"
	}
	if !strings.Contains(attr, "-") {
		return attr
	}
	parts := strings.Split(attr, "-")
	var sb strings.Builder
	sb.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(p[1:])
	}
	return sb.String()
}

// AttributeName is the inverse of PropertyName.
func AttributeName(prop string) string {
	switch prop {
	case "className":
		return "class"
	case "htmlFor":
		return "for"
	}
	var sb strings.Builder
	for i, r := range prop {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// FromHTML parses an HTML fragment into a root node.
func FromHTML(markup string) (*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	root := NewRoot()
	for _, n := range nodes {
		if c := fromHTMLNode(n); c != nil {
			root.Children = append(root.Children, c)
		}
	}
	return root, nil
}

func fromHTMLNode(n *html.Node) *Node {
	switch n.Type {
	case html.TextNode:
		return NewText(n.Data)
	case html.CommentNode:
		return &Node{Type: Comment, Value: n.Data}
	case html.ElementNode:
		el := NewElement(n.Data, nil)
		if len(n.Attr) > 0 {
			el.Properties = make(map[string]any, len(n.Attr))
			for _, a := range n.Attr {
				name := PropertyName(a.Key)
				switch {
				case a.Key == "class":
					el.Properties[name] = strings.Fields(a.Val)
				case booleanAttrs[a.Key]:
					el.Properties[name] = true
				default:
					el.Properties[name] = a.Val
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := fromHTMLNode(c); child != nil {
				el.Children = append(el.Children, child)
			}
		}
		return el
	}
	return nil
}

// Render serialises n back to HTML. Attributes are written in name order.
func Render(n *Node) (string, error) {
	var sb strings.Builder
	for _, h := range toHTML(n) {
		if err := html.Render(&sb, h); err != nil {
			return "", fmt.Errorf("render %s: %w", n.Type, err)
		}
	}
	return sb.String(), nil
}

func toHTML(n *Node) []*html.Node {
	switch n.Type {
	case Root:
		var out []*html.Node
		for _, c := range n.Children {
			out = append(out, toHTML(c)...)
		}
		return out
	case Text:
		return []*html.Node{{Type: html.TextNode, Data: n.Value}}
	case Comment:
		return []*html.Node{{Type: html.CommentNode, Data: n.Value}}
	case Element:
		el := &html.Node{Type: html.ElementNode, Data: n.TagName, DataAtom: atom.Lookup([]byte(n.TagName))}
		el.Attr = attributes(n.Properties)
		for _, c := range n.Children {
			for _, h := range toHTML(c) {
				el.AppendChild(h)
			}
		}
		return []*html.Node{el}
	}
	return nil
}

func attributes(props map[string]any) []html.Attribute {
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)

	attrs := make([]html.Attribute, 0, len(props))
	for _, k := range names {
		var val string
		switch v := props[k].(type) {
		case nil:
			continue
		case bool:
			if !v {
				continue
			}
		case []string:
			val = strings.Join(v, " ")
		case string:
			val = v
		default:
			val = fmt.Sprint(v)
		}
		attrs = append(attrs, html.Attribute{Key: AttributeName(k), Val: val})
	}
	return attrs
}
