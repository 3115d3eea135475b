// Package rendertree defines the node shape handed to the UI layer.
//
// A tree is a slice of Child values, each either a *Node or a literal Text.
// Nodes are built once and never mutated afterwards, so subtrees may be
// shared freely.
//
// Identity keys ("tag-N", N counted per tag from 0 within one build) are
// assigned to nodes produced from container tokens and leaf tokens. The
// inner nodes of a code block (line numbers, code element, copy button) have
// no key. An image figure keeps the key of the paragraph it replaces, and
// its figcaption gets its own figcaption-N key. Trees from the generic-AST
// path have no keys.
package rendertree

import "strings"

// Child is a *Node or a Text.
type Child interface {
	isChild()
}

// Text is a literal string child.
type Text string

func (Text) isChild() {}

// Node is an element or component reference with attributes and children.
type Node struct {
	Tag       string         `json:"tag"`
	Component string         `json:"component,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
	Children  []Child        `json:"children,omitempty"`
}

func (*Node) isChild() {}

// Well-known attribute names.
const (
	AttrKey       = "key"
	AttrClass     = "class"
	AttrInnerHTML = "innerHTML"
)

// Components the UI layer substitutes for plain elements.
const (
	ComponentCodeWrapper = "CodeWrapper"
	ComponentCopyButton  = "CopyButton"
	ComponentLazyImage   = "LazyImage"
)

// El builds a node. attrs may be nil.
func El(tag string, attrs map[string]any, children ...Child) *Node {
	return &Node{Tag: tag, Attrs: attrs, Children: children}
}

// Key returns the node's identity key, or "" when it has none.
func (n *Node) Key() string {
	if n == nil {
		return ""
	}
	k, _ := n.Attrs[AttrKey].(string)
	return k
}

// Attr returns the named attribute as a string.
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	switch v := n.Attrs[name].(type) {
	case string:
		return v
	case bool:
		if v {
			return name
		}
	}
	return ""
}

// TextContent concatenates every Text below children, depth first.
func TextContent(children []Child) string {
	var sb strings.Builder
	writeText(&sb, children)
	return sb.String()
}

func writeText(sb *strings.Builder, children []Child) {
	for _, c := range children {
		switch v := c.(type) {
		case Text:
			sb.WriteString(string(v))
		case *Node:
			if v != nil {
				writeText(sb, v.Children)
			}
		}
	}
}

// Walk calls fn for every node below children in document order. Returning
// false from fn skips that node's subtree.
func Walk(children []Child, fn func(n *Node) bool) {
	for _, c := range children {
		n, ok := c.(*Node)
		if !ok || n == nil {
			continue
		}
		if fn(n) {
			Walk(n.Children, fn)
		}
	}
}

// Find returns every node below children with the given tag.
func Find(children []Child, tag string) []*Node {
	var out []*Node
	Walk(children, func(n *Node) bool {
		if n.Tag == tag {
			out = append(out, n)
		}
		return true
	})
	return out
}
