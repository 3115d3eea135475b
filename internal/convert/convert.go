// Package convert turns a generic HTML tree into render-tree nodes.
package convert

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/mdrender/internal/hast"
	"github.com/dgallion1/mdrender/internal/rendertree"
)

// Handler builds the node for one element from its transformed attributes
// and already converted children. Returning nil drops the element.
type Handler func(el *hast.Node, attrs map[string]any, children []rendertree.Child) *rendertree.Node

// Converter dispatches elements to per-tag handlers, falling back to a
// plain element node. Register handlers before first use.
type Converter struct {
	log      *slog.Logger
	handlers map[string]Handler
}

// New returns a converter with the img and pre handlers registered.
func New(log *slog.Logger) *Converter {
	c := &Converter{
		log:      log.With("component", "convert"),
		handlers: make(map[string]Handler),
	}
	c.Register("img", lazyImage)
	c.Register("pre", codeBlock)
	return c
}

// Register sets the handler for tag, replacing any earlier one.
func (c *Converter) Register(tag string, h Handler) {
	c.handlers[tag] = h
}

// Convert converts n. A root yields its converted children; comments and
// unknown nodes yield nil.
func (c *Converter) Convert(n *hast.Node) []rendertree.Child {
	if n == nil {
		return nil
	}
	switch n.Type {
	case hast.Root:
		return c.children(n)
	case hast.Element:
		if el := c.element(n); el != nil {
			return []rendertree.Child{el}
		}
		return nil
	case hast.Text:
		return []rendertree.Child{rendertree.El("span", nil, rendertree.Text(n.Value))}
	case hast.Comment:
		return nil
	default:
		c.log.Warn("dropping unknown node", "type", n.Type.String())
		return nil
	}
}

func (c *Converter) children(n *hast.Node) []rendertree.Child {
	var out []rendertree.Child
	for _, child := range n.Children {
		out = append(out, c.Convert(child)...)
	}
	return out
}

func (c *Converter) element(n *hast.Node) *rendertree.Node {
	attrs := TransformProperties(n.Properties)
	children := c.children(n)
	if h, ok := c.handlers[n.TagName]; ok {
		return h(n, attrs, children)
	}
	return rendertree.El(n.TagName, attrs, children...)
}

// TransformProperties maps element properties to render attributes: names
// go back to their HTML form, lists are space-joined, nil values are
// dropped and booleans are kept as is.
func TransformProperties(props map[string]any) map[string]any {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		name := hast.AttributeName(k)
		switch val := v.(type) {
		case nil:
		case bool:
			out[name] = val
		case string:
			out[name] = val
		case []string:
			out[name] = strings.Join(val, " ")
		default:
			out[name] = fmt.Sprint(val)
		}
	}
	return out
}

func lazyImage(_ *hast.Node, attrs map[string]any, children []rendertree.Child) *rendertree.Node {
	if attrs == nil {
		attrs = make(map[string]any, 1)
	}
	attrs["loading"] = "lazy"
	n := rendertree.El("img", attrs, children...)
	n.Component = rendertree.ComponentLazyImage
	return n
}

func codeBlock(el *hast.Node, attrs map[string]any, children []rendertree.Child) *rendertree.Node {
	button := &rendertree.Node{
		Tag:       "button",
		Component: rendertree.ComponentCopyButton,
		Attrs:     map[string]any{"data-copy": hast.TextContent(el)},
	}
	return rendertree.El("pre", attrs, append(children, button)...)
}
