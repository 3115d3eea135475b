package hast

import "regexp"

// Display math is tried first so $$x$$ is never read as two inline spans.
var mathPattern = regexp.MustCompile(`\$\$([\s\S]+?)\$\$|\$([^\s$](?:[^$\n]*?[^\s$])?)\$`)

// MathEncoding is the annotation encoding of TeX source.
const MathEncoding = "application/x-tex"

// SplitMath wraps $inline$ and $$display$$ TeX in span.math elements whose
// single text child is the TeX source.
func SplitMath(root *Node) {
	SplitText(root, func(value string) []*Node {
		return splitMatches(value, mathPattern, func(m []string) *Node {
			if m[1] != "" {
				return NewElement("span", map[string]any{
					"className": []string{"math", "math-display"},
				}, NewText(m[1]))
			}
			return NewElement("span", map[string]any{
				"className": []string{"math", "math-inline"},
			}, NewText(m[2]))
		})
	})
}

// RenderMath replaces the content of every span.math with a MathML element
// carrying the TeX source as an annotation.
func RenderMath(root *Node) {
	Walk(root, func(el *Node) bool {
		if el.TagName != "span" || !el.HasClass("math") {
			return true
		}
		tex := TextContent(el)
		display := "inline"
		if el.HasClass("math-display") {
			display = "block"
		}
		el.Children = []*Node{
			NewElement("math", map[string]any{
				"xmlns":   "http://www.w3.org/1998/Math/MathML",
				"display": display,
			},
				NewElement("semantics", nil,
					NewElement("mrow", nil, NewElement("mtext", nil, NewText(tex))),
					NewElement("annotation", map[string]any{"encoding": MathEncoding}, NewText(tex)),
				),
			),
		}
		return false
	})
}
