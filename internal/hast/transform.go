package hast

import (
	"regexp"
	"slices"
)

// rawTags hold literal content that text transforms must not touch.
var rawTags = map[string]bool{
	"code":   true,
	"pre":    true,
	"script": true,
	"style":  true,
	"math":   true,
}

var markPattern = regexp.MustCompile(`(?s)==(.+?)==`)

// SplitText rewrites every text leaf below n outside raw elements. split
// returns the replacement nodes for one text value, or nil to keep it.
// Replacements are spliced into the parent in place.
func SplitText(n *Node, split func(value string) []*Node) {
	if n == nil || (n.Type == Element && rawTags[n.TagName]) {
		return
	}
	for i := 0; i < len(n.Children); i++ {
		c := n.Children[i]
		if c.Type != Text {
			SplitText(c, split)
			continue
		}
		repl := split(c.Value)
		if repl == nil {
			continue
		}
		n.Children = slices.Replace(n.Children, i, i+1, repl...)
		i += len(repl) - 1
	}
}

// Mark turns ==text== in text leaves into mark elements.
func Mark(root *Node) {
	SplitText(root, func(value string) []*Node {
		return splitMatches(value, markPattern, func(m []string) *Node {
			return NewElement("mark", nil, NewText(m[1]))
		})
	})
}

// splitMatches cuts value around every match of re. It returns nil when
// nothing matched.
func splitMatches(value string, re *regexp.Regexp, build func(groups []string) *Node) []*Node {
	locs := re.FindAllStringSubmatchIndex(value, -1)
	if len(locs) == 0 {
		return nil
	}
	var out []*Node
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			out = append(out, NewText(value[last:loc[0]]))
		}
		groups := make([]string, len(loc)/2)
		for g := range groups {
			if loc[2*g] >= 0 {
				groups[g] = value[loc[2*g]:loc[2*g+1]]
			}
		}
		out = append(out, build(groups))
		last = loc[1]
	}
	if last < len(value) {
		out = append(out, NewText(value[last:]))
	}
	return out
}

// Walk calls fn for every element below n in document order. Returning
// false skips the element's children.
func Walk(n *Node, fn func(el *Node) bool) {
	if n == nil {
		return
	}
	if n.Type == Element && !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
