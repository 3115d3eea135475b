// Package sanitize holds the HTML allow-list shared by both render paths.
package sanitize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var checkboxType = regexp.MustCompile(`^checkbox$`)

// Policy returns the UGC policy extended for rendered Markdown: mark, sup
// and sub, class names on code-ish elements, heading anchors and disabled
// task list checkboxes.
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("mark", "sup", "sub", "s", "del", "figure", "figcaption")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span", "pre", "div")
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("style").OnElements("th", "td")
	p.AllowAttrs("type").Matching(checkboxType).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}
