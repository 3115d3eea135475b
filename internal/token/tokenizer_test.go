package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func types(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func inlineText(tok Token) string {
	var sb strings.Builder
	for _, c := range tok.Children {
		if c.Type == TypeText {
			sb.WriteString(c.Content)
		}
	}
	return sb.String()
}

func findType(tokens []Token, typ string) (Token, bool) {
	for _, t := range tokens {
		if t.Type == typ {
			return t, true
		}
	}
	return Token{}, false
}

func TestParse_Heading(t *testing.T) {
	toks := NewTokenizer().Parse("# Hello World")
	require.Equal(t, []string{"heading_open", "inline", "heading_close"}, types(toks))
	assert.Equal(t, "h1", toks[0].Tag)
	assert.Equal(t, Open, toks[0].Nesting)
	assert.Equal(t, Close, toks[2].Nesting)
	assert.Equal(t, "Hello World", inlineText(toks[1]))
}

func TestParse_HeadingAttribute(t *testing.T) {
	toks := NewTokenizer().Parse("## Title {#custom}")
	require.NotEmpty(t, toks)
	id, ok := toks[0].Attr("id")
	assert.True(t, ok)
	assert.Equal(t, "custom", id)
	assert.Equal(t, "h2", toks[0].Tag)
}

func TestParse_EmphasisAndMark(t *testing.T) {
	toks := NewTokenizer().Parse("Some *em* and ==mark==")
	require.Equal(t, []string{"paragraph_open", "inline", "paragraph_close"}, types(toks))

	children := types(toks[1].Children)
	assert.Contains(t, children, "em_open")
	assert.Contains(t, children, "em_close")
	assert.Contains(t, children, "mark_open")
	assert.Contains(t, children, "mark_close")
	assert.Equal(t, "Some em and mark", inlineText(toks[1]))
}

func TestParse_SupSubStrike(t *testing.T) {
	toks := NewTokenizer().Parse("H~2~O x^2^ ~~gone~~")
	require.Len(t, toks, 3)
	children := types(toks[1].Children)
	assert.Contains(t, children, "sub_open")
	assert.Contains(t, children, "sup_open")
	assert.Contains(t, children, "s_open")
}

func TestParse_Fence(t *testing.T) {
	toks := NewTokenizer().Parse("```go\nfmt.Println(1)\n```\n")
	require.Len(t, toks, 1)
	assert.Equal(t, TypeFence, toks[0].Type)
	assert.Equal(t, "go", toks[0].Info)
	assert.Equal(t, "fmt.Println(1)\n", toks[0].Content)
	assert.Equal(t, Self, toks[0].Nesting)
}

func TestParse_Table(t *testing.T) {
	toks := NewTokenizer().Parse("| a | b |\n|:--|--:|\n| 1 | 2 |\n")
	got := types(toks)
	require.NotEmpty(t, got)
	assert.Equal(t, "table_open", got[0])
	assert.Equal(t, "table_close", got[len(got)-1])
	assert.Contains(t, got, "thead_open")
	assert.Contains(t, got, "tbody_open")

	th, ok := findType(toks, "th_open")
	require.True(t, ok)
	style, _ := th.Attr("style")
	assert.Equal(t, "text-align:left", style)
}

func TestParse_TaskList(t *testing.T) {
	toks := NewTokenizer().Parse("- [x] done\n- [ ] todo\n")
	assert.Equal(t, "bullet_list_open", toks[0].Type)

	var boxes []Token
	for _, tok := range toks {
		for _, c := range tok.Children {
			if c.Type == TypeCheckbox {
				boxes = append(boxes, c)
			}
		}
	}
	require.Len(t, boxes, 2)
	_, checked := boxes[0].Attr("checked")
	assert.True(t, checked)
	_, checked = boxes[1].Attr("checked")
	assert.False(t, checked)
}

func TestParse_OrderedListStart(t *testing.T) {
	toks := NewTokenizer().Parse("3. three\n4. four\n")
	require.NotEmpty(t, toks)
	assert.Equal(t, "ordered_list_open", toks[0].Type)
	start, ok := toks[0].Attr("start")
	assert.True(t, ok)
	assert.Equal(t, "3", start)
}

func TestParse_RawHTMLDisabled(t *testing.T) {
	toks := NewTokenizer().Parse("<div>hi</div>\n")
	_, ok := findType(toks, TypeHTMLBlock)
	assert.False(t, ok)
	require.Len(t, toks, 3)
	assert.Equal(t, "<div>hi</div>", inlineText(toks[1]))
}

func TestParse_RawHTMLEnabled(t *testing.T) {
	toks := NewTokenizer(WithHTML(true)).Parse("<div>hi</div>\n")
	blk, ok := findType(toks, TypeHTMLBlock)
	require.True(t, ok)
	assert.Contains(t, blk.Content, "<div>hi</div>")

	toks = NewTokenizer(WithHTML(true)).Parse("a <b>x</b>")
	_, ok = findType(toks[1].Children, TypeHTMLInline)
	assert.True(t, ok)
}

func TestParse_InlineHTMLAsText(t *testing.T) {
	toks := NewTokenizer().Parse("a <b>x</b>")
	require.Len(t, toks, 3)
	assert.Equal(t, "a <b>x</b>", inlineText(toks[1]))
}

func TestParse_Linkify(t *testing.T) {
	toks := NewTokenizer().Parse("see https://example.com")
	link, ok := findType(toks[1].Children, "link_open")
	require.True(t, ok)
	href, _ := link.Attr("href")
	assert.Equal(t, "https://example.com", href)
}

func TestParse_Image(t *testing.T) {
	toks := NewTokenizer().Parse("![alt text](/a.png \"T\")")
	img, ok := findType(toks[1].Children, TypeImage)
	require.True(t, ok)
	src, _ := img.Attr("src")
	assert.Equal(t, "/a.png", src)
	assert.Equal(t, "alt text", img.Content)
	title, _ := img.Attr("title")
	assert.Equal(t, "T", title)
}

func TestParse_Deterministic(t *testing.T) {
	src := "# A\n\ntext **b** `c`\n\n> quote\n"
	tz := NewTokenizer()
	assert.Equal(t, tz.Parse(src), tz.Parse(src))
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, NewTokenizer().Parse(""))
}

func TestWithAttr(t *testing.T) {
	tok := Token{Type: TypeHeadingOpen, Attrs: []Attr{{Name: "class", Value: "x"}}}
	got := tok.WithAttr("id", "a").WithAttr("class", "y")

	assert.Equal(t, []Attr{{Name: "class", Value: "y"}, {Name: "id", Value: "a"}}, got.Attrs)
	assert.Equal(t, []Attr{{Name: "class", Value: "x"}}, tok.Attrs, "original must not change")
}

func TestParse_DecodesEscapesAndEntities(t *testing.T) {
	toks := NewTokenizer().Parse("a \\*b\\* &amp; c &copy; d &#35; `\\*x&amp;`")
	require.Equal(t, []string{"paragraph_open", "inline", "paragraph_close"}, types(toks))
	assert.Equal(t, "a *b* & c © d # ", inlineText(toks[1]))

	code, ok := findType(toks[1].Children, TypeCodeInline)
	require.True(t, ok)
	assert.Equal(t, "\\*x&amp;", code.Content)
}

func TestParse_ImageAltDecoded(t *testing.T) {
	toks := NewTokenizer().Parse("![Tom &amp; \\*Jerry\\*](/a.png)")
	img, ok := findType(toks[1].Children, TypeImage)
	require.True(t, ok)
	assert.Equal(t, "Tom & *Jerry*", img.Content)
	alt, _ := img.Attr("alt")
	assert.Equal(t, "Tom & *Jerry*", alt)
}
