package markdown

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/mdrender/internal/rendertree"
	"github.com/dgallion1/mdrender/internal/stats"
	"github.com/dgallion1/mdrender/internal/toc"
)

func newTestRenderer(cfg Config, st *stats.Render) *Renderer {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, st)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeTokens, m)

	m, err = ParseMode("ast")
	require.NoError(t, err)
	assert.Equal(t, ModeAST, m)

	_, err = ParseMode("html")
	assert.Error(t, err)
}

func TestRender_Empty(t *testing.T) {
	r := newTestRenderer(Config{}, nil)
	assert.Equal(t, Result{}, r.Render("", Options{TOC: true}))
	assert.Nil(t, r.RenderAST(context.Background(), ""))
}

func TestRender_TOCOffByDefault(t *testing.T) {
	res := newTestRenderer(Config{}, nil).Render("# Hello World", Options{})
	assert.Nil(t, res.TOC)
	h1 := rendertree.Find(res.Content, "h1")
	require.Len(t, h1, 1)
	assert.Empty(t, h1[0].Attr("id"))
}

func TestRender_TOC(t *testing.T) {
	res := newTestRenderer(Config{}, nil).Render("# Hello World\n\n## Next\n", Options{TOC: true})
	assert.Equal(t, []toc.Entry{
		{ID: "hello-world", Level: 1, Text: "Hello World"},
		{ID: "next", Level: 2, Text: "Next"},
	}, res.TOC)

	h1 := rendertree.Find(res.Content, "h1")
	require.Len(t, h1, 1)
	assert.Equal(t, "hello-world", h1[0].Attr("id"))
	assert.Equal(t, "h1-0", h1[0].Key())
}

func TestRender_RawHTMLOption(t *testing.T) {
	src := "<div class=\"note\">hi</div>\n"

	off := newTestRenderer(Config{}, nil).Render(src, Options{})
	assert.Equal(t, src[:len(src)-1], rendertree.TextContent(off.Content))

	on := newTestRenderer(Config{AllowHTML: true}, nil).Render(src, Options{})
	require.Len(t, on.Content, 1)
	div := on.Content[0].(*rendertree.Node)
	assert.Contains(t, div.Attr(rendertree.AttrInnerHTML), "hi")
}

func TestRender_FenceUsesHighlighter(t *testing.T) {
	res := newTestRenderer(Config{}, nil).Render("```go\nx := 1\n```\n", Options{})
	pre := rendertree.Find(res.Content, "pre")
	require.Len(t, pre, 1)
	assert.Equal(t, rendertree.ComponentCodeWrapper, pre[0].Component)
	assert.Equal(t, "go", pre[0].Attr("data-lang"))
}

func TestDo_RecordsStats(t *testing.T) {
	st := stats.NewRender(0)
	r := newTestRenderer(Config{}, st)

	_, err := r.Do(context.Background(), "# A", Options{})
	require.NoError(t, err)
	_, err = r.Do(context.Background(), "# A", Options{Mode: ModeAST})
	require.NoError(t, err)
	_, err = r.Do(context.Background(), "# A", Options{Mode: "bogus"})
	require.Error(t, err)

	snaps := st.Snapshot()
	assert.Equal(t, 1, snaps[string(ModeTokens)].Count)
	assert.Equal(t, 1, snaps[string(ModeAST)].Count)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestRenderer(Config{}, nil).Do(ctx, "x", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_JSON(t *testing.T) {
	res := newTestRenderer(Config{}, nil).Render("Hi", Options{})
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"tag":"p","attrs":{"key":"p-0"},"children":["Hi"]}]}`, string(b))
}

func TestRender_PathsAgreeOnDecodedText(t *testing.T) {
	r := newTestRenderer(Config{}, nil)
	src := "a \\*b\\* &amp; c &copy; d"

	tokenP := rendertree.Find(r.Render(src, Options{}).Content, "p")
	astP := rendertree.Find(r.RenderAST(context.Background(), src), "p")
	require.Len(t, tokenP, 1)
	require.Len(t, astP, 1)

	assert.Equal(t, "a *b* & c © d", rendertree.TextContent(tokenP[0].Children))
	assert.Equal(t, rendertree.TextContent(astP[0].Children), rendertree.TextContent(tokenP[0].Children))
}
