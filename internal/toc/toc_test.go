package toc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/mdrender/internal/token"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  What's   new?  ", "whats-new"},
		{"C++ & Go!", "c-go"},
		{"snake_case-and-kebab", "snake_case-and-kebab"},
		{"Ünïcödé Títle", "ünïcödé-títle"},
		{"--dashes--", "dashes"},
		{"!!!", ""},
		{"a - b", "a-b"},
		{"a -- b", "a-b"},
		{"-x- y -", "x-y"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestSlugger_Collisions(t *testing.T) {
	s := NewSlugger()
	assert.Equal(t, "test", s.Slug("Test", 1))
	assert.Equal(t, "test-1", s.Slug("Test", 2))
	assert.Equal(t, "test-2", s.Slug("test", 1))
}

func TestSlugger_SkipsTakenSuffix(t *testing.T) {
	s := NewSlugger()
	assert.Equal(t, "a-1", s.Slug("a 1", 1))
	assert.Equal(t, "a", s.Slug("a", 1))
	assert.Equal(t, "a-2", s.Slug("a", 1))
}

func TestSlugger_EmptyFallsBackToLevel(t *testing.T) {
	s := NewSlugger()
	assert.Equal(t, "heading-3", s.Slug("???", 3))
	assert.Equal(t, "heading-3-1", s.Slug("", 3))
}

func TestExtract_SingleHeading(t *testing.T) {
	toks := token.NewTokenizer().Parse("# Hello World")
	out, entries := Extract(toks)

	assert.Equal(t, []Entry{{ID: "hello-world", Level: 1, Text: "Hello World"}}, entries)
	id, ok := out[0].Attr("id")
	assert.True(t, ok)
	assert.Equal(t, "hello-world", id)

	_, ok = toks[0].Attr("id")
	assert.False(t, ok, "input tokens must not be modified")
}

func TestExtract_Duplicates(t *testing.T) {
	_, entries := Extract(token.NewTokenizer().Parse("# Test\n\n# Test\n"))
	require.Len(t, entries, 2)
	assert.Equal(t, "test", entries[0].ID)
	assert.Equal(t, "test-1", entries[1].ID)
}

func TestExtract_AuthorIDWins(t *testing.T) {
	_, entries := Extract(token.NewTokenizer().Parse("# Intro\n\n## Other {#intro}\n"))
	require.Len(t, entries, 2)
	assert.Equal(t, "intro-1", entries[0].ID)
	assert.Equal(t, "intro", entries[1].ID)
	assert.Equal(t, 2, entries[1].Level)
}

func TestExtract_DocumentOrderAndLevels(t *testing.T) {
	_, entries := Extract(token.NewTokenizer().Parse("# A\n\n### B `code`\n\ntext\n\n## C\n"))
	require.Len(t, entries, 3)
	assert.Equal(t, []int{1, 3, 2}, []int{entries[0].Level, entries[1].Level, entries[2].Level})
	assert.Equal(t, "B", entries[1].Text)
	assert.Equal(t, "b", entries[1].ID)
}

func TestExtract_CodeSpanNotInLabel(t *testing.T) {
	_, entries := Extract(token.NewTokenizer().Parse("## Use `go test` now\n"))
	require.Len(t, entries, 1)
	assert.Equal(t, "Use  now", entries[0].Text)
	assert.Equal(t, "use-now", entries[0].ID)
}

func TestExtract_DecodesEntitiesAndEscapes(t *testing.T) {
	_, entries := Extract(token.NewTokenizer().Parse("# Tom &amp; Jerry\n\n## 1\\. Setup &#35;2\n"))
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{ID: "tom-jerry", Level: 1, Text: "Tom & Jerry"}, entries[0])
	assert.Equal(t, Entry{ID: "1-setup-2", Level: 2, Text: "1. Setup #2"}, entries[1])
}

func TestExtract_HyphenatedHeading(t *testing.T) {
	_, entries := Extract(token.NewTokenizer().Parse("# a - b\n"))
	require.Len(t, entries, 1)
	assert.Equal(t, "a-b", entries[0].ID)
}

func TestExtract_SkipsBadLevel(t *testing.T) {
	toks := []token.Token{
		{Type: token.TypeHeadingOpen, Tag: "h7", Nesting: token.Open},
		{Type: token.TypeInline, Children: []token.Token{{Type: token.TypeText, Content: "x"}}},
		{Type: token.TypeHeadingClose, Tag: "h7", Nesting: token.Close},
	}
	out, entries := Extract(toks)
	assert.Empty(t, entries)
	assert.Equal(t, toks, out)
}

func TestExtract_NoHeadings(t *testing.T) {
	out, entries := Extract(token.NewTokenizer().Parse("just text"))
	assert.Nil(t, entries)
	assert.Len(t, out, 3)
}
