package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/mdrender/internal/hast"
	"github.com/dgallion1/mdrender/internal/highlight"
)

// Document is the state handed from stage to stage.
type Document struct {
	Source string
	AST    ast.Node
	Markup string
	Tree   *hast.Node
}

// Stage is one transform of the pipeline. A stage owns the document while
// it runs.
type Stage interface {
	Name() string
	Transform(ctx context.Context, doc *Document) error
}

// StageFunc adapts a function to Stage.
type StageFunc struct {
	StageName string
	Fn        func(ctx context.Context, doc *Document) error
}

func (s StageFunc) Name() string { return s.StageName }

func (s StageFunc) Transform(ctx context.Context, doc *Document) error { return s.Fn(ctx, doc) }

var errNoTree = errors.New("no tree to transform")

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAttribute()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// ParseStage parses Markdown (with GFM) into a goldmark AST.
func ParseStage(md goldmark.Markdown) Stage {
	return StageFunc{StageName: "parse", Fn: func(_ context.Context, doc *Document) error {
		doc.AST = md.Parser().Parse(text.NewReader([]byte(doc.Source)))
		return nil
	}}
}

// MarkupStage renders the AST to HTML, passing raw HTML through.
func MarkupStage(md goldmark.Markdown) Stage {
	return StageFunc{StageName: "markup", Fn: func(_ context.Context, doc *Document) error {
		if doc.AST == nil {
			return errors.New("no syntax tree to render")
		}
		var buf bytes.Buffer
		if err := md.Renderer().Render(&buf, []byte(doc.Source), doc.AST); err != nil {
			return fmt.Errorf("render markup: %w", err)
		}
		doc.Markup = buf.String()
		return nil
	}}
}

// RawStage parses the markup, raw HTML included, into a generic tree.
func RawStage() Stage {
	return StageFunc{StageName: "raw", Fn: func(_ context.Context, doc *Document) error {
		tree, err := hast.FromHTML(doc.Markup)
		if err != nil {
			return err
		}
		doc.Tree = tree
		return nil
	}}
}

// SanitizeStage filters the tree through policy.
func SanitizeStage(policy *bluemonday.Policy) Stage {
	return StageFunc{StageName: "sanitize", Fn: func(_ context.Context, doc *Document) error {
		if doc.Tree == nil {
			return errNoTree
		}
		markup, err := hast.Render(doc.Tree)
		if err != nil {
			return err
		}
		tree, err := hast.FromHTML(policy.Sanitize(markup))
		if err != nil {
			return err
		}
		doc.Tree = tree
		return nil
	}}
}

// MarkStage turns ==text== into mark elements.
func MarkStage() Stage {
	return treeStage("mark", hast.Mark)
}

// HighlightStage highlights pre > code blocks with hl.
func HighlightStage(hl highlight.Highlighter) Stage {
	return StageFunc{StageName: "highlight", Fn: func(_ context.Context, doc *Document) error {
		if doc.Tree == nil {
			return errNoTree
		}
		return hast.Highlight(doc.Tree, hl)
	}}
}

// MathStages split TeX out of text and render it as MathML.
func MathStages() []Stage {
	return []Stage{
		treeStage("math-split", hast.SplitMath),
		treeStage("math-render", hast.RenderMath),
	}
}

func treeStage(name string, fn func(*hast.Node)) Stage {
	return StageFunc{StageName: name, Fn: func(_ context.Context, doc *Document) error {
		if doc.Tree == nil {
			return errNoTree
		}
		fn(doc.Tree)
		return nil
	}}
}
