// Package pipeline renders Markdown through a fixed sequence of generic-AST
// stages, adding optional stages when the content needs them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dgallion1/mdrender/internal/convert"
	"github.com/dgallion1/mdrender/internal/highlight"
	"github.com/dgallion1/mdrender/internal/rendertree"
	"github.com/dgallion1/mdrender/internal/sanitize"
)

// ErrorClass marks the placeholder returned when rendering fails.
const ErrorClass = "markdown-error"

var (
	codePattern = regexp.MustCompile("(?m)^ {0,3}(```|~~~)|`[^`\n]+`")
	mathPattern = regexp.MustCompile(`\$\$[\s\S]+?\$\$|\$[^$\n]+\$`)
)

// Loaders produce the optional stages. Share one Loaders value across
// pipelines so each stage is loaded at most once per process.
type Loaders struct {
	Highlight *Lazy[Stage]
	Math      *Lazy[[]Stage]
}

// NewLoaders returns loaders whose highlight stage uses the named chroma
// style and languages.
func NewLoaders(style string, languages []string) *Loaders {
	return &Loaders{
		Highlight: NewLazy(func() (Stage, error) {
			return HighlightStage(highlight.NewChroma(style, languages)), nil
		}),
		Math: NewLazy(func() ([]Stage, error) {
			return MathStages(), nil
		}),
	}
}

var defaultLoaders = NewLoaders(highlight.DefaultStyle, highlight.DefaultLanguages)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLoaders replaces the process-wide default loaders.
func WithLoaders(l *Loaders) Option {
	return func(p *Pipeline) { p.loaders = l }
}

// WithPolicy replaces the sanitize policy.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(p *Pipeline) { p.policy = policy }
}

// WithConverter replaces the tree converter.
func WithConverter(c *convert.Converter) Option {
	return func(p *Pipeline) { p.conv = c }
}

// Pipeline renders Markdown to a render tree. It is safe for concurrent use.
type Pipeline struct {
	log     *slog.Logger
	loaders *Loaders
	policy  *bluemonday.Policy
	conv    *convert.Converter
	base    []Stage
}

// New builds a pipeline.
func New(log *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		log:     log.With("component", "pipeline"),
		loaders: defaultLoaders,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.policy == nil {
		p.policy = sanitize.Policy()
	}
	if p.conv == nil {
		p.conv = convert.New(log)
	}
	md := newMarkdown()
	p.base = []Stage{
		ParseStage(md),
		MarkupStage(md),
		RawStage(),
		SanitizeStage(p.policy),
		MarkStage(),
	}
	return p
}

// Stages returns the stages that would run for src, in order.
func (p *Pipeline) Stages(ctx context.Context, src string) ([]Stage, error) {
	stages := append([]Stage(nil), p.base...)
	if mathPattern.MatchString(src) {
		math, err := p.loaders.Math.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("load math stages: %w", err)
		}
		stages = append(stages, math...)
	}
	if codePattern.MatchString(src) {
		hl, err := p.loaders.Highlight.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("load highlight stage: %w", err)
		}
		stages = append(stages, hl)
	}
	return stages, nil
}

// Render runs every stage over src and converts the result. Empty input
// yields nil. Any failure yields a single error placeholder instead.
func (p *Pipeline) Render(ctx context.Context, src string) (out []rendertree.Child) {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("render panicked", "panic", r)
			out = placeholder()
		}
	}()

	stages, err := p.Stages(ctx, src)
	if err != nil {
		p.log.Error("render failed", "error", err)
		return placeholder()
	}
	doc := &Document{Source: src}
	for _, s := range stages {
		if err := s.Transform(ctx, doc); err != nil {
			p.log.Error("render stage failed", "stage", s.Name(), "error", err)
			return placeholder()
		}
	}
	return p.conv.Convert(doc.Tree)
}

func placeholder() []rendertree.Child {
	return []rendertree.Child{
		rendertree.El("span", map[string]any{rendertree.AttrClass: ErrorClass},
			rendertree.Text("Failed to render content")),
	}
}
