// Package markdown is the entry point for rendering Markdown to a render
// tree, either through the token stack machine or the generic-AST pipeline.
package markdown

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/mdrender/internal/builder"
	"github.com/dgallion1/mdrender/internal/highlight"
	"github.com/dgallion1/mdrender/internal/pipeline"
	"github.com/dgallion1/mdrender/internal/rendertree"
	"github.com/dgallion1/mdrender/internal/sanitize"
	"github.com/dgallion1/mdrender/internal/stats"
	"github.com/dgallion1/mdrender/internal/toc"
	"github.com/dgallion1/mdrender/internal/token"
)

// Mode selects the render path.
type Mode string

const (
	ModeTokens Mode = "tokens"
	ModeAST    Mode = "ast"
)

// ParseMode validates a mode name. Empty means ModeTokens.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeTokens:
		return ModeTokens, nil
	case ModeAST:
		return ModeAST, nil
	}
	return "", fmt.Errorf("unknown render mode %q", s)
}

// Options control one render.
type Options struct {
	TOC  bool
	Mode Mode
}

// Result is a rendered document.
type Result struct {
	Content []rendertree.Child `json:"content"`
	TOC     []toc.Entry        `json:"toc,omitempty"`
}

// Config configures a Renderer.
type Config struct {
	AllowHTML      bool
	HighlightStyle string
	Languages      []string
}

// Renderer renders Markdown. It is safe for concurrent use.
type Renderer struct {
	log       *slog.Logger
	tokenizer *token.Tokenizer
	builder   *builder.Builder
	pipeline  *pipeline.Pipeline
	stats     *stats.Render
}

// New builds a Renderer. st may be nil.
func New(log *slog.Logger, cfg Config, st *stats.Render) *Renderer {
	if cfg.HighlightStyle == "" {
		cfg.HighlightStyle = highlight.DefaultStyle
	}
	if cfg.Languages == nil {
		cfg.Languages = highlight.DefaultLanguages
	}
	policy := sanitize.Policy()

	var popts []pipeline.Option
	popts = append(popts, pipeline.WithPolicy(policy))
	if cfg.HighlightStyle != highlight.DefaultStyle {
		popts = append(popts, pipeline.WithLoaders(pipeline.NewLoaders(cfg.HighlightStyle, cfg.Languages)))
	}

	return &Renderer{
		log:       log.With("component", "markdown"),
		tokenizer: token.NewTokenizer(token.WithHTML(cfg.AllowHTML)),
		builder:   builder.New(log, highlight.NewChroma(cfg.HighlightStyle, cfg.Languages), policy),
		pipeline:  pipeline.New(log, popts...),
		stats:     st,
	}
}

// Render renders src through the token path.
func (r *Renderer) Render(src string, opts Options) Result {
	if src == "" {
		return Result{}
	}
	tokens := r.tokenizer.Parse(src)
	var res Result
	if opts.TOC {
		tokens, res.TOC = toc.Extract(tokens)
	}
	res.Content = r.builder.Build(tokens)
	return res
}

// RenderAST renders src through the generic-AST pipeline.
func (r *Renderer) RenderAST(ctx context.Context, src string) []rendertree.Child {
	return r.pipeline.Render(ctx, src)
}

// Tokens returns the token stream for src.
func (r *Renderer) Tokens(src string) []token.Token {
	return r.tokenizer.Parse(src)
}

// Do renders src with the path opts.Mode selects and records its latency.
// The table of contents is only produced on the token path.
func (r *Renderer) Do(ctx context.Context, src string, opts Options) (Result, error) {
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	var res Result
	switch mode {
	case ModeAST:
		res.Content = r.RenderAST(ctx, src)
		if isPlaceholder(res.Content) && r.stats != nil {
			r.stats.RecordError(string(mode))
		}
	default:
		res = r.Render(src, opts)
	}
	elapsed := time.Since(start)

	if r.stats != nil {
		r.stats.Record(string(mode), len(src), elapsed)
	}
	r.log.Debug("rendered", "mode", mode, "bytes", len(src), "duration", elapsed)
	return res, nil
}

func isPlaceholder(content []rendertree.Child) bool {
	if len(content) != 1 {
		return false
	}
	n, ok := content[0].(*rendertree.Node)
	return ok && n.Attr(rendertree.AttrClass) == pipeline.ErrorClass
}
