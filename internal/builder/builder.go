// Package builder turns a flat token stream into a render tree with a single
// left-to-right pass over an explicit stack of open containers.
package builder

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dgallion1/mdrender/internal/highlight"
	"github.com/dgallion1/mdrender/internal/rendertree"
	"github.com/dgallion1/mdrender/internal/token"
)

// booleanAttrs are token attributes whose presence alone means true.
var booleanAttrs = map[string]bool{
	"checked":  true,
	"disabled": true,
}

// Builder builds render trees. It holds no per-document state and is safe
// for concurrent use.
type Builder struct {
	log    *slog.Logger
	fences *FenceEnricher
	policy *bluemonday.Policy
}

// New returns a Builder. policy sanitises raw HTML tokens; it may be nil
// when the tokenizer never emits them.
func New(log *slog.Logger, hl highlight.Highlighter, policy *bluemonday.Policy) *Builder {
	if policy == nil {
		policy = bluemonday.StrictPolicy()
	}
	log = log.With("component", "builder")
	return &Builder{
		log:    log,
		fences: NewFenceEnricher(hl, log),
		policy: policy,
	}
}

// Build converts tokens into render-tree children. Identity keys are
// numbered per tag in document order and restart on every call.
func (b *Builder) Build(tokens []token.Token) []rendertree.Child {
	st := &state{keys: make(map[string]int)}
	return b.build(tokens, st)
}

// state is the per-call key counter shared by nested inline builds.
type state struct {
	keys map[string]int
}

func (s *state) nextKey(tag string) string {
	n := s.keys[tag]
	s.keys[tag] = n + 1
	return tag + "-" + strconv.Itoa(n)
}

type frame struct {
	tag      string
	key      string
	attrs    map[string]any
	children []rendertree.Child
}

type stack struct {
	frames []*frame
	result []rendertree.Child
}

func (s *stack) push(f *frame) { s.frames = append(s.frames, f) }

func (s *stack) pop() (*frame, bool) {
	if len(s.frames) == 0 {
		return nil, false
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f, true
}

func (s *stack) appendChild(children ...rendertree.Child) {
	if len(s.frames) == 0 {
		s.result = append(s.result, children...)
		return
	}
	top := s.frames[len(s.frames)-1]
	top.children = append(top.children, children...)
}

func (b *Builder) build(tokens []token.Token, st *state) []rendertree.Child {
	stk := &stack{}
	for _, tok := range tokens {
		switch tok.Nesting {
		case token.Open:
			f := &frame{tag: tok.Tag, attrs: nodeAttrs(tok.Attrs)}
			if f.tag != "" {
				f.key = st.nextKey(f.tag)
			}
			stk.push(f)
		case token.Close:
			f, ok := stk.pop()
			if !ok {
				b.log.Warn("dropping close token without open container", "type", tok.Type)
				continue
			}
			stk.appendChild(b.closeFrame(f, st)...)
		default:
			b.leaf(tok, st, stk)
		}
	}
	for len(stk.frames) > 0 {
		f, _ := stk.pop()
		b.log.Warn("closing container left open at end of input", "tag", f.tag)
		stk.appendChild(b.closeFrame(f, st)...)
	}
	return stk.result
}

// closeFrame turns a finished frame into the children it contributes to its
// parent. Frames without a tag are transparent.
func (b *Builder) closeFrame(f *frame, st *state) []rendertree.Child {
	if f.tag == "" {
		return f.children
	}
	if f.tag == "p" {
		if img := soleImage(f.children); img != nil {
			return []rendertree.Child{figure(f.key, img, st)}
		}
	}
	attrs := f.attrs
	if attrs == nil {
		attrs = make(map[string]any, 1)
	}
	attrs[rendertree.AttrKey] = f.key
	return []rendertree.Child{rendertree.El(f.tag, attrs, f.children...)}
}

func (b *Builder) leaf(tok token.Token, st *state, stk *stack) {
	switch tok.Type {
	case token.TypeInline:
		stk.appendChild(b.build(tok.Children, st)...)

	case token.TypeText:
		if tok.Content != "" {
			stk.appendChild(rendertree.Text(tok.Content))
		}

	case token.TypeSoftBreak:
		stk.appendChild(rendertree.Text("\n"))

	case token.TypeHardBreak:
		stk.appendChild(keyed("br", st, nil))

	case token.TypeHr:
		stk.appendChild(keyed("hr", st, nil))

	case token.TypeCodeInline:
		stk.appendChild(keyed("code", st, nil, rendertree.Text(tok.Content)))

	case token.TypeCheckbox:
		stk.appendChild(keyed("input", st, nodeAttrs(tok.Attrs)))

	case token.TypeImage:
		attrs := nodeAttrs(tok.Attrs)
		attrs[rendertree.AttrClass] = "img"
		attrs["loading"] = "lazy"
		img := keyed("img", st, attrs)
		img.Component = rendertree.ComponentLazyImage
		stk.appendChild(img)

	case token.TypeFence, token.TypeCodeBlock:
		stk.appendChild(b.fences.Enrich(tok.Info, tok.Content, st.nextKey("pre")))

	case token.TypeHTMLBlock:
		stk.appendChild(keyed("div", st, map[string]any{
			rendertree.AttrInnerHTML: b.policy.Sanitize(tok.Content),
		}))

	case token.TypeHTMLInline:
		stk.appendChild(keyed("span", st, map[string]any{
			rendertree.AttrInnerHTML: b.policy.Sanitize(tok.Content),
		}))

	default:
		b.log.Warn("dropping unsupported token", "type", tok.Type)
	}
}

func keyed(tag string, st *state, attrs map[string]any, children ...rendertree.Child) *rendertree.Node {
	if attrs == nil {
		attrs = make(map[string]any, 1)
	}
	attrs[rendertree.AttrKey] = st.nextKey(tag)
	return rendertree.El(tag, attrs, children...)
}

func nodeAttrs(attrs []token.Attr) map[string]any {
	out := make(map[string]any, len(attrs)+1)
	for _, a := range attrs {
		if booleanAttrs[a.Name] && a.Value == "" {
			out[a.Name] = true
			continue
		}
		out[a.Name] = a.Value
	}
	return out
}

// soleImage returns the img node when it is the only non-blank child.
func soleImage(children []rendertree.Child) *rendertree.Node {
	var img *rendertree.Node
	for _, c := range children {
		switch v := c.(type) {
		case rendertree.Text:
			if strings.TrimSpace(string(v)) != "" {
				return nil
			}
		case *rendertree.Node:
			if v.Tag != "img" || img != nil {
				return nil
			}
			img = v
		}
	}
	return img
}

// figure wraps a standalone image. The figure takes over the paragraph's key.
func figure(key string, img *rendertree.Node, st *state) *rendertree.Node {
	children := []rendertree.Child{img}
	if alt := img.Attr("alt"); alt != "" {
		children = append(children, keyed("figcaption", st, nil, rendertree.Text(alt)))
	}
	return rendertree.El("figure", map[string]any{
		rendertree.AttrKey:   key,
		rendertree.AttrClass: "image-figure",
	}, children...)
}
