package token

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Inline syntax beyond CommonMark + GFM tables/tasklists:
//
//	==mark==   ^sup^   ~sub~   ~~strikethrough~~
//
// Tilde handles both sub and strikethrough so the two never compete for
// the same delimiter run.

// KindMark is the node kind of ==marked== text.
var KindMark = ast.NewNodeKind("Mark")

// KindSuperscript is the node kind of ^superscript^ text.
var KindSuperscript = ast.NewNodeKind("Superscript")

// KindSubscript is the node kind of ~subscript~ text.
var KindSubscript = ast.NewNodeKind("Subscript")

const inlineSyntaxPriority = 500

// Mark is highlighted text.
type Mark struct{ ast.BaseInline }

func (n *Mark) Kind() ast.NodeKind { return KindMark }

func (n *Mark) Dump(source []byte, level int) { ast.DumpHelper(n, source, level, nil, nil) }

// Superscript is raised text.
type Superscript struct{ ast.BaseInline }

func (n *Superscript) Kind() ast.NodeKind { return KindSuperscript }

func (n *Superscript) Dump(source []byte, level int) { ast.DumpHelper(n, source, level, nil, nil) }

// Subscript is lowered text.
type Subscript struct{ ast.BaseInline }

func (n *Subscript) Kind() ast.NodeKind { return KindSubscript }

func (n *Subscript) Dump(source []byte, level int) { ast.DumpHelper(n, source, level, nil, nil) }

// delimiterProcessor pairs runs of one delimiter character and builds the
// node for a matched pair.
type delimiterProcessor struct {
	char    byte
	onMatch func(consumes int) ast.Node
}

func (p *delimiterProcessor) IsDelimiter(b byte) bool { return b == p.char }

func (p *delimiterProcessor) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char
}

func (p *delimiterProcessor) OnMatch(consumes int) ast.Node { return p.onMatch(consumes) }

// delimiterParser scans a delimiter run and pushes it for later pairing.
type delimiterParser struct {
	proc     *delimiterProcessor
	min, max int
}

func (p *delimiterParser) Trigger() []byte { return []byte{p.proc.char} }

func (p *delimiterParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	node := parser.ScanDelimiter(line, before, p.min, p.proc)
	if node == nil || node.OriginalLength > p.max || before == rune(p.proc.char) {
		return nil
	}
	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}

var (
	markProcessor = &delimiterProcessor{char: '=', onMatch: func(int) ast.Node { return &Mark{} }}
	supProcessor  = &delimiterProcessor{char: '^', onMatch: func(int) ast.Node { return &Superscript{} }}
	// Two tildes strike through, one tilde lowers.
	tildeProcessor = &delimiterProcessor{char: '~', onMatch: func(consumes int) ast.Node {
		if consumes >= 2 {
			return east.NewStrikethrough()
		}
		return &Subscript{}
	}}
)

type inlineSyntax struct{}

// InlineSyntax is a goldmark extension adding mark, sup, sub and
// strikethrough delimiters. Do not combine it with extension.Strikethrough.
var InlineSyntax goldmark.Extender = &inlineSyntax{}

func (e *inlineSyntax) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&delimiterParser{proc: markProcessor, min: 2, max: 2}, inlineSyntaxPriority),
		util.Prioritized(&delimiterParser{proc: supProcessor, min: 1, max: 1}, inlineSyntaxPriority),
		util.Prioritized(&delimiterParser{proc: tildeProcessor, min: 1, max: 2}, inlineSyntaxPriority),
	))
}
