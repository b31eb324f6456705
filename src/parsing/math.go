package parsing

import (
	gohtml "html"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ----------------------
// Parser and delimiters
// ----------------------

type mathBlockParser struct{}

var _ parser.BlockParser = mathBlockParser{}

func (s mathBlockParser) Trigger() []byte {
	return []byte{'$'}
}

func (s mathBlockParser) Open(parent gast.Node, reader text.Reader, pc parser.Context) (gast.Node, parser.State) {
	line, _ := reader.PeekLine()
	lineStr := strings.TrimSpace(string(line))

	if lineStr == "$$" {
		return NewMathBlock(), parser.NoChildren
	} else {
		return nil, parser.NoChildren
	}
}

func (s mathBlockParser) Continue(node gast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, _ := reader.PeekLine()
	lineStr := strings.TrimSpace(string(line))

	if lineStr == "$$" {
		reader.Advance(len(line))
		return parser.Close
	}

	node.(*MathBlockNode).Source += string(line)
	return parser.Continue | parser.NoChildren
}

func (s mathBlockParser) Close(node gast.Node, reader text.Reader, pc parser.Context) {}

func (s mathBlockParser) CanInterruptParagraph() bool {
	return true
}

func (s mathBlockParser) CanAcceptIndentedLine() bool {
	return false
}

// ----------------------
// AST node
// ----------------------

type MathBlockNode struct {
	gast.BaseBlock
	Source string
}

var _ gast.Node = &MathBlockNode{}

func (n *MathBlockNode) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, nil, nil)
}

var KindMathBlock = gast.NewNodeKind("MathBlock")

func (n *MathBlockNode) Kind() gast.NodeKind {
	return KindMathBlock
}

func NewMathBlock() *MathBlockNode {
	return &MathBlockNode{}
}

// ----------------------
// Renderer
// ----------------------

type MathBlockHTMLRenderer struct {
	html.Config
}

func NewMathBlockHTMLRenderer(opts ...html.Option) renderer.NodeRenderer {
	r := &MathBlockHTMLRenderer{
		Config: html.NewConfig(),
	}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

func (r *MathBlockHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathBlock, r.renderMathBlock)
}

func (r *MathBlockHTMLRenderer) renderMathBlock(w util.BufWriter, source []byte, n gast.Node, entering bool) (gast.WalkStatus, error) {
	if entering {
		// Typeset client-side; the delimiters are what the script looks for.
		w.WriteString(`<div class="math-display">`)
		w.WriteString("\\[\n")
		w.WriteString(gohtml.EscapeString(n.(*MathBlockNode).Source))
		w.WriteString("\\]")
		w.WriteString("</div>\n")
	}
	return gast.WalkSkipChildren, nil
}

// ----------------------
// Extension
// ----------------------

// Display equations written between lines containing only $$.
type MathExtension struct{}

func (e MathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(mathBlockParser{}, 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewMathBlockHTMLRenderer(), 500),
	))
}
