package parsing

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

// Renders article bodies, event descriptions and team bios. Raw HTML in the
// source is escaped, since editors are not trusted with arbitrary markup.
var ContentMarkdown = goldmark.New(
	goldmark.WithExtensions(makeGoldmarkExtensions()...),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// Used for generating plain-text summaries for cards and feeds.
var PlaintextMarkdown = goldmark.New(
	goldmark.WithExtensions(makeGoldmarkExtensions()...),
	goldmark.WithRenderer(plaintextRenderer{}),
)

func ParseMarkdown(source string, md goldmark.Markdown) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		panic(err)
	}

	return buf.String()
}

// Renders source as HTML for storage alongside the raw text.
func RenderContent(source string) string {
	return ParseMarkdown(source, ContentMarkdown)
}

/*
Produces a plain-text summary of at most maxRunes runes, cut at a word
boundary where possible and suffixed with an ellipsis when shortened.
*/
func Summarize(source string, maxRunes int) string {
	plain := strings.Join(strings.Fields(ParseMarkdown(source, PlaintextMarkdown)), " ")
	if utf8.RuneCountInString(plain) <= maxRunes {
		return plain
	}

	cut := []rune(plain)[:maxRunes]
	result := string(cut)
	if i := strings.LastIndexByte(result, ' '); i > len(result)/2 {
		result = result[:i]
	}
	return strings.TrimRight(result, " .,;:") + "…"
}

func makeGoldmarkExtensions() []goldmark.Extender {
	return []goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		extension.Typographer,
		highlightExtension,
		MathExtension{},
	}
}

var highlightExtension = highlighting.NewHighlighting(
	highlighting.WithFormatOptions(ClubChromaOptions...),
	highlighting.WithWrapperRenderer(func(w util.BufWriter, context highlighting.CodeBlockContext, entering bool) {
		if entering {
			w.WriteString(`<pre class="club-code">`)
		} else {
			w.WriteString(`</pre>`)
		}
	}),
)
