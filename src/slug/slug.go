/*
Package slug builds and parses the human-readable path segments used for
journal articles. A segment is the normalized title, a hyphen, and a short id
taken from the article's uuid:

	/article/orbital-mechanics-for-beginners-3f2a9c1e

Only the short id carries meaning. The title part exists for readers and
search engines and is ignored when resolving a segment back to an article.
*/
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxTitleLength = 80
	ShortIDLength  = 8
	ArticlePrefix  = "/article/"
)

// Decomposes characters and drops the combining marks, so "é" becomes "e".
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

/*
Converts a title to a URL-safe token sequence matching
^[a-z0-9]+(-[a-z0-9]+)*$, at most MaxTitleLength characters long. Returns the
empty string when nothing in the title survives filtering.
*/
func Normalize(title string) string {
	folded, _, _ := transform.String(foldAccents, strings.ToLower(title))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range folded {
		switch {
		case 'a' <= r && r <= 'z', '0' <= r && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '-' || isSeparatorSpace(r):
			pendingHyphen = true
		}
	}

	result := b.String()
	if len(result) > MaxTitleLength {
		result = strings.TrimRight(result[:MaxTitleLength], "-")
	}
	return result
}

// The whitespace set of JavaScript's \s: ASCII whitespace, the Unicode Zs
// spaces, the line and paragraph separators, and the BOM. Unlike
// unicode.IsSpace it includes U+FEFF and leaves out U+0085.
var separatorSpace = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0009, Hi: 0x000d, Stride: 1},
		{Lo: 0x0020, Hi: 0x0020, Stride: 1},
		{Lo: 0x00a0, Hi: 0x00a0, Stride: 1},
		{Lo: 0x1680, Hi: 0x1680, Stride: 1},
		{Lo: 0x2000, Hi: 0x200a, Stride: 1},
		{Lo: 0x2028, Hi: 0x2029, Stride: 1},
		{Lo: 0x202f, Hi: 0x202f, Stride: 1},
		{Lo: 0x205f, Hi: 0x205f, Stride: 1},
		{Lo: 0x3000, Hi: 0x3000, Stride: 1},
		{Lo: 0xfeff, Hi: 0xfeff, Stride: 1},
	},
	LatinOffset: 3,
}

func isSeparatorSpace(r rune) bool {
	return unicode.Is(separatorSpace, r)
}

// The first ShortIDLength characters of id with every hyphen removed. Shorter
// ids are returned whole.
func ShortID(id string) string {
	stripped := []rune(strings.ReplaceAll(id, "-", ""))
	if len(stripped) > ShortIDLength {
		stripped = stripped[:ShortIDLength]
	}
	return string(stripped)
}

// The path segment for an article: "<normalized title>-<short id>". A title
// that normalizes to nothing yields "-<short id>".
func Segment(title, id string) string {
	return Normalize(title) + "-" + ShortID(id)
}

// The full path of an article page, e.g. /article/dark-matter-101-5b1e0f3a.
func ArticlePath(title, id string) string {
	return ArticlePrefix + Segment(title, id)
}

/*
Returns the short id at the end of a segment: everything after the last
hyphen, or the whole segment if it has none. The last hyphen is used because
the title part is itself hyphenated, while short ids never contain one.
*/
func ExtractShortID(segment string) string {
	i := strings.LastIndexByte(segment, '-')
	if i < 0 {
		return segment
	}
	return segment[i+1:]
}

// Reports whether segment is exactly what Segment would produce for title and
// id. Used to redirect stale links after a title change.
func IsCanonical(segment, title, id string) bool {
	return segment == Segment(title, id)
}
