package parsing

import (
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"
)

var reURL = xurls.Strict()

var reDOI = regexp.MustCompile(`(?i)\b(?:doi:\s*)?(10\.\d{4,9}/[-._;()/:a-z0-9]+[a-z0-9/])`)

// Finds the links in a citation or abstract: explicit URLs plus bare DOIs,
// which are turned into https://doi.org/ links. Duplicates are removed and
// order of first appearance is kept.
func ExtractLinks(text string) []string {
	var links []string
	seen := map[string]bool{}
	add := func(link string) {
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	}

	for _, u := range reURL.FindAllString(text, -1) {
		add(u)
	}

	// DOIs already inside a URL were picked up above.
	withoutURLs := reURL.ReplaceAllString(text, " ")
	for _, m := range reDOI.FindAllStringSubmatch(withoutURLs, -1) {
		add("https://doi.org/" + strings.ToLower(m[1]))
	}

	return links
}
