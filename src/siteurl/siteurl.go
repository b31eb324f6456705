/*
Package siteurl builds every URL the site links to and holds the route
regexes the website matches against. Each page has a RegexX / BuildX pair
next to each other in urls.go, so the two never drift apart.
*/
package siteurl

import (
	"net/url"
	"strings"

	"github.com/sciclub/clubsite/src/config"
)

const StaticPath = "/public"

var baseUrl = config.Config.BaseUrl

// Used by tests and by commands that print links for a different deployment.
func SetGlobalBaseUrl(u string) {
	baseUrl = strings.TrimSuffix(u, "/")
}

type Q struct {
	Name  string
	Value string
}

func Url(path string, query []Q) string {
	result := baseUrl + "/" + trim(path)
	if q := encodeQuery(query); q != "" {
		result += "?" + q
	}
	return result
}

func StaticUrl(path string, query []Q) string {
	return Url(StaticPath+"/"+trim(path), query)
}

func trim(path string) string {
	return strings.TrimPrefix(path, "/")
}

func encodeQuery(query []Q) string {
	result := url.Values{}
	for _, q := range query {
		if q.Value == "" {
			continue
		}
		result.Set(q.Name, q.Value)
	}
	return result.Encode()
}
