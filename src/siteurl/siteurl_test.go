package siteurl

import (
	"net/url"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/config"
	"github.com/stretchr/testify/assert"
)

func TestUrl(t *testing.T) {
	defer SetGlobalBaseUrl(config.Config.BaseUrl)
	SetGlobalBaseUrl("http://club.test/")

	t.Run("no query", func(t *testing.T) {
		assert.Equal(t, "http://club.test/test/foo", Url("/test/foo", nil))
	})
	t.Run("yes query", func(t *testing.T) {
		result := Url("/test/foo", []Q{{"bar", "baz"}, {"zig??", "zig & zag!!"}})
		assert.Equal(t, "http://club.test/test/foo?bar=baz&zig%3F%3F=zig+%26+zag%21%21", result)
	})
	t.Run("empty values are dropped", func(t *testing.T) {
		assert.Equal(t, "http://club.test/library", BuildLibraryCategory(""))
		assert.Equal(t, "http://club.test/library?category=datasets", BuildLibraryCategory("datasets"))
	})
}

func TestPublicPages(t *testing.T) {
	AssertRegexMatch(t, BuildHomepage(), RegexHomepage, nil)
	AssertRegexMatch(t, BuildLogin(), RegexLogin, nil)
	AssertRegexMatch(t, BuildLogout(), RegexLogout, nil)
	AssertRegexMatch(t, BuildEvents(), RegexEvents, nil)
	AssertRegexMatch(t, BuildPublications(), RegexPublications, nil)
	AssertRegexMatch(t, BuildLibrary(), RegexLibrary, nil)
	AssertRegexMatch(t, BuildTeam(), RegexTeam, nil)
}

func TestLoginRedirect(t *testing.T) {
	AssertRegexMatch(t, BuildLoginWithRedirect("/admin"), RegexLogin, nil)
	parsed, err := url.Parse(BuildLoginWithRedirect("/admin/articles"))
	if assert.Nil(t, err) {
		assert.Equal(t, "/admin/articles", parsed.Query().Get("redirect"))
	}
	assert.Equal(t, BuildLogin(), BuildLoginWithRedirect("https://evil.example"))
	assert.Equal(t, BuildLogin(), BuildLoginWithRedirect("//evil.example"))
	assert.Equal(t, BuildLogin(), BuildLoginWithRedirect(""))
}

func TestJournal(t *testing.T) {
	AssertRegexMatch(t, BuildJournal(), RegexJournal, nil)
	assert.Equal(t, BuildJournal(), BuildJournalWithPage(1))
	AssertRegexMatch(t, BuildJournalWithPage(3), RegexJournal, map[string]string{"page": "3"})
	AssertRegexMatch(t, BuildJournalFeed(), RegexJournalFeed, nil)
	AssertNoMatch(t, BuildJournalFeed(), RegexJournal)
	assert.Panics(t, func() { BuildJournalWithPage(0) })
}

func TestArticle(t *testing.T) {
	id := uuid.MustParse("3f2a9c1e-77b0-4d4e-9a51-0c8f0e6b2d11")
	AssertRegexMatch(t, BuildArticle("Orbital Mechanics", id), RegexArticle, map[string]string{"slug": "orbital-mechanics-3f2a9c1e"})
	AssertRegexMatch(t, BuildArticle("🔭", id), RegexArticle, map[string]string{"slug": "-3f2a9c1e"})
	AssertNoMatch(t, "/article/a/b", RegexArticle)
	AssertNoMatch(t, "/article/", RegexArticle)
}

func TestAdmin(t *testing.T) {
	id := uuid.MustParse("3f2a9c1e-77b0-4d4e-9a51-0c8f0e6b2d11")

	AssertRegexMatch(t, BuildAdmin(), RegexAdmin, nil)
	AssertRegexMatch(t, BuildAdminUpload(), RegexAdminUpload, nil)
	AssertRegexMatch(t, BuildAdminRoles(), RegexAdminRoles, nil)
	AssertRegexMatch(t, BuildAdminRolesGrant(), RegexAdminRolesGrant, nil)
	AssertRegexMatch(t, BuildAdminRolesRevoke(), RegexAdminRolesRevoke, nil)
	AssertRegexMatch(t, BuildAdminPerf(), RegexAdminPerf, nil)

	AssertRegexMatch(t, BuildAdminArticles(), RegexAdminArticles, nil)
	AssertRegexMatch(t, BuildAdminArticleNew(), RegexAdminArticleNew, nil)
	AssertRegexMatch(t, BuildAdminArticleEdit(id), RegexAdminArticleEdit, map[string]string{"id": id.String()})
	AssertRegexMatch(t, BuildAdminArticleDelete(id), RegexAdminArticleDelete, map[string]string{"id": id.String()})
	AssertNoMatch(t, "/admin/articles/new/edit", RegexAdminArticleEdit)

	AssertRegexMatch(t, BuildAdminEvents(), RegexAdminEvents, nil)
	AssertRegexMatch(t, BuildAdminEventNew(), RegexAdminEventNew, nil)
	AssertRegexMatch(t, BuildAdminEventEdit(12), RegexAdminEventEdit, map[string]string{"id": "12"})
	AssertRegexMatch(t, BuildAdminEventDelete(12), RegexAdminEventDelete, map[string]string{"id": "12"})

	AssertRegexMatch(t, BuildAdminPublications(), RegexAdminPublications, nil)
	AssertRegexMatch(t, BuildAdminPublicationNew(), RegexAdminPublicationNew, nil)
	AssertRegexMatch(t, BuildAdminPublicationEdit(4), RegexAdminPublicationEdit, map[string]string{"id": "4"})
	AssertRegexMatch(t, BuildAdminPublicationDelete(4), RegexAdminPublicationDelete, map[string]string{"id": "4"})

	AssertRegexMatch(t, BuildAdminLibrary(), RegexAdminLibrary, nil)
	AssertRegexMatch(t, BuildAdminLibraryNew(), RegexAdminLibraryNew, nil)
	AssertRegexMatch(t, BuildAdminLibraryEdit(9), RegexAdminLibraryEdit, map[string]string{"id": "9"})
	AssertRegexMatch(t, BuildAdminLibraryDelete(9), RegexAdminLibraryDelete, map[string]string{"id": "9"})

	AssertRegexMatch(t, BuildAdminTeam(), RegexAdminTeam, nil)
	AssertRegexMatch(t, BuildAdminTeamNew(), RegexAdminTeamNew, nil)
	AssertRegexMatch(t, BuildAdminTeamEdit(2), RegexAdminTeamEdit, map[string]string{"id": "2"})
	AssertRegexMatch(t, BuildAdminTeamDelete(2), RegexAdminTeamDelete, map[string]string{"id": "2"})
}

func TestPublic(t *testing.T) {
	AssertRegexMatch(t, BuildPublic("style.css"), RegexPublic, nil)
	AssertRegexMatch(t, BuildPublic("/img/logo.svg"), RegexPublic, nil)
	assert.Panics(t, func() { BuildPublic("") })
	AssertNoMatch(t, "/public/", RegexPublic)
}

func AssertRegexMatch(t *testing.T, fullUrl string, regex *regexp.Regexp, paramsToVerify map[string]string) {
	t.Helper()

	parsed, err := url.Parse(fullUrl)
	if !assert.Nilf(t, err, "Full url could not be parsed: %s", fullUrl) {
		return
	}

	requestPath := parsed.Path
	if len(requestPath) == 0 {
		requestPath = "/"
	}
	match := regex.FindStringSubmatch(requestPath)
	if !assert.NotNilf(t, match, "Url did not match regex: [%s] vs [%s]", requestPath, regex.String()) {
		return
	}

	subexpNames := regex.SubexpNames()
	for paramName, expectedValue := range paramsToVerify {
		idx := regex.SubexpIndex(paramName)
		if !assert.Truef(t, idx >= 0 && idx < len(subexpNames), "Expected match group [%s] not found", paramName) {
			continue
		}
		assert.Equalf(t, expectedValue, match[idx], "Param mismatch for [%s]", paramName)
	}
}

func AssertNoMatch(t *testing.T, fullUrl string, regex *regexp.Regexp) {
	t.Helper()

	parsed, err := url.Parse(fullUrl)
	if !assert.Nil(t, err) {
		return
	}
	assert.Nilf(t, regex.FindStringSubmatch(parsed.Path), "Url unexpectedly matched regex: [%s] vs [%s]", parsed.Path, regex.String())
}
