package siteurl

import (
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/slug"
)

var RegexHomepage = regexp.MustCompile("^/$")

func BuildHomepage() string {
	return Url("/", nil)
}

var RegexLogin = regexp.MustCompile("^/login$")

func BuildLogin() string {
	return Url("/login", nil)
}

// The user is sent back to redirect after logging in. Only paths on this
// site are kept, so the login form cannot be used as an open redirect.
func BuildLoginWithRedirect(redirect string) string {
	if len(redirect) == 0 || redirect[0] != '/' || (len(redirect) > 1 && redirect[1] == '/') {
		return BuildLogin()
	}
	return Url("/login", []Q{{Name: "redirect", Value: redirect}})
}

var RegexLogout = regexp.MustCompile("^/logout$")

func BuildLogout() string {
	return Url("/logout", nil)
}

/*
* Journal
 */

var RegexJournal = regexp.MustCompile(`^/journal(/(?P<page>\d+))?$`)

func BuildJournal() string {
	return Url("/journal", nil)
}

func BuildJournalWithPage(page int) string {
	if page < 1 {
		panic(oops.New(nil, "Invalid journal page (%d), must be >= 1", page))
	}
	if page == 1 {
		return BuildJournal()
	}
	return Url("/journal/"+strconv.Itoa(page), nil)
}

var RegexJournalFeed = regexp.MustCompile(`^/journal/feed$`)

func BuildJournalFeed() string {
	return Url("/journal/feed", nil)
}

// Accepts any single segment. Titles that normalize to nothing produce
// segments like "-3f2a9c1e", and stale title parts are redirected by the
// handler, so the regex does not try to validate the title part.
var RegexArticle = regexp.MustCompile(`^/article/(?P<slug>[^/]+)$`)

func BuildArticle(title string, id uuid.UUID) string {
	return Url(slug.ArticlePath(title, id.String()), nil)
}

/*
* Other public pages
 */

var RegexEvents = regexp.MustCompile("^/events$")

func BuildEvents() string {
	return Url("/events", nil)
}

var RegexPublications = regexp.MustCompile("^/publications$")

func BuildPublications() string {
	return Url("/publications", nil)
}

var RegexLibrary = regexp.MustCompile("^/library$")

func BuildLibrary() string {
	return Url("/library", nil)
}

func BuildLibraryCategory(category string) string {
	return Url("/library", []Q{{Name: "category", Value: category}})
}

var RegexTeam = regexp.MustCompile("^/team$")

func BuildTeam() string {
	return Url("/team", nil)
}

/*
* Admin
 */

var RegexAdmin = regexp.MustCompile("^/admin$")

func BuildAdmin() string {
	return Url("/admin", nil)
}

var RegexAdminUpload = regexp.MustCompile("^/admin/upload$")

func BuildAdminUpload() string {
	return Url("/admin/upload", nil)
}

var RegexAdminRoles = regexp.MustCompile("^/admin/roles$")

func BuildAdminRoles() string {
	return Url("/admin/roles", nil)
}

var RegexAdminRolesGrant = regexp.MustCompile("^/admin/roles/grant$")

func BuildAdminRolesGrant() string {
	return Url("/admin/roles/grant", nil)
}

var RegexAdminRolesRevoke = regexp.MustCompile("^/admin/roles/revoke$")

func BuildAdminRolesRevoke() string {
	return Url("/admin/roles/revoke", nil)
}

var RegexAdminPerf = regexp.MustCompile("^/admin/perf$")

func BuildAdminPerf() string {
	return Url("/admin/perf", nil)
}

var RegexAdminArticles = regexp.MustCompile("^/admin/articles$")

func BuildAdminArticles() string {
	return Url("/admin/articles", nil)
}

var RegexAdminArticleNew = regexp.MustCompile("^/admin/articles/new$")

func BuildAdminArticleNew() string {
	return Url("/admin/articles/new", nil)
}

var RegexAdminArticleEdit = regexp.MustCompile(`^/admin/articles/(?P<id>[0-9a-f-]{36})/edit$`)

func BuildAdminArticleEdit(id uuid.UUID) string {
	return Url("/admin/articles/"+id.String()+"/edit", nil)
}

var RegexAdminArticleDelete = regexp.MustCompile(`^/admin/articles/(?P<id>[0-9a-f-]{36})/delete$`)

func BuildAdminArticleDelete(id uuid.UUID) string {
	return Url("/admin/articles/"+id.String()+"/delete", nil)
}

var RegexAdminEvents = regexp.MustCompile("^/admin/events$")

func BuildAdminEvents() string {
	return Url("/admin/events", nil)
}

var RegexAdminEventNew = regexp.MustCompile("^/admin/events/new$")

func BuildAdminEventNew() string {
	return Url("/admin/events/new", nil)
}

var RegexAdminEventEdit = regexp.MustCompile(`^/admin/events/(?P<id>\d+)/edit$`)

func BuildAdminEventEdit(id int) string {
	return Url("/admin/events/"+strconv.Itoa(id)+"/edit", nil)
}

var RegexAdminEventDelete = regexp.MustCompile(`^/admin/events/(?P<id>\d+)/delete$`)

func BuildAdminEventDelete(id int) string {
	return Url("/admin/events/"+strconv.Itoa(id)+"/delete", nil)
}

var RegexAdminPublications = regexp.MustCompile("^/admin/publications$")

func BuildAdminPublications() string {
	return Url("/admin/publications", nil)
}

var RegexAdminPublicationNew = regexp.MustCompile("^/admin/publications/new$")

func BuildAdminPublicationNew() string {
	return Url("/admin/publications/new", nil)
}

var RegexAdminPublicationEdit = regexp.MustCompile(`^/admin/publications/(?P<id>\d+)/edit$`)

func BuildAdminPublicationEdit(id int) string {
	return Url("/admin/publications/"+strconv.Itoa(id)+"/edit", nil)
}

var RegexAdminPublicationDelete = regexp.MustCompile(`^/admin/publications/(?P<id>\d+)/delete$`)

func BuildAdminPublicationDelete(id int) string {
	return Url("/admin/publications/"+strconv.Itoa(id)+"/delete", nil)
}

var RegexAdminLibrary = regexp.MustCompile("^/admin/library$")

func BuildAdminLibrary() string {
	return Url("/admin/library", nil)
}

var RegexAdminLibraryNew = regexp.MustCompile("^/admin/library/new$")

func BuildAdminLibraryNew() string {
	return Url("/admin/library/new", nil)
}

var RegexAdminLibraryEdit = regexp.MustCompile(`^/admin/library/(?P<id>\d+)/edit$`)

func BuildAdminLibraryEdit(id int) string {
	return Url("/admin/library/"+strconv.Itoa(id)+"/edit", nil)
}

var RegexAdminLibraryDelete = regexp.MustCompile(`^/admin/library/(?P<id>\d+)/delete$`)

func BuildAdminLibraryDelete(id int) string {
	return Url("/admin/library/"+strconv.Itoa(id)+"/delete", nil)
}

var RegexAdminTeam = regexp.MustCompile("^/admin/team$")

func BuildAdminTeam() string {
	return Url("/admin/team", nil)
}

var RegexAdminTeamNew = regexp.MustCompile("^/admin/team/new$")

func BuildAdminTeamNew() string {
	return Url("/admin/team/new", nil)
}

var RegexAdminTeamEdit = regexp.MustCompile(`^/admin/team/(?P<id>\d+)/edit$`)

func BuildAdminTeamEdit(id int) string {
	return Url("/admin/team/"+strconv.Itoa(id)+"/edit", nil)
}

var RegexAdminTeamDelete = regexp.MustCompile(`^/admin/team/(?P<id>\d+)/delete$`)

func BuildAdminTeamDelete(id int) string {
	return Url("/admin/team/"+strconv.Itoa(id)+"/delete", nil)
}

/*
* Static files
 */

var RegexPublic = regexp.MustCompile("^" + StaticPath + "/.+$")

func BuildPublic(filepath string) string {
	if filepath == "" {
		panic(oops.New(nil, "Attempted to build a /public url with no path"))
	}
	return StaticUrl(filepath, nil)
}

var RegexFourOhFour = regexp.MustCompile("^.*$")
