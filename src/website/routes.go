package website

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sciclub/clubsite/src/perf"
	"github.com/sciclub/clubsite/src/siteurl"
)

func NewWebsiteRoutes(conn *pgxpool.Pool, perfCollector *perf.PerfCollector) http.Handler {
	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			setDBConn(conn),
			trackRequestPerf(perfCollector),
			logContextErrorsMiddleware,
			panicCatcherMiddleware,
		},
	}

	staticFiles := http.StripPrefix(siteurl.StaticPath, http.FileServer(http.Dir("public")))
	routes.GET(siteurl.RegexPublic, func(c *RequestContext) ResponseData {
		var res ResponseData
		staticFiles.ServeHTTP(&res, c.Req)
		return res
	})

	site := routes.WithMiddleware(
		storeNoticesInCookieMiddleware,
		loadCommonData,
	)

	site.GET(siteurl.RegexHomepage, Index)
	site.GET(siteurl.RegexJournalFeed, JournalFeed)
	site.GET(siteurl.RegexJournal, Journal)
	site.GET(siteurl.RegexArticle, Article)
	site.GET(siteurl.RegexEvents, Events)
	site.GET(siteurl.RegexPublications, Publications)
	site.GET(siteurl.RegexLibrary, Library)
	site.GET(siteurl.RegexTeam, Team)

	site.GET(siteurl.RegexLogin, LoginPage)
	site.POST(siteurl.RegexLogin, Login)
	site.POST(siteurl.RegexLogout, needsAuth(csrfMiddleware(Logout)))

	publishers := site.WithMiddleware(publishersOnly)
	publisherForms := publishers.WithMiddleware(csrfMiddleware)

	publishers.GET(siteurl.RegexAdmin, AdminDashboard)
	publisherForms.POST(siteurl.RegexAdminUpload, AssetUpload)

	publishers.GET(siteurl.RegexAdminArticles, AdminArticles)
	publishers.GET(siteurl.RegexAdminArticleNew, AdminArticleNew)
	publisherForms.POST(siteurl.RegexAdminArticleNew, AdminArticleNewSubmit)
	publishers.GET(siteurl.RegexAdminArticleEdit, AdminArticleEdit)
	publisherForms.POST(siteurl.RegexAdminArticleEdit, AdminArticleEditSubmit)
	publishers.GET(siteurl.RegexAdminArticleDelete, AdminArticleDelete)
	publisherForms.POST(siteurl.RegexAdminArticleDelete, AdminArticleDeleteSubmit)

	publishers.GET(siteurl.RegexAdminEvents, AdminEvents)
	publishers.GET(siteurl.RegexAdminEventNew, AdminEventNew)
	publisherForms.POST(siteurl.RegexAdminEventNew, AdminEventNewSubmit)
	publishers.GET(siteurl.RegexAdminEventEdit, AdminEventEdit)
	publisherForms.POST(siteurl.RegexAdminEventEdit, AdminEventEditSubmit)
	publishers.GET(siteurl.RegexAdminEventDelete, AdminEventDelete)
	publisherForms.POST(siteurl.RegexAdminEventDelete, AdminEventDeleteSubmit)

	publishers.GET(siteurl.RegexAdminPublications, AdminPublications)
	publishers.GET(siteurl.RegexAdminPublicationNew, AdminPublicationNew)
	publisherForms.POST(siteurl.RegexAdminPublicationNew, AdminPublicationNewSubmit)
	publishers.GET(siteurl.RegexAdminPublicationEdit, AdminPublicationEdit)
	publisherForms.POST(siteurl.RegexAdminPublicationEdit, AdminPublicationEditSubmit)
	publishers.GET(siteurl.RegexAdminPublicationDelete, AdminPublicationDelete)
	publisherForms.POST(siteurl.RegexAdminPublicationDelete, AdminPublicationDeleteSubmit)

	publishers.GET(siteurl.RegexAdminLibrary, AdminLibrary)
	publishers.GET(siteurl.RegexAdminLibraryNew, AdminLibraryNew)
	publisherForms.POST(siteurl.RegexAdminLibraryNew, AdminLibraryNewSubmit)
	publishers.GET(siteurl.RegexAdminLibraryEdit, AdminLibraryEdit)
	publisherForms.POST(siteurl.RegexAdminLibraryEdit, AdminLibraryEditSubmit)
	publishers.GET(siteurl.RegexAdminLibraryDelete, AdminLibraryDelete)
	publisherForms.POST(siteurl.RegexAdminLibraryDelete, AdminLibraryDeleteSubmit)

	publishers.GET(siteurl.RegexAdminTeam, AdminTeam)
	publishers.GET(siteurl.RegexAdminTeamNew, AdminTeamNew)
	publisherForms.POST(siteurl.RegexAdminTeamNew, AdminTeamNewSubmit)
	publishers.GET(siteurl.RegexAdminTeamEdit, AdminTeamEdit)
	publisherForms.POST(siteurl.RegexAdminTeamEdit, AdminTeamEditSubmit)
	publishers.GET(siteurl.RegexAdminTeamDelete, AdminTeamDelete)
	publisherForms.POST(siteurl.RegexAdminTeamDelete, AdminTeamDeleteSubmit)

	admins := site.WithMiddleware(adminsOnly)
	adminForms := admins.WithMiddleware(csrfMiddleware)

	admins.GET(siteurl.RegexAdminRoles, AdminRoles)
	adminForms.POST(siteurl.RegexAdminRolesGrant, AdminRolesGrant)
	adminForms.POST(siteurl.RegexAdminRolesRevoke, AdminRolesRevoke)
	admins.GET(siteurl.RegexAdminPerf, Perfmon)

	site.AnyMethod(siteurl.RegexFourOhFour, FourOhFour)

	return router
}

func setDBConn(conn *pgxpool.Pool) Middleware {
	return func(h Handler) Handler {
		return func(c *RequestContext) ResponseData {
			c.Conn = conn
			return h(c)
		}
	}
}
