package website

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/sciclub/clubsite/src/assets"
	"github.com/sciclub/clubsite/src/clubdata"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/siteurl"
	"github.com/sciclub/clubsite/src/templates"
)

// How many recent uploads the asset pickers and the dashboard offer.
const recentAssetsLimit = 50

type AdminDashboardData struct {
	templates.BaseData

	ArticlesUrl     string
	EventsUrl       string
	PublicationsUrl string
	LibraryUrl      string
	TeamUrl         string
	PerfUrl         string
	UploadUrl       string

	NumArticles         int
	NumEvents           int
	NumPublications     int
	NumLibraryResources int
	NumTeamMembers      int

	RecentAssets []templates.Asset
}

func AdminDashboard(c *RequestContext) ResponseData {
	numArticles, err := clubdata.CountArticles(c, c.Conn, clubdata.ArticlesQuery{IncludeUnpublished: true})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	events, err := clubdata.FetchEvents(c, c.Conn)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	publications, err := clubdata.FetchPublications(c, c.Conn)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	resources, err := clubdata.FetchLibraryResources(c, c.Conn, clubdata.LibraryQuery{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	members, err := clubdata.FetchTeamMembers(c, c.Conn, clubdata.TeamQuery{IncludeInactive: true})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	recentAssets, err := fetchAssetChoices(c)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.MustWriteTemplate("admin_dashboard.html", AdminDashboardData{
		BaseData: getBaseData(c, "Admin"),

		ArticlesUrl:     siteurl.BuildAdminArticles(),
		EventsUrl:       siteurl.BuildAdminEvents(),
		PublicationsUrl: siteurl.BuildAdminPublications(),
		LibraryUrl:      siteurl.BuildAdminLibrary(),
		TeamUrl:         siteurl.BuildAdminTeam(),
		PerfUrl:         siteurl.BuildAdminPerf(),
		UploadUrl:       siteurl.BuildAdminUpload(),

		NumArticles:         numArticles,
		NumEvents:           len(events),
		NumPublications:     len(publications),
		NumLibraryResources: len(resources),
		NumTeamMembers:      len(members),

		RecentAssets: recentAssets,
	}, c.Perf)
	return res
}

func fetchAssetChoices(c *RequestContext) ([]templates.Asset, error) {
	recent, err := clubdata.FetchRecentAssets(c, c.Conn, recentAssetsLimit)
	if err != nil {
		return nil, oops.New(err, "failed to fetch recent assets")
	}
	result := make([]templates.Asset, 0, len(recent))
	for _, asset := range recent {
		result = append(result, templates.AssetToTemplate(asset, assets.PublicURL(asset.S3Key)))
	}
	return result, nil
}

type AdminListData struct {
	templates.BaseData

	NewUrl string

	Articles     []templates.Article
	Events       []templates.Event
	Publications []templates.Publication
	Resources    []templates.LibraryResource
	Members      []templates.TeamMember
}

// Shared by the new and edit pages of every content type. Form holds the
// submitted (or stored) values as strings so invalid input can be shown back
// to the user unchanged.
type AdminEditData[F any] struct {
	templates.BaseData

	IsNew     bool
	Errors    []string
	SubmitUrl string
	CancelUrl string
	Assets    []templates.Asset

	// Only used by the library form, for category suggestions.
	Categories []string

	Form F
}

func newAdminEditData[F any](c *RequestContext, title string, isNew bool, submitUrl, cancelUrl string, form F) (AdminEditData[F], error) {
	choices, err := fetchAssetChoices(c)
	if err != nil {
		return AdminEditData[F]{}, err
	}
	return AdminEditData[F]{
		BaseData:  getBaseData(c, title),
		IsNew:     isNew,
		SubmitUrl: submitUrl,
		CancelUrl: cancelUrl,
		Assets:    choices,
		Form:      form,
	}, nil
}

func renderAdminEdit[F any](c *RequestContext, templateName string, data AdminEditData[F]) ResponseData {
	var res ResponseData
	if len(data.Errors) > 0 {
		res.StatusCode = http.StatusUnprocessableEntity
	}
	res.MustWriteTemplate(templateName, data, c.Perf)
	return res
}

type AdminDeleteData struct {
	templates.BaseData

	ItemKind  string
	ItemTitle string
	SubmitUrl string
	CancelUrl string
}

func renderAdminDelete(c *RequestContext, kind, title, submitUrl, cancelUrl string) ResponseData {
	var res ResponseData
	res.MustWriteTemplate("admin_delete.html", AdminDeleteData{
		BaseData:  getBaseData(c, "Delete "+kind),
		ItemKind:  kind,
		ItemTitle: title,
		SubmitUrl: submitUrl,
		CancelUrl: cancelUrl,
	}, c.Perf)
	return res
}

// Loads the item named by the "id" path param. The returned response is set
// when the item could not be loaded and should be served as is.
func fetchFromPath[T any](
	c *RequestContext,
	fetch func(ctx context.Context, dbConn db.ConnOrTx, id int) (*T, error),
) (*T, *ResponseData) {
	id, err := strconv.Atoi(c.PathParams["id"])
	if err != nil {
		res := FourOhFour(c)
		return nil, &res
	}
	item, err := fetch(c, c.Conn, id)
	if err != nil {
		var res ResponseData
		if errors.Is(err, db.NotFound) {
			res = FourOhFour(c)
		} else {
			res = c.ErrorResponse(http.StatusInternalServerError, err)
		}
		return nil, &res
	}
	return item, nil
}
