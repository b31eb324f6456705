package website

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/clubdata"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/siteurl"
	"github.com/sciclub/clubsite/src/templates"
)

const (
	carouselSize       = 8
	landingNumArticles = 4
	landingNumEvents   = 3
)

type LandingTemplateData struct {
	templates.BaseData

	Carousel       []templates.CarouselItem
	LatestArticles []templates.Article
	UpcomingEvents []templates.Event

	JournalUrl string
	EventsUrl  string
}

func Index(c *RequestContext) ResponseData {
	now := time.Now()

	articles, err := clubdata.FetchArticles(c, c.Conn, clubdata.ArticlesQuery{Limit: carouselSize})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch articles for landing page"))
	}
	events, err := clubdata.FetchEvents(c, c.Conn)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch events for landing page"))
	}
	publications, err := clubdata.FetchPublications(c, c.Conn)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch publications for landing page"))
	}
	if len(publications) > carouselSize {
		publications = publications[:carouselSize]
	}

	upcoming, _ := clubdata.SplitEvents(events, now)
	carousel := clubdata.BuildCarousel(articles, events, publications, now, carouselSize)

	var coverIDs []*uuid.UUID
	for _, item := range carousel {
		coverIDs = append(coverIDs, item.CoverAssetID)
	}
	for _, article := range articles {
		coverIDs = append(coverIDs, article.CoverAssetID)
	}
	urls, err := fetchAssetUrls(c, coverIDs...)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	authors, err := fetchAuthors(c, articles)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	tmpl := LandingTemplateData{
		BaseData:   getBaseData(c, ""),
		JournalUrl: siteurl.BuildJournal(),
		EventsUrl:  siteurl.BuildEvents(),
	}
	for _, item := range carousel {
		tmpl.Carousel = append(tmpl.Carousel, templates.CarouselItemToTemplate(item, urls))
	}
	for i, article := range articles {
		if i >= landingNumArticles {
			break
		}
		tmpl.LatestArticles = append(tmpl.LatestArticles, templates.ArticleToTemplate(article, authorOf(authors, article), urls))
	}
	for i, event := range upcoming {
		if i >= landingNumEvents {
			break
		}
		tmpl.UpcomingEvents = append(tmpl.UpcomingEvents, templates.EventToTemplate(event, true, urls))
	}

	var res ResponseData
	res.MustWriteTemplate("landing.html", tmpl, c.Perf)
	return res
}

func fetchAssetUrls(c *RequestContext, ids ...*uuid.UUID) (templates.AssetUrls, error) {
	urls, err := clubdata.FetchAssetUrls(c, c.Conn, ids...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch asset urls")
	}
	return templates.AssetUrls(urls), nil
}

// Clubs have few enough accounts that loading them all is cheaper than a
// query per article.
func fetchAuthors(c *RequestContext, articles []*models.Article) (map[int]*models.User, error) {
	authors := make(map[int]*models.User)
	needed := false
	for _, article := range articles {
		if article.AuthorID != nil {
			needed = true
			break
		}
	}
	if !needed {
		return authors, nil
	}

	users, err := clubdata.FetchUsers(c, c.Conn)
	if err != nil {
		return nil, oops.New(err, "failed to fetch article authors")
	}
	for _, user := range users {
		authors[user.ID] = user
	}
	return authors, nil
}

func authorOf(authors map[int]*models.User, article *models.Article) *models.User {
	if article.AuthorID == nil {
		return nil
	}
	return authors[*article.AuthorID]
}
