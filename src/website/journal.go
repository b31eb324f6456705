package website

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/clubdata"
	"github.com/sciclub/clubsite/src/config"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/siteurl"
	"github.com/sciclub/clubsite/src/slug"
	"github.com/sciclub/clubsite/src/templates"
)

const articlesPerPage = 10

const feedSize = 20

type JournalTemplateData struct {
	templates.BaseData

	Articles   []templates.Article
	Pagination templates.Pagination
}

func Journal(c *RequestContext) ResponseData {
	q := clubdata.ArticlesQuery{}

	numArticles, err := clubdata.CountArticles(c, c.Conn, q)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	page, numPages, ok := getPageInfo(c.PathParams["page"], numArticles, articlesPerPage)
	if !ok {
		return c.Redirect(siteurl.BuildJournal(), http.StatusSeeOther)
	}

	q.Limit = articlesPerPage
	q.Offset = (page - 1) * articlesPerPage
	articles, err := clubdata.FetchArticles(c, c.Conn, q)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var coverIDs []*uuid.UUID
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

	tmpl := JournalTemplateData{
		BaseData:   getBaseData(c, "Journal"),
		Pagination: makePagination(page, numPages, siteurl.BuildJournalWithPage),
	}
	for _, article := range articles {
		tmpl.Articles = append(tmpl.Articles, templates.ArticleToTemplate(article, authorOf(authors, article), urls))
	}

	var res ResponseData
	res.MustWriteTemplate("journal.html", tmpl, c.Perf)
	return res
}

type ArticleTemplateData struct {
	templates.BaseData

	Article templates.Article
}

/*
Serves /article/<slug>. Only the short id at the end of the segment is used
to find the article; if the rest of the segment does not match the current
title, the visitor is sent to the canonical URL. Drafts are only visible to
people who can publish.
*/
func Article(c *RequestContext) ResponseData {
	segment := c.PathParams["slug"]
	shortID := slug.ExtractShortID(segment)

	article, err := lookupArticleByShortID(c, c.Conn, shortID, c.CurrentRole.CanPublish())
	if err != nil {
		switch {
		case errors.Is(err, db.NotFound), errors.Is(err, clubdata.ErrInvalidShortID):
			return FourOhFour(c)
		case errors.Is(err, clubdata.ErrAmbiguousShortID):
			c.Logger.Warn().Str("shortID", shortID).Msg("short id matches more than one article")
			return FourOhFour(c)
		default:
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
	}

	if !slug.IsCanonical(segment, article.Title, article.ID.String()) {
		return c.Redirect(siteurl.BuildArticle(article.Title, article.ID), http.StatusMovedPermanently)
	}

	urls, err := fetchAssetUrls(c, article.CoverAssetID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	var author *models.User
	if article.AuthorID != nil {
		author, err = clubdata.FetchUser(c, c.Conn, *article.AuthorID)
		if err != nil && !errors.Is(err, db.NotFound) {
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
	}

	tmplArticle := templates.ArticleToTemplate(article, author, urls)
	baseData := getBaseData(c, article.Title)
	baseData.CanonicalLink = tmplArticle.Url
	baseData.OpenGraphItems = append(baseData.OpenGraphItems,
		templates.OpenGraphItem{Property: "og:description", Value: article.Summary},
	)
	if tmplArticle.CoverUrl != "" {
		baseData.OpenGraphItems = append(baseData.OpenGraphItems,
			templates.OpenGraphItem{Property: "og:image", Value: tmplArticle.CoverUrl},
		)
	}

	var res ResponseData
	res.MustWriteTemplate("article.html", ArticleTemplateData{
		BaseData: baseData,
		Article:  tmplArticle,
	}, c.Perf)
	return res
}

type JournalFeedData struct {
	ClubName   string
	FeedUrl    string
	JournalUrl string
	FeedID     string
	Updated    time.Time
	Articles   []templates.Article
}

func JournalFeed(c *RequestContext) ResponseData {
	articles, err := clubdata.FetchArticles(c, c.Conn, clubdata.ArticlesQuery{Limit: feedSize})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch feed articles"))
	}
	authors, err := fetchAuthors(c, articles)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	feedUrl := siteurl.BuildJournalFeed()
	feed := JournalFeedData{
		ClubName:   config.Config.ClubName,
		FeedUrl:    feedUrl,
		JournalUrl: siteurl.BuildJournal(),
		FeedID:     uuid.NewSHA1(uuid.NameSpaceURL, []byte(feedUrl)).URN(),
	}
	for _, article := range articles {
		tmplArticle := templates.ArticleToTemplate(article, authorOf(authors, article), nil)
		if tmplArticle.UpdatedAt.After(feed.Updated) {
			feed.Updated = tmplArticle.UpdatedAt
		}
		feed.Articles = append(feed.Articles, tmplArticle)
	}
	if feed.Updated.IsZero() {
		feed.Updated = time.Now()
	}

	var res ResponseData
	res.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	res.MustWriteTemplate("journal_feed.xml", feed, c.Perf)
	return res
}
