package clubdata

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/parsing"
	"github.com/sciclub/clubsite/src/siteurl"
)

type CarouselKind string

const (
	CarouselArticle     CarouselKind = "article"
	CarouselEvent       CarouselKind = "event"
	CarouselPublication CarouselKind = "publication"
)

const carouselSummaryLength = 160

type CarouselItem struct {
	Kind         CarouselKind
	Title        string
	Summary      string
	Url          string
	Date         time.Time
	Upcoming     bool
	CoverAssetID *uuid.UUID
}

/*
Merges articles, events and publications into one list for the homepage,
newest date first, keeping at most limit items (all of them if limit <= 0).
Articles are dated by publication, events by their start (so upcoming events
sort ahead of everything already published) and publications by their
publication date. Items with equal dates keep the order articles, events,
publications.
*/
func BuildCarousel(
	articles []*models.Article,
	events []*models.Event,
	publications []*models.Publication,
	now time.Time,
	limit int,
) []CarouselItem {
	items := make([]CarouselItem, 0, len(articles)+len(events)+len(publications))

	for _, article := range articles {
		items = append(items, CarouselItem{
			Kind:         CarouselArticle,
			Title:        article.Title,
			Summary:      article.Summary,
			Url:          siteurl.BuildArticle(article.Title, article.ID),
			Date:         article.DisplayDate(),
			CoverAssetID: article.CoverAssetID,
		})
	}
	for _, event := range events {
		items = append(items, CarouselItem{
			Kind:         CarouselEvent,
			Title:        event.Title,
			Summary:      parsing.Summarize(event.DescriptionRaw, carouselSummaryLength),
			Url:          siteurl.BuildEvents(),
			Date:         event.StartsAt,
			Upcoming:     event.IsUpcoming(now),
			CoverAssetID: event.CoverAssetID,
		})
	}
	for _, pub := range publications {
		url := pub.Url
		if url == "" {
			url = siteurl.BuildPublications()
		}
		items = append(items, CarouselItem{
			Kind:         CarouselPublication,
			Title:        pub.Title,
			Summary:      parsing.Summarize(pub.Abstract, carouselSummaryLength),
			Url:          url,
			Date:         pub.PublishedOn,
			CoverAssetID: pub.CoverAssetID,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
