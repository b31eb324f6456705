package clubdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/siteurl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	siteurl.SetGlobalBaseUrl("https://club.test")
}

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return now.AddDate(0, 0, offset)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestSplitEvents(t *testing.T) {
	pastLong := &models.Event{ID: 1, Title: "Old lecture", StartsAt: day(-30)}
	pastRecent := &models.Event{ID: 2, Title: "Last week", StartsAt: day(-7)}
	ongoing := &models.Event{ID: 3, Title: "Week-long workshop", StartsAt: day(-2), EndsAt: timePtr(day(3))}
	soon := &models.Event{ID: 4, Title: "Tomorrow", StartsAt: day(1)}
	later := &models.Event{ID: 5, Title: "Next month", StartsAt: day(30)}
	endsNow := &models.Event{ID: 6, Title: "Ends right now", StartsAt: day(-1), EndsAt: timePtr(now)}

	input := []*models.Event{later, pastLong, soon, endsNow, pastRecent, ongoing}
	upcoming, past := SplitEvents(input, now)

	assert.Equal(t, []*models.Event{ongoing, endsNow, soon, later}, upcoming)
	assert.Equal(t, []*models.Event{pastRecent, pastLong}, past)

	t.Run("input untouched", func(t *testing.T) {
		assert.Equal(t, []*models.Event{later, pastLong, soon, endsNow, pastRecent, ongoing}, input)
	})
	t.Run("empty", func(t *testing.T) {
		upcoming, past := SplitEvents(nil, now)
		assert.Empty(t, upcoming)
		assert.Empty(t, past)
	})
}

func TestBuildCarousel(t *testing.T) {
	articleID := uuid.MustParse("5b1e0f3a-1111-4222-8333-444455556666")
	articles := []*models.Article{
		{ID: articleID, Title: "Dark Matter 101", Summary: "An intro.", Published: true, PublishedAt: timePtr(day(-3)), CreatedAt: day(-10)},
	}
	events := []*models.Event{
		{ID: 1, Title: "Star party", DescriptionRaw: "Bring a **telescope**.", StartsAt: day(5)},
		{ID: 2, Title: "Old talk", StartsAt: day(-20)},
	}
	pubs := []*models.Publication{
		{ID: 1, Title: "On Neutrinos", Abstract: "We measure things.", PublishedOn: day(-3), Url: "https://doi.org/10.1000/xyz"},
		{ID: 2, Title: "Unlinked", PublishedOn: day(-40)},
	}

	items := BuildCarousel(articles, events, pubs, now, 0)
	require.Len(t, items, 5)

	assert.Equal(t, CarouselEvent, items[0].Kind)
	assert.Equal(t, "Star party", items[0].Title)
	assert.True(t, items[0].Upcoming)
	assert.Equal(t, "Bring a telescope.", items[0].Summary)
	assert.Equal(t, "https://club.test/events", items[0].Url)

	// Same date: articles come before publications.
	assert.Equal(t, CarouselArticle, items[1].Kind)
	assert.Equal(t, "https://club.test/article/dark-matter-101-5b1e0f3a", items[1].Url)
	assert.Equal(t, CarouselPublication, items[2].Kind)
	assert.Equal(t, "https://doi.org/10.1000/xyz", items[2].Url)

	assert.Equal(t, "Old talk", items[3].Title)
	assert.False(t, items[3].Upcoming)
	assert.Equal(t, "https://club.test/publications", items[4].Url)

	t.Run("limit", func(t *testing.T) {
		items := BuildCarousel(articles, events, pubs, now, 2)
		require.Len(t, items, 2)
		assert.Equal(t, "Star party", items[0].Title)
		assert.Equal(t, "Dark Matter 101", items[1].Title)
	})
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, BuildCarousel(nil, nil, nil, now, 10))
	})
}

func TestValidShortID(t *testing.T) {
	assert.True(t, ValidShortID("5b1e0f3a"))
	assert.True(t, ValidShortID("5"))
	assert.True(t, ValidShortID("5b1e0f3a11114222833344445555666"+"6"))
	assert.False(t, ValidShortID(""))
	assert.False(t, ValidShortID("5B1E0F3A"))
	assert.False(t, ValidShortID("5b1e-0f3a"))
	assert.False(t, ValidShortID("zzzzzzzz"))
	assert.False(t, ValidShortID("5b1e%"))
	assert.False(t, ValidShortID("5b1e0f3a111142228333444455556666a"))
}

func TestFetchArticleByShortIDRejectsInvalid(t *testing.T) {
	// Rejected before any query runs, so no connection is needed.
	_, err := FetchArticleByShortID(context.Background(), nil, "not-hex", true)
	assert.True(t, errors.Is(err, ErrInvalidShortID))
}

func TestPickShortIDMatch(t *testing.T) {
	first := &models.Article{ID: uuid.MustParse("5b1e0f3a-1111-4222-8333-444455556666"), Title: "Dark matter"}
	second := &models.Article{ID: uuid.MustParse("5b1e0f3a-9999-4222-8333-444455556666"), Title: "Dark energy"}

	t.Run("no match", func(t *testing.T) {
		article, err := pickShortIDMatch(nil, "5b1e0f3a")
		assert.Nil(t, article)
		assert.ErrorIs(t, err, db.NotFound)
	})
	t.Run("one match", func(t *testing.T) {
		article, err := pickShortIDMatch([]*models.Article{first}, "5b1e0f3a")
		require.Nil(t, err)
		assert.Same(t, first, article)
	})
	t.Run("two matches", func(t *testing.T) {
		article, err := pickShortIDMatch([]*models.Article{first, second}, "5b1e0f3a")
		assert.Nil(t, article)
		assert.ErrorIs(t, err, ErrAmbiguousShortID)
		assert.False(t, errors.Is(err, db.NotFound))
	})
}

func TestArticleSummary(t *testing.T) {
	assert.Equal(t, "Given", articleSummary(ArticleInput{Summary: "Given", BodyRaw: "Body"}))
	assert.Equal(t, "Some body text.", articleSummary(ArticleInput{BodyRaw: "Some *body* text."}))
}
