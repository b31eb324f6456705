package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestArticlePath(t *testing.T) {
	a := Article{
		ID:    uuid.MustParse("9c4e21d0-5f7a-4b8e-a1c3-77d2e0b9f146"),
		Title: "Observing Jupiter's Moons",
	}
	assert.Equal(t, "9c4e21d0", a.ShortID())
	assert.Equal(t, "observing-jupiters-moons-9c4e21d0", a.Slug())
	assert.Equal(t, "/article/observing-jupiters-moons-9c4e21d0", a.Path())
}

func TestArticleDisplayDate(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	published := created.Add(48 * time.Hour)

	a := Article{CreatedAt: created}
	assert.Equal(t, created, a.DisplayDate())
	a.PublishedAt = &published
	assert.Equal(t, published, a.DisplayDate())
}

func TestEventIsUpcoming(t *testing.T) {
	now := time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)
	hour := time.Hour

	t.Run("starts later", func(t *testing.T) {
		e := Event{StartsAt: now.Add(hour)}
		assert.True(t, e.IsUpcoming(now))
	})
	t.Run("starts exactly now", func(t *testing.T) {
		e := Event{StartsAt: now}
		assert.True(t, e.IsUpcoming(now))
	})
	t.Run("started, still running", func(t *testing.T) {
		end := now.Add(hour)
		e := Event{StartsAt: now.Add(-hour), EndsAt: &end}
		assert.True(t, e.IsUpcoming(now))
	})
	t.Run("over", func(t *testing.T) {
		end := now.Add(-time.Minute)
		e := Event{StartsAt: now.Add(-hour), EndsAt: &end}
		assert.False(t, e.IsUpcoming(now))
	})
	t.Run("no end, started", func(t *testing.T) {
		e := Event{StartsAt: now.Add(-time.Second)}
		assert.False(t, e.IsUpcoming(now))
	})
}

func TestUserBestName(t *testing.T) {
	u := User{Username: "mcurie"}
	assert.Equal(t, "mcurie", u.BestName())
	u.Name = "Marie Curie"
	assert.Equal(t, "Marie Curie", u.BestName())
}
