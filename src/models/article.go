package models

import (
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/slug"
)

var ArticleType = reflect.TypeOf(Article{})

type Article struct {
	ID       uuid.UUID `db:"id"`
	AuthorID *int      `db:"author_id"`

	Title    string `db:"title"`
	Summary  string `db:"summary"`
	BodyRaw  string `db:"body_raw"`
	BodyHTML string `db:"body_html"`

	CoverAssetID *uuid.UUID `db:"cover_asset_id"`

	Published   bool       `db:"published"`
	PublishedAt *time.Time `db:"published_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (a *Article) ShortID() string {
	return slug.ShortID(a.ID.String())
}

// The path segment after /article/.
func (a *Article) Slug() string {
	return slug.Segment(a.Title, a.ID.String())
}

func (a *Article) Path() string {
	return slug.ArticlePath(a.Title, a.ID.String())
}

// The date shown on cards: publication time if published, creation otherwise.
func (a *Article) DisplayDate() time.Time {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}
	return a.CreatedAt
}
