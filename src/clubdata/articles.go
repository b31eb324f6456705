package clubdata

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/parsing"
	"github.com/sciclub/clubsite/src/perf"
	"github.com/sciclub/clubsite/src/slug"
)

// Returned when a short id is a prefix of more than one article id. The
// website treats this like a missing article.
var ErrAmbiguousShortID = errors.New("short id matches more than one article")

// Returned for short ids that could never match an article id.
var ErrInvalidShortID = errors.New("invalid short id")

var reShortID = regexp.MustCompile(`^[0-9a-f]{1,32}$`)

// Length of the generated summary when an article is saved without one.
const summaryLength = 240

// How many times CreateArticle draws a new id before giving up.
const maxIDAttempts = 5

type ArticlesQuery struct {
	IncludeUnpublished bool

	Limit, Offset int // if empty, no pagination
}

func FetchArticles(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q ArticlesQuery,
) ([]*models.Article, error) {
	defer perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch articles").End()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT $columns
		FROM article
		WHERE TRUE
	`)
	if !q.IncludeUnpublished {
		qb.Add(`AND article.published`)
	}
	qb.Add(`ORDER BY COALESCE(article.published_at, article.created_at) DESC, article.id`)
	if q.Limit > 0 {
		qb.Add(`LIMIT $? OFFSET $?`, q.Limit, q.Offset)
	}

	articles, err := db.Query[models.Article](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch articles")
	}
	return articles, nil
}

func CountArticles(ctx context.Context, dbConn db.ConnOrTx, q ArticlesQuery) (int, error) {
	var qb db.QueryBuilder
	qb.Add(`SELECT COUNT(*) FROM article WHERE TRUE`)
	if !q.IncludeUnpublished {
		qb.Add(`AND article.published`)
	}

	count, err := db.QueryOneScalar[int](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return 0, oops.New(err, "failed to count articles")
	}
	return count, nil
}

// Returns db.NotFound if no result is found.
func FetchArticle(ctx context.Context, dbConn db.ConnOrTx, id uuid.UUID) (*models.Article, error) {
	article, err := db.QueryOne[models.Article](ctx, dbConn,
		`
		---- Fetch article
		SELECT $columns
		FROM article
		WHERE id = $1
		`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch article")
	}
	return article, nil
}

/*
Finds the article whose hyphen-stripped id starts with shortID. Unpublished
articles are only considered when includeUnpublished is set.

Returns ErrInvalidShortID if shortID is not 1 to 32 lowercase hex digits,
db.NotFound if nothing matches, and ErrAmbiguousShortID if more than one
article matches.
*/
func FetchArticleByShortID(
	ctx context.Context,
	dbConn db.ConnOrTx,
	shortID string,
	includeUnpublished bool,
) (*models.Article, error) {
	if !ValidShortID(shortID) {
		return nil, ErrInvalidShortID
	}

	defer perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch article by short id").End()

	var qb db.QueryBuilder
	qb.Add(
		`
		---- Fetch article by short id
		SELECT $columns
		FROM article
		WHERE replace(article.id::text, '-', '') LIKE $? || '%'
		`,
		shortID,
	)
	if !includeUnpublished {
		qb.Add(`AND article.published`)
	}
	qb.Add(`LIMIT 2`)

	matches, err := db.Query[models.Article](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch article by short id")
	}

	return pickShortIDMatch(matches, shortID)
}

// Exactly one match is a hit. None is db.NotFound and more than one is
// ErrAmbiguousShortID.
func pickShortIDMatch(matches []*models.Article, shortID string) (*models.Article, error) {
	switch len(matches) {
	case 0:
		return nil, db.NotFound
	case 1:
		return matches[0], nil
	default:
		return nil, oops.New(ErrAmbiguousShortID, "short id %s", shortID)
	}
}

func ValidShortID(shortID string) bool {
	return reShortID.MatchString(shortID)
}

type ArticleInput struct {
	AuthorID     *int
	Title        string
	Summary      string
	BodyRaw      string
	CoverAssetID *uuid.UUID
	Published    bool
}

/*
Inserts a new article. A fresh id is drawn until its short id does not prefix
any existing article's id, so short-id lookups stay unambiguous for new
articles.
*/
func CreateArticle(ctx context.Context, dbConn db.ConnOrTx, in ArticleInput) (*models.Article, error) {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	var id uuid.UUID
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			return nil, oops.New(nil, "could not find a free short id after %d attempts", maxIDAttempts)
		}

		id = uuid.New()
		taken, err := db.QueryOneScalar[bool](ctx, tx,
			`
			---- Check short id
			SELECT EXISTS (
				SELECT 1 FROM article
				WHERE replace(article.id::text, '-', '') LIKE $1 || '%'
			)
			`,
			slug.ShortID(id.String()),
		)
		if err != nil {
			return nil, oops.New(err, "failed to check for short id collision")
		}
		if !taken {
			break
		}
	}

	now := time.Now()
	var publishedAt *time.Time
	if in.Published {
		publishedAt = &now
	}

	article, err := db.QueryOne[models.Article](ctx, tx,
		`
		---- Create article
		INSERT INTO article (id, author_id, title, summary, body_raw, body_html, cover_asset_id, published, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING $columns
		`,
		id,
		in.AuthorID,
		in.Title,
		articleSummary(in),
		in.BodyRaw,
		parsing.RenderContent(in.BodyRaw),
		in.CoverAssetID,
		in.Published,
		publishedAt,
		now,
	)
	if err != nil {
		return nil, oops.New(err, "failed to insert article")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, oops.New(err, "failed to commit new article")
	}
	return article, nil
}

// Overwrites the editable fields of an article. published_at is set the first
// time the article is published and kept afterwards.
func UpdateArticle(ctx context.Context, dbConn db.ConnOrTx, id uuid.UUID, in ArticleInput) (*models.Article, error) {
	article, err := db.QueryOne[models.Article](ctx, dbConn,
		`
		---- Update article
		UPDATE article
		SET
			title = $2,
			summary = $3,
			body_raw = $4,
			body_html = $5,
			cover_asset_id = $6,
			published = $7,
			published_at = CASE
				WHEN $7 AND published_at IS NULL THEN now()
				ELSE published_at
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING $columns
		`,
		id,
		in.Title,
		articleSummary(in),
		in.BodyRaw,
		parsing.RenderContent(in.BodyRaw),
		in.CoverAssetID,
		in.Published,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to update article")
	}
	return article, nil
}

func DeleteArticle(ctx context.Context, dbConn db.ConnOrTx, id uuid.UUID) error {
	tag, err := dbConn.Exec(ctx, `DELETE FROM article WHERE id = $1`, id)
	if err != nil {
		return oops.New(err, "failed to delete article")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}
	return nil
}

func articleSummary(in ArticleInput) string {
	if in.Summary != "" {
		return in.Summary
	}
	return parsing.Summarize(in.BodyRaw, summaryLength)
}
