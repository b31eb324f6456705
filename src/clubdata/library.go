package clubdata

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/perf"
)

type LibraryQuery struct {
	Category string // if empty, all categories
}

// Library resources grouped by category, then by title.
func FetchLibraryResources(ctx context.Context, dbConn db.ConnOrTx, q LibraryQuery) ([]*models.LibraryResource, error) {
	defer perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch library").End()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT $columns
		FROM library_resource
		WHERE TRUE
	`)
	if q.Category != "" {
		qb.Add(`AND lower(category) = lower($?)`, q.Category)
	}
	qb.Add(`ORDER BY lower(category), lower(title), id`)

	resources, err := db.Query[models.LibraryResource](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch library resources")
	}
	return resources, nil
}

// Distinct categories in display order.
func FetchLibraryCategories(ctx context.Context, dbConn db.ConnOrTx) ([]string, error) {
	categories, err := db.QueryScalar[string](ctx, dbConn,
		`
		---- Fetch library categories
		SELECT DISTINCT category
		FROM library_resource
		ORDER BY category
		`,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch library categories")
	}
	return categories, nil
}

// Returns db.NotFound if no result is found.
func FetchLibraryResource(ctx context.Context, dbConn db.ConnOrTx, id int) (*models.LibraryResource, error) {
	res, err := db.QueryOne[models.LibraryResource](ctx, dbConn,
		`
		---- Fetch library resource
		SELECT $columns
		FROM library_resource
		WHERE id = $1
		`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch library resource")
	}
	return res, nil
}

type LibraryResourceInput struct {
	Title       string
	Description string
	Category    string
	Url         string
	FileAssetID *uuid.UUID
}

func CreateLibraryResource(ctx context.Context, dbConn db.ConnOrTx, in LibraryResourceInput) (*models.LibraryResource, error) {
	res, err := db.QueryOne[models.LibraryResource](ctx, dbConn,
		`
		---- Create library resource
		INSERT INTO library_resource (title, description, category, url, file_asset_id, added_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING $columns
		`,
		in.Title,
		in.Description,
		in.Category,
		in.Url,
		in.FileAssetID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create library resource")
	}
	return res, nil
}

func UpdateLibraryResource(ctx context.Context, dbConn db.ConnOrTx, id int, in LibraryResourceInput) (*models.LibraryResource, error) {
	res, err := db.QueryOne[models.LibraryResource](ctx, dbConn,
		`
		---- Update library resource
		UPDATE library_resource
		SET
			title = $2,
			description = $3,
			category = $4,
			url = $5,
			file_asset_id = $6
		WHERE id = $1
		RETURNING $columns
		`,
		id,
		in.Title,
		in.Description,
		in.Category,
		in.Url,
		in.FileAssetID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to update library resource")
	}
	return res, nil
}

func DeleteLibraryResource(ctx context.Context, dbConn db.ConnOrTx, id int) error {
	return deleteByID(ctx, dbConn, "library_resource", id)
}
