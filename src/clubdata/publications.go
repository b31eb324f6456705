package clubdata

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/perf"
)

// All publications, newest first.
func FetchPublications(ctx context.Context, dbConn db.ConnOrTx) ([]*models.Publication, error) {
	defer perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch publications").End()

	pubs, err := db.Query[models.Publication](ctx, dbConn,
		`
		---- Fetch publications
		SELECT $columns
		FROM publication
		ORDER BY published_on DESC, id DESC
		`,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch publications")
	}
	return pubs, nil
}

// Returns db.NotFound if no result is found.
func FetchPublication(ctx context.Context, dbConn db.ConnOrTx, id int) (*models.Publication, error) {
	pub, err := db.QueryOne[models.Publication](ctx, dbConn,
		`
		---- Fetch publication
		SELECT $columns
		FROM publication
		WHERE id = $1
		`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch publication")
	}
	return pub, nil
}

type PublicationInput struct {
	Title        string
	Authors      string
	Venue        string
	Abstract     string
	Citation     string
	Url          string
	PublishedOn  time.Time
	CoverAssetID *uuid.UUID
}

func CreatePublication(ctx context.Context, dbConn db.ConnOrTx, in PublicationInput) (*models.Publication, error) {
	pub, err := db.QueryOne[models.Publication](ctx, dbConn,
		`
		---- Create publication
		INSERT INTO publication (title, authors, venue, abstract, citation, url, published_on, cover_asset_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING $columns
		`,
		in.Title,
		in.Authors,
		in.Venue,
		in.Abstract,
		in.Citation,
		in.Url,
		in.PublishedOn,
		in.CoverAssetID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create publication")
	}
	return pub, nil
}

func UpdatePublication(ctx context.Context, dbConn db.ConnOrTx, id int, in PublicationInput) (*models.Publication, error) {
	pub, err := db.QueryOne[models.Publication](ctx, dbConn,
		`
		---- Update publication
		UPDATE publication
		SET
			title = $2,
			authors = $3,
			venue = $4,
			abstract = $5,
			citation = $6,
			url = $7,
			published_on = $8,
			cover_asset_id = $9
		WHERE id = $1
		RETURNING $columns
		`,
		id,
		in.Title,
		in.Authors,
		in.Venue,
		in.Abstract,
		in.Citation,
		in.Url,
		in.PublishedOn,
		in.CoverAssetID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to update publication")
	}
	return pub, nil
}

func DeletePublication(ctx context.Context, dbConn db.ConnOrTx, id int) error {
	return deleteByID(ctx, dbConn, "publication", id)
}
