package clubdata

import (
	"context"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/assets"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/perf"
)

/*
Looks up the public URLs of the given assets in one query. Nil ids are
skipped, so callers can pass optional cover and photo ids straight from their
models. Ids with no asset row are left out of the result.
*/
func FetchAssetUrls(ctx context.Context, dbConn db.ConnOrTx, ids ...*uuid.UUID) (map[uuid.UUID]string, error) {
	var wanted []uuid.UUID
	for _, id := range ids {
		if id != nil {
			wanted = append(wanted, *id)
		}
	}

	result := make(map[uuid.UUID]string, len(wanted))
	if len(wanted) == 0 {
		return result, nil
	}

	defer perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch asset urls").End()

	found, err := db.Query[models.Asset](ctx, dbConn,
		`
		---- Fetch assets by id
		SELECT $columns
		FROM asset
		WHERE id = ANY($1)
		`,
		wanted,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch assets")
	}

	for _, asset := range found {
		result[asset.ID] = assets.PublicURL(asset.S3Key)
	}
	return result, nil
}

// Recent uploads, newest first, for the asset picker on admin forms.
func FetchRecentAssets(ctx context.Context, dbConn db.ConnOrTx, limit int) ([]*models.Asset, error) {
	found, err := db.Query[models.Asset](ctx, dbConn,
		`
		---- Fetch recent assets
		SELECT $columns
		FROM asset
		ORDER BY created_at DESC
		LIMIT $1
		`,
		limit,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch recent assets")
	}
	return found, nil
}
