package clubdata

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/parsing"
	"github.com/sciclub/clubsite/src/perf"
)

// All events, newest start first.
func FetchEvents(ctx context.Context, dbConn db.ConnOrTx) ([]*models.Event, error) {
	defer perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch events").End()

	events, err := db.Query[models.Event](ctx, dbConn,
		`
		---- Fetch events
		SELECT $columns
		FROM event
		ORDER BY starts_at DESC, id
		`,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch events")
	}
	return events, nil
}

// Returns db.NotFound if no result is found.
func FetchEvent(ctx context.Context, dbConn db.ConnOrTx, id int) (*models.Event, error) {
	event, err := db.QueryOne[models.Event](ctx, dbConn,
		`
		---- Fetch event
		SELECT $columns
		FROM event
		WHERE id = $1
		`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch event")
	}
	return event, nil
}

type EventInput struct {
	Title           string
	DescriptionRaw  string
	Location        string
	RegistrationUrl string
	StartsAt        time.Time
	EndsAt          *time.Time
	CoverAssetID    *uuid.UUID
}

func CreateEvent(ctx context.Context, dbConn db.ConnOrTx, in EventInput) (*models.Event, error) {
	event, err := db.QueryOne[models.Event](ctx, dbConn,
		`
		---- Create event
		INSERT INTO event (title, description_raw, description_html, location, registration_url, starts_at, ends_at, cover_asset_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING $columns
		`,
		in.Title,
		in.DescriptionRaw,
		parsing.RenderContent(in.DescriptionRaw),
		in.Location,
		in.RegistrationUrl,
		in.StartsAt,
		in.EndsAt,
		in.CoverAssetID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create event")
	}
	return event, nil
}

func UpdateEvent(ctx context.Context, dbConn db.ConnOrTx, id int, in EventInput) (*models.Event, error) {
	event, err := db.QueryOne[models.Event](ctx, dbConn,
		`
		---- Update event
		UPDATE event
		SET
			title = $2,
			description_raw = $3,
			description_html = $4,
			location = $5,
			registration_url = $6,
			starts_at = $7,
			ends_at = $8,
			cover_asset_id = $9
		WHERE id = $1
		RETURNING $columns
		`,
		id,
		in.Title,
		in.DescriptionRaw,
		parsing.RenderContent(in.DescriptionRaw),
		in.Location,
		in.RegistrationUrl,
		in.StartsAt,
		in.EndsAt,
		in.CoverAssetID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to update event")
	}
	return event, nil
}

func DeleteEvent(ctx context.Context, dbConn db.ConnOrTx, id int) error {
	return deleteByID(ctx, dbConn, "event", id)
}

/*
Splits events into upcoming ones, soonest first, and past ones, most recent
first. An event stays upcoming until its end time, or its start time when it
has no end, is before now. The input slice is not modified.
*/
func SplitEvents(events []*models.Event, now time.Time) (upcoming, past []*models.Event) {
	for _, event := range events {
		if event.IsUpcoming(now) {
			upcoming = append(upcoming, event)
		} else {
			past = append(past, event)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartsAt.Before(upcoming[j].StartsAt)
	})
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].StartsAt.After(past[j].StartsAt)
	})

	return upcoming, past
}
