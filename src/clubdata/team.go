package clubdata

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/parsing"
	"github.com/sciclub/clubsite/src/perf"
)

type TeamQuery struct {
	IncludeInactive bool
}

func FetchTeamMembers(ctx context.Context, dbConn db.ConnOrTx, q TeamQuery) ([]*models.TeamMember, error) {
	defer perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch team").End()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT $columns
		FROM team_member
		WHERE TRUE
	`)
	if !q.IncludeInactive {
		qb.Add(`AND active`)
	}
	qb.Add(`ORDER BY sort_order, name, id`)

	members, err := db.Query[models.TeamMember](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch team members")
	}
	return members, nil
}

// Returns db.NotFound if no result is found.
func FetchTeamMember(ctx context.Context, dbConn db.ConnOrTx, id int) (*models.TeamMember, error) {
	member, err := db.QueryOne[models.TeamMember](ctx, dbConn,
		`
		---- Fetch team member
		SELECT $columns
		FROM team_member
		WHERE id = $1
		`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch team member")
	}
	return member, nil
}

type TeamMemberInput struct {
	Name         string
	Position     string
	Email        string
	BioRaw       string
	PhotoAssetID *uuid.UUID
	SortOrder    int
	Active       bool
}

func CreateTeamMember(ctx context.Context, dbConn db.ConnOrTx, in TeamMemberInput) (*models.TeamMember, error) {
	member, err := db.QueryOne[models.TeamMember](ctx, dbConn,
		`
		---- Create team member
		INSERT INTO team_member (name, position, email, bio_raw, bio_html, photo_asset_id, sort_order, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING $columns
		`,
		in.Name,
		in.Position,
		in.Email,
		in.BioRaw,
		parsing.RenderContent(in.BioRaw),
		in.PhotoAssetID,
		in.SortOrder,
		in.Active,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create team member")
	}
	return member, nil
}

func UpdateTeamMember(ctx context.Context, dbConn db.ConnOrTx, id int, in TeamMemberInput) (*models.TeamMember, error) {
	member, err := db.QueryOne[models.TeamMember](ctx, dbConn,
		`
		---- Update team member
		UPDATE team_member
		SET
			name = $2,
			position = $3,
			email = $4,
			bio_raw = $5,
			bio_html = $6,
			photo_asset_id = $7,
			sort_order = $8,
			active = $9
		WHERE id = $1
		RETURNING $columns
		`,
		id,
		in.Name,
		in.Position,
		in.Email,
		in.BioRaw,
		parsing.RenderContent(in.BioRaw),
		in.PhotoAssetID,
		in.SortOrder,
		in.Active,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to update team member")
	}
	return member, nil
}

func DeleteTeamMember(ctx context.Context, dbConn db.ConnOrTx, id int) error {
	return deleteByID(ctx, dbConn, "team_member", id)
}
