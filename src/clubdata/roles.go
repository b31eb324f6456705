package clubdata

import (
	"context"

	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/perf"
	"github.com/sciclub/clubsite/src/roles"
)

// The raw role tags stored for a user, in no particular order.
func FetchRoleTags(ctx context.Context, dbConn db.ConnOrTx, userID int) ([]string, error) {
	tags, err := db.QueryScalar[string](ctx, dbConn,
		`
		---- Fetch role tags
		SELECT role
		FROM user_role
		WHERE user_id = $1
		`,
		userID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch roles for user %d", userID)
	}
	return tags, nil
}

/*
Fetches the user's role rows and resolves them to one effective role. The
result is a snapshot; call this again whenever a fresh decision is needed.
A stored tag that is not a known role makes this fail with an error wrapping
roles.ErrUnknownRole.
*/
func FetchEffectiveRole(ctx context.Context, dbConn db.ConnOrTx, userID int) (roles.Role, error) {
	defer perf.ExtractPerf(ctx).StartBlock("SQL", "Resolve role").End()

	tags, err := FetchRoleTags(ctx, dbConn, userID)
	if err != nil {
		return roles.None, err
	}

	role, err := roles.Resolve(tags)
	if err != nil {
		return roles.None, oops.New(err, "user %d has a malformed role assignment", userID)
	}
	return role, nil
}

// Adds a role assignment. Granting a role the user already holds is a no-op.
func GrantRole(ctx context.Context, dbConn db.ConnOrTx, userID int, role roles.Role, grantedByID *int) error {
	if role == roles.None {
		return oops.New(nil, "cannot grant the empty role")
	}

	_, err := dbConn.Exec(ctx,
		`
		---- Grant role
		INSERT INTO user_role (user_id, role, granted_at, granted_by_id)
		VALUES ($1, $2, now(), $3)
		ON CONFLICT (user_id, role) DO NOTHING
		`,
		userID,
		role.Tag(),
		grantedByID,
	)
	if err != nil {
		return oops.New(err, "failed to grant %s to user %d", role, userID)
	}
	return nil
}

// Removes a role assignment. Returns db.NotFound if the user did not hold it.
func RevokeRole(ctx context.Context, dbConn db.ConnOrTx, userID int, role roles.Role) error {
	tag, err := dbConn.Exec(ctx,
		`
		---- Revoke role
		DELETE FROM user_role
		WHERE user_id = $1 AND role = $2
		`,
		userID,
		role.Tag(),
	)
	if err != nil {
		return oops.New(err, "failed to revoke %s from user %d", role, userID)
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}
	return nil
}

type RoleAssignmentRow struct {
	Assignment models.RoleAssignment `db:"user_role"`
	User       models.User           `db:"club_user"`
}

// Every role assignment with its user, for the roles admin page.
func FetchRoleAssignments(ctx context.Context, dbConn db.ConnOrTx) ([]*RoleAssignmentRow, error) {
	rows, err := db.Query[RoleAssignmentRow](ctx, dbConn,
		`
		---- Fetch role assignments
		SELECT $columns
		FROM
			user_role
			JOIN club_user ON club_user.id = user_role.user_id
		ORDER BY lower(club_user.username), user_role.role
		`,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch role assignments")
	}
	return rows, nil
}
