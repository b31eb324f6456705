package models

import "time"

// One row of user_role. The effective role of a user is derived from all of
// their rows with roles.Resolve; it is never stored.
type RoleAssignment struct {
	UserID      int       `db:"user_id"`
	Role        string    `db:"role"`
	GrantedAt   time.Time `db:"granted_at"`
	GrantedByID *int      `db:"granted_by_id"`
}
