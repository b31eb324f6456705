/*
Package clubdata holds the database helpers for the club's content: articles,
events, publications, library resources, team members, users and role
assignments. Handlers and CLI commands go through here instead of writing SQL
themselves.

Functions that fetch a single row return db.NotFound when it does not exist.
*/
package clubdata

import (
	"context"
	"fmt"

	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/oops"
)

// table is always a constant from this package, never user input.
func deleteByID(ctx context.Context, dbConn db.ConnOrTx, table string, id int) error {
	tag, err := dbConn.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return oops.New(err, "failed to delete from %s", table)
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}
	return nil
}
