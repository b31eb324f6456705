/*
This package contains lowish-level APIs for making queries against the club's Postgres database. It streamlines the process of mapping query results to Go types, while allowing you to write arbitrary SQL queries.

The primary functions are Query and QueryIterator. See the package and function examples for detailed usage.

Query syntax

This package allows a few small extensions to SQL syntax to streamline the interaction between Go and Postgres.

Arguments can be provided using placeholders like $1, $2, etc. All arguments will be safely escaped and mapped from their Go type to the correct Postgres type. (This is a direct proxy to pgx.)

	userIDs, err := db.QueryScalar[int](ctx, conn,
		`
		SELECT user_id
		FROM user_role
		WHERE
			role = ANY($1)
			AND user_id <> $2
		`,
		[]string{"editor", "admin"},
		currentUserID,
	)

(This also demonstrates a useful tip: if you want to use a slice in your query, use Postgres arrays instead of IN.)

When querying individual fields, you can simply select the field like so:

	ids, err := db.QueryScalar[int](ctx, conn, `SELECT id FROM club_user`)

To query multiple columns at once, you may use a struct type with `db:"column_name"` tags, and the special $columns placeholder:

	type Event struct {
		ID       int       `db:"id"`
		Title    string    `db:"title"`
		StartsAt time.Time `db:"starts_at"`
	}
	events, err := db.Query[Event](ctx, conn, `SELECT $columns FROM event`)
	// Resulting query:
	// SELECT id, title, starts_at FROM event

Sometimes a table name prefix is required on each column to disambiguate between column names, especially when performing a JOIN. In those situations, you can include the prefix in the $columns placeholder like $columns{prefix}:

	type ArticleAndAuthor struct {
		Article models.Article `db:"article"`
		Author  models.User    `db:"author"`
	}
	rows, err := db.Query[ArticleAndAuthor](ctx, conn, `
		SELECT $columns
		FROM
			article
			JOIN club_user AS author ON author.id = article.author_id
	`)
	// Resulting query:
	// SELECT article.id, article.title, ..., author.id, author.username, ... FROM ...

Nested struct fields are named by their db tag, joined with underscores when
a prefix is given, so $columns{a} on the struct above yields a_article.id and
so on.

Queries may start with a "---- Name" comment line. The name shows up in the
request perf blocks and query logs.

NULL columns leave their destination field at its zero value, so nullable
columns should map to pointer fields when the difference matters.
*/
package db
