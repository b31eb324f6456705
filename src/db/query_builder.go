package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Builds up a query from optional chunks, for listings with filters.
type QueryBuilder struct {
	sql  strings.Builder
	args []any
}

/*
Adds the given SQL and arguments to the query. Each `$?` is replaced with the
next argument number, counting across every chunk added so far:

	qb.Add("WHERE kind = $?", kind)           // WHERE kind = $1
	qb.Add("AND starts_at > $? LIMIT $?", t, n) // AND starts_at > $2 LIMIT $3
*/
func (qb *QueryBuilder) Add(sql string, args ...any) {
	numPlaceholders := strings.Count(sql, "$?")
	if numPlaceholders != len(args) {
		panic(fmt.Errorf("cannot add chunk to query; expected %d arguments but got %d", numPlaceholders, len(args)))
	}

	for _, arg := range args {
		qb.args = append(qb.args, arg)
		sql = strings.Replace(sql, "$?", "$"+strconv.Itoa(len(qb.args)), 1)
	}

	qb.sql.WriteString(sql)
	qb.sql.WriteString("\n")
}

func (qb *QueryBuilder) String() string {
	return qb.sql.String()
}

func (qb *QueryBuilder) Args() []any {
	return qb.args
}
