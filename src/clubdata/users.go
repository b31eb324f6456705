package clubdata

import (
	"context"
	"errors"
	"strings"

	"github.com/sciclub/clubsite/src/auth"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
)

var ErrUsernameTaken = errors.New("username already taken")

// Returns db.NotFound if no result is found.
func FetchUser(ctx context.Context, dbConn db.ConnOrTx, id int) (*models.User, error) {
	user, err := db.QueryOne[models.User](ctx, dbConn,
		`
		---- Fetch user
		SELECT $columns
		FROM club_user
		WHERE id = $1
		`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch user %d", id)
	}
	return user, nil
}

// Usernames are matched case-insensitively. Returns db.NotFound if no result
// is found.
func FetchUserByUsername(ctx context.Context, dbConn db.ConnOrTx, username string) (*models.User, error) {
	user, err := db.QueryOne[models.User](ctx, dbConn,
		`
		---- Fetch user by username
		SELECT $columns
		FROM club_user
		WHERE lower(username) = lower($1)
		`,
		strings.TrimSpace(username),
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch user %s", username)
	}
	return user, nil
}

func FetchUsers(ctx context.Context, dbConn db.ConnOrTx) ([]*models.User, error) {
	users, err := db.Query[models.User](ctx, dbConn,
		`
		---- Fetch users
		SELECT $columns
		FROM club_user
		ORDER BY lower(username)
		`,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch users")
	}
	return users, nil
}

type UserInput struct {
	Username string
	Email    string
	Name     string
	Password string
}

// Creates a user with no roles. Returns ErrUsernameTaken if the username is
// already in use, ignoring case.
func CreateUser(ctx context.Context, dbConn db.ConnOrTx, in UserInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, oops.New(nil, "username must not be empty")
	}

	user, err := db.QueryOne[models.User](ctx, dbConn,
		`
		---- Create user
		INSERT INTO club_user (username, password, email, name, date_joined)
		VALUES ($1, $2, $3, $4, now())
		RETURNING $columns
		`,
		username,
		auth.HashPassword(in.Password).String(),
		strings.TrimSpace(in.Email),
		strings.TrimSpace(in.Name),
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, oops.New(ErrUsernameTaken, "username %s", username)
		}
		return nil, oops.New(err, "failed to create user")
	}
	return user, nil
}
