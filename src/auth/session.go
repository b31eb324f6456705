package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sciclub/clubsite/src/config"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/jobs"
	"github.com/sciclub/clubsite/src/logging"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
)

const SessionCookieName = "ClubSession"

const sessionDuration = time.Hour * 24 * 14

// Name of the form field (and header) carrying the CSRF token on POSTs.
const CSRFFieldName = "csrf_token"

func makeRandomToken() string {
	idBytes := make([]byte, 40)
	_, err := io.ReadFull(rand.Reader, idBytes)
	if err != nil {
		panic(err)
	}

	return base64.URLEncoding.EncodeToString(idBytes)[:40]
}

var ErrNoSession = errors.New("no session found")

// Returns ErrNoSession for unknown and expired sessions alike.
func GetSession(ctx context.Context, conn db.ConnOrTx, id string) (*models.Session, error) {
	sess, err := db.QueryOne[models.Session](ctx, conn,
		`
		---- Get session
		SELECT $columns
		FROM session
		WHERE
			id = $1
			AND expires_at > NOW()
		`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, ErrNoSession
		} else {
			return nil, oops.New(err, "failed to get session")
		}
	}

	return sess, nil
}

func CreateSession(ctx context.Context, conn db.ConnOrTx, username string) (*models.Session, error) {
	session := models.Session{
		ID:        makeRandomToken(),
		Username:  username,
		ExpiresAt: time.Now().Add(sessionDuration),
		CSRFToken: makeRandomToken(),
	}

	_, err := conn.Exec(ctx,
		"INSERT INTO session (id, username, expires_at, csrf_token) VALUES ($1, $2, $3, $4)",
		session.ID, session.Username, session.ExpiresAt, session.CSRFToken,
	)
	if err != nil {
		return nil, oops.New(err, "failed to persist session")
	}

	return &session, nil
}

// Deletes a session by id. If no session with that id exists, no
// error is returned.
func DeleteSession(ctx context.Context, conn db.ConnOrTx, id string) error {
	_, err := conn.Exec(ctx, "DELETE FROM session WHERE id = $1", id)
	if err != nil {
		return oops.New(err, "failed to delete session")
	}

	return nil
}

// Logs a user out everywhere, e.g. after a password change.
func DeleteSessionsForUser(ctx context.Context, conn db.ConnOrTx, username string) (int64, error) {
	tag, err := conn.Exec(ctx, "DELETE FROM session WHERE username = $1", username)
	if err != nil {
		return 0, oops.New(err, "failed to delete sessions for user")
	}

	return tag.RowsAffected(), nil
}

func CheckCSRFToken(session *models.Session, token string) bool {
	if session == nil || session.CSRFToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(session.CSRFToken), []byte(token)) == 1
}

func NewSessionCookie(session *models.Session) *http.Cookie {
	return &http.Cookie{
		Name:  SessionCookieName,
		Value: session.ID,

		Domain:  config.Config.Auth.CookieDomain,
		Path:    "/",
		Expires: session.ExpiresAt,

		Secure:   config.Config.Auth.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

var DeleteSessionCookie = &http.Cookie{
	Name:   SessionCookieName,
	Domain: config.Config.Auth.CookieDomain,
	Path:   "/",
	MaxAge: -1,
}

func DeleteExpiredSessions(ctx context.Context, conn db.ConnOrTx) (int64, error) {
	tag, err := conn.Exec(ctx, "DELETE FROM session WHERE expires_at <= CURRENT_TIMESTAMP")
	if err != nil {
		return 0, oops.New(err, "failed to delete expired sessions")
	}

	return tag.RowsAffected(), nil
}

func PeriodicallyDeleteExpiredSessions(conn db.ConnOrTx) *jobs.Job {
	return jobs.Periodic("delete expired sessions", time.Minute, func(ctx context.Context) error {
		n, err := DeleteExpiredSessions(ctx, conn)
		if err != nil {
			return err
		}
		if n > 0 {
			logging.ExtractLogger(ctx).Info().Int64("num deleted sessions", n).Msg("Deleted expired sessions")
		}
		return nil
	})
}
