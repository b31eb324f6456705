package website

import (
	"errors"
	"net/http"

	"github.com/sciclub/clubsite/src/auth"
	"github.com/sciclub/clubsite/src/clubdata"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/logging"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/roles"
)

// Lookups behind loadCommonData and Article. Tests swap these for stubs.
var (
	lookupUserAndSession   = getCurrentUserAndSession
	lookupEffectiveRole    = clubdata.FetchEffectiveRole
	lookupArticleByShortID = clubdata.FetchArticleByShortID
)

/*
Loads the session, the user, and the user's effective role. The role is
resolved from the role rows on every request, so grants and revocations take
effect on the next page load without logging out.
*/
func loadCommonData(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		b := c.Perf.StartBlock("MIDDLEWARE", "Load common website data")
		{
			sessionCookie, err := c.Req.Cookie(auth.SessionCookieName)
			if err == nil {
				user, session, err := lookupUserAndSession(c, sessionCookie.Value)
				if err != nil {
					b.End()
					return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to get current user"))
				}

				c.CurrentUser = user
				c.CurrentSession = session
			}
			// http.ErrNoCookie is the only error Cookie ever returns, so no further handling to do here.

			c.CurrentRole = roles.None
			if c.CurrentUser != nil {
				role, err := lookupEffectiveRole(c, c.Conn, c.CurrentUser.ID)
				if err != nil {
					b.End()
					return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to resolve role for %s", c.CurrentUser.Username))
				}
				c.CurrentRole = role
			}
		}
		b.End()

		return h(c)
	}
}

// Given a session id, fetches user data from the database. Will return nil if
// the user cannot be found, and will only return an error if it's serious.
func getCurrentUserAndSession(c *RequestContext, sessionId string) (*models.User, *models.Session, error) {
	session, err := auth.GetSession(c, c.Conn, sessionId)
	if err != nil {
		if errors.Is(err, auth.ErrNoSession) {
			return nil, nil, nil
		} else {
			return nil, nil, oops.New(err, "failed to get current session")
		}
	}

	user, err := clubdata.FetchUserByUsername(c, c.Conn, session.Username)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			logging.Debug().Str("username", session.Username).Msg("returning no current user for this request because the user for the session couldn't be found")
			return nil, nil, nil // user was deleted
		} else {
			return nil, nil, oops.New(err, "failed to get user for session")
		}
	}

	return user, session, nil
}
