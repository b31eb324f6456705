package website

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/auth"
	"github.com/sciclub/clubsite/src/clubdata"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/roles"
	"github.com/sciclub/clubsite/src/siteurl"
	"github.com/sciclub/clubsite/src/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubLookup[T any](t *testing.T, target *T, stub T) {
	t.Helper()
	old := *target
	*target = stub
	t.Cleanup(func() { *target = old })
}

func articleRouter() *Router {
	router := &Router{}
	routes := RouteBuilder{Router: router}
	routes.GET(siteurl.RegexArticle, Article)
	routes.AnyMethod(siteurl.RegexFourOhFour, FourOhFour)
	return router
}

func TestArticleStaleTitleRedirects(t *testing.T) {
	article := &models.Article{
		ID:        uuid.MustParse("5b1e0f3a-1111-4222-8333-444455556666"),
		Title:     "Dark Matter 101",
		Published: true,
	}
	var askedFor string
	stubLookup(t, &lookupArticleByShortID, func(ctx context.Context, conn db.ConnOrTx, shortID string, includeUnpublished bool) (*models.Article, error) {
		askedFor = shortID
		return article, nil
	})

	res, _ := serve(t, articleRouter(), http.MethodGet, "/article/dark-matter-for-beginners-5b1e0f3a")
	assert.Equal(t, "5b1e0f3a", askedFor)
	assert.Equal(t, http.StatusMovedPermanently, res.StatusCode)
	assert.Equal(t, siteurl.BuildArticle(article.Title, article.ID), res.Header.Get("Location"))
	assert.Regexp(t, `/article/dark-matter-101-5b1e0f3a$`, res.Header.Get("Location"))
}

func TestArticleLookupFailures(t *testing.T) {
	t.Run("ambiguous short id", func(t *testing.T) {
		stubLookup(t, &lookupArticleByShortID, func(ctx context.Context, conn db.ConnOrTx, shortID string, includeUnpublished bool) (*models.Article, error) {
			return nil, oops.New(clubdata.ErrAmbiguousShortID, "short id %s", shortID)
		})

		res, body := serve(t, articleRouter(), http.MethodGet, "/article/anything-5b")
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, "Not Found", body)
	})
	t.Run("no such article", func(t *testing.T) {
		stubLookup(t, &lookupArticleByShortID, func(ctx context.Context, conn db.ConnOrTx, shortID string, includeUnpublished bool) (*models.Article, error) {
			return nil, db.NotFound
		})

		res, _ := serve(t, articleRouter(), http.MethodGet, "/article/anything-5b1e0f3a")
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
	t.Run("drafts hidden from visitors", func(t *testing.T) {
		var included bool
		stubLookup(t, &lookupArticleByShortID, func(ctx context.Context, conn db.ConnOrTx, shortID string, includeUnpublished bool) (*models.Article, error) {
			included = includeUnpublished
			return nil, db.NotFound
		})

		serve(t, articleRouter(), http.MethodGet, "/article/anything-5b1e0f3a")
		assert.False(t, included)
	})
}

func TestRoleLookupFailureIsServerError(t *testing.T) {
	templates.Init()

	user := &models.User{ID: 7, Username: "ada"}
	stubLookup(t, &lookupUserAndSession, func(c *RequestContext, sessionId string) (*models.User, *models.Session, error) {
		return user, &models.Session{ID: sessionId, Username: user.Username}, nil
	})
	var askedFor int
	stubLookup(t, &lookupEffectiveRole, func(ctx context.Context, conn db.ConnOrTx, userID int) (roles.Role, error) {
		askedFor = userID
		return roles.None, oops.New(roles.ErrUnknownRole, "role tag %q", "wizard")
	})

	reached := false
	router := &Router{}
	routes := RouteBuilder{Router: router, Middlewares: []Middleware{loadCommonData}}
	routes.GET(regexp.MustCompile(`^/$`), func(c *RequestContext) ResponseData {
		reached = true
		return textHandler("home")(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "session-id"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	require.Nil(t, err)

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, 7, askedFor)
	assert.False(t, reached, "a request with an unresolvable role must not reach the page")
	assert.NotContains(t, string(body), "home")
}

func TestRoleLookupSuccess(t *testing.T) {
	user := &models.User{ID: 7, Username: "ada"}
	stubLookup(t, &lookupUserAndSession, func(c *RequestContext, sessionId string) (*models.User, *models.Session, error) {
		return user, &models.Session{ID: sessionId, Username: user.Username}, nil
	})
	stubLookup(t, &lookupEffectiveRole, func(ctx context.Context, conn db.ConnOrTx, userID int) (roles.Role, error) {
		return roles.Editor, nil
	})

	var seen roles.Role
	router := &Router{}
	routes := RouteBuilder{Router: router, Middlewares: []Middleware{loadCommonData}}
	routes.GET(regexp.MustCompile(`^/$`), func(c *RequestContext) ResponseData {
		seen = c.CurrentRole
		return textHandler("home")(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "session-id"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, roles.Editor, seen)

	t.Run("logged out visitors are not looked up", func(t *testing.T) {
		stubLookup(t, &lookupEffectiveRole, func(ctx context.Context, conn db.ConnOrTx, userID int) (roles.Role, error) {
			return roles.None, errors.New("should not be called")
		})
		res, body := serve(t, router, http.MethodGet, "/")
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "home", body)
		assert.Equal(t, roles.None, seen)
	})
}
