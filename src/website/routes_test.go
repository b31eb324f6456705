package website

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/roles"
	"github.com/sciclub/clubsite/src/siteurl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogContextErrors(t *testing.T) {
	err1 := errors.New("test error 1")
	err2 := errors.New("test error 2")

	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Print("sanity check")

	assert.Contains(t, buf.String(), "sanity check")

	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			func(h Handler) Handler {
				return func(c *RequestContext) (res ResponseData) {
					c.Logger = &logger
					defer logContextErrorsMiddleware(h)
					return h(c)
				}
			},
		},
	}

	routes.GET(regexp.MustCompile("^/test$"), func(c *RequestContext) ResponseData {
		return c.ErrorResponse(http.StatusInternalServerError, err1, err2)
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/test")
	if assert.Nil(t, err) {
		defer res.Body.Close()

		t.Logf("Log contents: %s", buf.String())

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

		assert.Contains(t, buf.String(), err1.Error())
		assert.Contains(t, buf.String(), err2.Error())
	}
}

func textHandler(text string) Handler {
	return func(c *RequestContext) ResponseData {
		var res ResponseData
		res.Write([]byte(text))
		return res
	}
}

func serve(t *testing.T, handler http.Handler, method, path string) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	require.Nil(t, err)
	return res, string(body)
}

func TestRouter(t *testing.T) {
	router := &Router{}
	routes := RouteBuilder{Router: router}

	routes.GET(regexp.MustCompile(`^/things/(?P<id>\d+)$`), func(c *RequestContext) ResponseData {
		return textHandler("thing " + c.PathParams["id"])(c)
	})
	routes.POST(regexp.MustCompile(`^/things$`), textHandler("created"))
	routes.GET(regexp.MustCompile(`^/$`), textHandler("home"))
	routes.AnyMethod(siteurl.RegexFourOhFour, FourOhFour)

	t.Run("path params", func(t *testing.T) {
		res, body := serve(t, router, http.MethodGet, "/things/42")
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "thing 42", body)
	})
	t.Run("trailing slash", func(t *testing.T) {
		_, body := serve(t, router, http.MethodGet, "/things/42/")
		assert.Equal(t, "thing 42", body)
	})
	t.Run("root", func(t *testing.T) {
		_, body := serve(t, router, http.MethodGet, "/")
		assert.Equal(t, "home", body)
	})
	t.Run("head is routed as get", func(t *testing.T) {
		res, body := serve(t, router, http.MethodHead, "/things/42")
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Empty(t, body)
	})
	t.Run("method mismatch falls through", func(t *testing.T) {
		res, _ := serve(t, router, http.MethodGet, "/things")
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
	t.Run("post", func(t *testing.T) {
		_, body := serve(t, router, http.MethodPost, "/things")
		assert.Equal(t, "created", body)
	})
	t.Run("unknown path", func(t *testing.T) {
		res, body := serve(t, router, http.MethodDelete, "/nope")
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, "Not Found", body)
	})
}

func TestRouteRegexMustBeAnchored(t *testing.T) {
	routes := RouteBuilder{Router: &Router{}}
	assert.Panics(t, func() {
		routes.GET(regexp.MustCompile(`/unanchored`), textHandler(""))
	})
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	record := func(name string) Middleware {
		return func(h Handler) Handler {
			return func(c *RequestContext) ResponseData {
				order = append(order, name)
				return h(c)
			}
		}
	}

	router := &Router{}
	routes := RouteBuilder{Router: router, Middlewares: []Middleware{record("outer")}}
	inner := routes.WithMiddleware(record("inner"))
	inner.GET(regexp.MustCompile(`^/$`), textHandler("ok"))

	serve(t, router, http.MethodGet, "/")
	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Len(t, routes.Middlewares, 1, "WithMiddleware must not modify the original builder")
}

func TestAccessGates(t *testing.T) {
	type visitor struct {
		name string
		user *models.User
		role roles.Role
	}
	anonymous := visitor{name: "anonymous"}
	member := visitor{name: "member", user: &models.User{ID: 1, Username: "mia"}, role: roles.Member}
	editor := visitor{name: "editor", user: &models.User{ID: 2, Username: "ed"}, role: roles.Editor}
	admin := visitor{name: "admin", user: &models.User{ID: 3, Username: "ada"}, role: roles.Admin}
	roleless := visitor{name: "no role", user: &models.User{ID: 4, Username: "nora"}, role: roles.None}

	gatedRouter := func(v visitor) *Router {
		router := &Router{}
		routes := RouteBuilder{
			Router: router,
			Middlewares: []Middleware{
				func(h Handler) Handler {
					return func(c *RequestContext) ResponseData {
						c.CurrentUser = v.user
						c.CurrentRole = v.role
						return h(c)
					}
				},
			},
		}
		publishers := routes.WithMiddleware(publishersOnly)
		publishers.GET(regexp.MustCompile(`^/admin$`), textHandler("dashboard"))
		admins := routes.WithMiddleware(adminsOnly)
		admins.GET(regexp.MustCompile(`^/admin/roles$`), textHandler("roles"))
		routes.AnyMethod(siteurl.RegexFourOhFour, FourOhFour)
		return router
	}

	t.Run("anonymous visitors are sent to login", func(t *testing.T) {
		res, _ := serve(t, gatedRouter(anonymous), http.MethodGet, "/admin")
		assert.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Equal(t, siteurl.BuildLoginWithRedirect("/admin"), res.Header.Get("Location"))
	})

	cases := []struct {
		v          visitor
		path       string
		wantStatus int
	}{
		{roleless, "/admin", http.StatusNotFound},
		{member, "/admin", http.StatusNotFound},
		{editor, "/admin", http.StatusOK},
		{admin, "/admin", http.StatusOK},
		{member, "/admin/roles", http.StatusNotFound},
		{editor, "/admin/roles", http.StatusNotFound},
		{admin, "/admin/roles", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.v.name+" "+tc.path, func(t *testing.T) {
			res, _ := serve(t, gatedRouter(tc.v), http.MethodGet, tc.path)
			assert.Equal(t, tc.wantStatus, res.StatusCode)
		})
	}
}

func TestLocalRedirect(t *testing.T) {
	home := siteurl.BuildHomepage()

	assert.Equal(t, "/admin", localRedirect("/admin"))
	assert.Equal(t, "/journal?page=2", localRedirect("/journal?page=2"))
	assert.Equal(t, home, localRedirect(""))
	assert.Equal(t, home, localRedirect("https://evil.example.com"))
	assert.Equal(t, home, localRedirect("//evil.example.com"))
	assert.Equal(t, home, localRedirect(`/\evil.example.com`))
	assert.Equal(t, home, localRedirect("admin"))
}
