package website

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sciclub/clubsite/src/auth"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/siteurl"
	"github.com/sciclub/clubsite/src/templates"
)

type LoginPageData struct {
	templates.BaseData
	SubmitUrl   string
	RedirectUrl string
	Username    string
}

func LoginPage(c *RequestContext) ResponseData {
	redirect := localRedirect(c.Req.URL.Query().Get("redirect"))
	if c.CurrentUser != nil {
		return c.Redirect(redirect, http.StatusSeeOther)
	}

	var res ResponseData
	res.MustWriteTemplate("auth_login.html", LoginPageData{
		BaseData:    getBaseData(c, "Log in"),
		SubmitUrl:   siteurl.BuildLogin(),
		RedirectUrl: redirect,
	}, c.Perf)
	return res
}

func Login(c *RequestContext) ResponseData {
	form, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}

	redirect := localRedirect(form.Get("redirect"))
	if c.CurrentUser != nil {
		return c.Redirect(redirect, http.StatusSeeOther)
	}

	username := strings.TrimSpace(form.Get("username"))
	password := form.Get("password")

	showFailure := func(msg string) ResponseData {
		var res ResponseData
		baseData := getBaseData(c, "Log in")
		baseData.AddImmediateNotice("failure", msg)
		res.StatusCode = http.StatusUnauthorized
		res.MustWriteTemplate("auth_login.html", LoginPageData{
			BaseData:    baseData,
			SubmitUrl:   siteurl.BuildLogin(),
			RedirectUrl: redirect,
			Username:    username,
		}, c.Perf)
		return res
	}

	if username == "" || password == "" {
		return showFailure("You must provide both a username and password.")
	}

	user, err := auth.Authenticate(c, c.Conn, username, password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			c.Logger.Info().Str("username", username).Msg("failed login attempt")
			return showFailure("Incorrect username or password.")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	res := c.Redirect(redirect, http.StatusSeeOther)
	err = loginUser(c, user, &res)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	return res
}

func Logout(c *RequestContext) ResponseData {
	res := c.Redirect(siteurl.BuildHomepage(), http.StatusSeeOther)
	logoutUser(c, &res)
	return res
}

func loginUser(c *RequestContext, user *models.User, responseData *ResponseData) error {
	session, err := auth.CreateSession(c, c.Conn, user.Username)
	if err != nil {
		return oops.New(err, "failed to create session")
	}

	responseData.SetCookie(auth.NewSessionCookie(session))
	c.Logger.Info().Str("username", user.Username).Msg("user logged in")

	return nil
}

func logoutUser(c *RequestContext, res *ResponseData) {
	sessionCookie, err := c.Req.Cookie(auth.SessionCookieName)
	if err == nil {
		// clear the session from the db immediately, no expiration
		err := auth.DeleteSession(c, c.Conn, sessionCookie.Value)
		if err != nil {
			c.Logger.Error().Err(err).Msg("failed to delete session on logout")
		}
	}

	res.SetCookie(auth.DeleteSessionCookie)
}

// Only paths on this site are followed after login. Anything else goes home.
func localRedirect(redirect string) string {
	if len(redirect) == 0 || redirect[0] != '/' || strings.HasPrefix(redirect, "//") || strings.Contains(redirect, `\`) {
		return siteurl.BuildHomepage()
	}
	return redirect
}
