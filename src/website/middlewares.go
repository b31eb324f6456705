package website

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sciclub/clubsite/src/assets"
	"github.com/sciclub/clubsite/src/auth"
	"github.com/sciclub/clubsite/src/logging"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/perf"
	"github.com/sciclub/clubsite/src/roles"
	"github.com/sciclub/clubsite/src/siteurl"
)

func panicCatcherMiddleware(h Handler) Handler {
	return func(c *RequestContext) (res ResponseData) {
		defer func() {
			if recovered := recover(); recovered != nil {
				maybeError, ok := recovered.(*error)
				var err error
				if ok {
					err = *maybeError
				} else if asErr, ok := recovered.(error); ok {
					err = oops.New(asErr, "Recovered from panic")
				} else {
					err = oops.New(nil, fmt.Sprintf("Recovered from panic with value: %v", recovered))
				}
				res = c.ErrorResponse(http.StatusInternalServerError, err)
			}
		}()

		return h(c)
	}
}

func trackRequestPerf(perfCollector *perf.PerfCollector) func(Handler) Handler {
	return func(h Handler) Handler {
		return func(c *RequestContext) ResponseData {
			c.Perf = perf.MakeNewRequestPerf(c.Route, c.Req.Method, c.Req.URL.Path)
			c.PerfCollector = perfCollector
			c.ctx = perf.AttachPerf(c.ctx, c.Perf)
			c.ctx = logging.AttachLoggerToContext(c.Logger, c.ctx)
			defer func() {
				c.Perf.EndRequest()
				log := logging.Debug()
				blockStack := make([]time.Time, 0)
				for i, block := range c.Perf.Blocks {
					for len(blockStack) > 0 && block.End.After(blockStack[len(blockStack)-1]) {
						blockStack = blockStack[:len(blockStack)-1]
					}
					log.Str(fmt.Sprintf("[%4.d] At %9.2fms", i, c.Perf.MsFromStart(&block)), fmt.Sprintf("%*.s[%s] %s (%.4fms)", len(blockStack)*2, "", block.Category, block.Description, block.DurationMs()))
					blockStack = append(blockStack, block.End)
				}
				log.Msg(fmt.Sprintf("Served [%s] %s in %.4fms", c.Perf.Method, c.Perf.Path, float64(c.Perf.Duration().Nanoseconds())/1000/1000))
				if perfCollector != nil {
					perfCollector.SubmitRun(c.Perf)
				}
			}()

			return h(c)
		}
	}
}

func needsAuth(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentUser == nil {
			return c.Redirect(siteurl.BuildLoginWithRedirect(c.LocalUrl()), http.StatusSeeOther)
		}

		return h(c)
	}
}

// Editors and admins. Logged-out visitors are sent to the login page; anyone
// else without the capability gets a 404, the same as a page that does not
// exist.
func publishersOnly(h Handler) Handler {
	return needsAuth(func(c *RequestContext) ResponseData {
		if !c.CurrentRole.CanPublish() {
			return FourOhFour(c)
		}

		return h(c)
	})
}

func adminsOnly(h Handler) Handler {
	return needsAuth(func(c *RequestContext) ResponseData {
		if c.CurrentRole != roles.Admin {
			return FourOhFour(c)
		}

		return h(c)
	})
}

// Leaves room for the multipart overhead around a maximum-size upload.
const maxFormSize = assets.MaxUploadSize + 1024*1024

func csrfMiddleware(h Handler) Handler {
	// CSRF mitigation actions per the OWASP cheat sheet:
	// https://cheatsheetseries.owasp.org/cheatsheets/Cross-Site_Request_Forgery_Prevention_Cheat_Sheet.html
	return func(c *RequestContext) ResponseData {
		c.Req.Body = http.MaxBytesReader(c.Res, c.Req.Body, maxFormSize)
		c.Req.ParseMultipartForm(maxFormSize)

		csrfToken := c.Req.Form.Get(auth.CSRFFieldName)
		if csrfToken == "" {
			csrfToken = c.Req.Header.Get("X-CSRF-Token")
		}
		if !auth.CheckCSRFToken(c.CurrentSession, csrfToken) {
			username := ""
			if c.CurrentUser != nil {
				username = c.CurrentUser.Username
			}
			c.Logger.Warn().Str("username", username).Msg("user failed CSRF validation - potential attack?")

			res := c.Redirect(siteurl.BuildHomepage(), http.StatusSeeOther)
			logoutUser(c, &res)

			return res
		}

		return h(c)
	}
}

func logContextErrors(c *RequestContext, errs ...error) {
	for _, err := range errs {
		c.Logger.Error().Timestamp().Stack().Str("Requested", c.FullUrl()).Err(err).Msg("error occurred during request")
	}
}

func logContextErrorsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		logContextErrors(c, res.Errors...)
		return res
	}
}
