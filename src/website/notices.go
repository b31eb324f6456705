package website

import (
	"encoding/base64"
	"errors"
	"html"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/sciclub/clubsite/src/config"
	"github.com/sciclub/clubsite/src/templates"
)

const NoticesCookieName = "club_notices"

// Before encoding.
const maxNoticesCookieSize = 1024

func getNoticesFromCookie(c *RequestContext) []templates.Notice {
	cookie, err := c.Req.Cookie(NoticesCookieName)
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) {
			c.Logger.Warn().Err(err).Msg("failed to get notices cookie")
		}
		return nil
	}
	return deserializeNoticesFromCookie(cookie.Value)
}

func storeNoticesInCookie(c *RequestContext, res *ResponseData) {
	serialized := serializeNoticesForCookie(c, res.FutureNotices)
	if serialized != "" {
		noticesCookie := http.Cookie{
			Name:     NoticesCookieName,
			Value:    serialized,
			Path:     "/",
			Domain:   config.Config.Auth.CookieDomain,
			Expires:  time.Now().Add(time.Minute * 5),
			Secure:   config.Config.Auth.CookieSecure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		res.SetCookie(&noticesCookie)
	} else if !(res.StatusCode >= 300 && res.StatusCode < 400) {
		// Don't clear on redirect; the next page shows them.
		noticesCookie := http.Cookie{
			Name:   NoticesCookieName,
			Path:   "/",
			Domain: config.Config.Auth.CookieDomain,
			MaxAge: -1,
		}
		res.SetCookie(&noticesCookie)
	}
}

// Notices are stored as plain text and escaped again when read back, so a
// forged cookie cannot inject markup. The whole value is base64 encoded since
// cookies cannot carry tabs.
func serializeNoticesForCookie(c *RequestContext, notices []templates.Notice) string {
	var builder strings.Builder
	size := 0
	for i, notice := range notices {
		text := strings.ReplaceAll(html.UnescapeString(string(notice.Content)), "\t", " ")
		sizeIncrease := len(notice.Class) + len(text) + 1
		if i != 0 {
			sizeIncrease += 1
		}
		if size+sizeIncrease > maxNoticesCookieSize {
			c.Logger.Warn().Interface("Notices", notices).Msg("Notices too big for cookie")
			break
		}

		if i != 0 {
			builder.WriteString("\t")
		}
		builder.WriteString(notice.Class)
		builder.WriteString("|")
		builder.WriteString(text)

		size += sizeIncrease
	}
	if builder.Len() == 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(builder.String()))
}

func deserializeNoticesFromCookie(cookieVal string) []templates.Notice {
	decoded, err := base64.RawURLEncoding.DecodeString(cookieVal)
	if err != nil {
		return nil
	}

	var result []templates.Notice
	notices := strings.Split(string(decoded), "\t")
	for _, notice := range notices {
		parts := strings.SplitN(notice, "|", 2)
		if len(parts) == 2 {
			result = append(result, templates.Notice{
				Class:   parts[0],
				Content: template.HTML(template.HTMLEscapeString(parts[1])),
			})
		}
	}
	return result
}

func storeNoticesInCookieMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		storeNoticesInCookie(c, &res)
		return res
	}
}
