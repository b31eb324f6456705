package website

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sciclub/clubsite/src/logging"
	"github.com/sciclub/clubsite/src/templates"
	"github.com/stretchr/testify/assert"
)

func testRequestContext() *RequestContext {
	return &RequestContext{
		Logger: logging.GlobalLogger(),
		Req:    httptest.NewRequest("GET", "/", nil),
	}
}

func TestNoticesRoundTrip(t *testing.T) {
	c := testRequestContext()

	var res ResponseData
	res.AddFutureNotice("success", "Saved <b>everything</b>")
	res.AddFutureNotice("failure", "Tabs\tand|pipes")

	serialized := serializeNoticesForCookie(c, res.FutureNotices)
	assert.NotContains(t, serialized, "\t")

	notices := deserializeNoticesFromCookie(serialized)
	if assert.Len(t, notices, 2) {
		assert.Equal(t, res.FutureNotices[0], notices[0])
		assert.Equal(t, "failure", notices[1].Class)
		assert.Equal(t, "Tabs and|pipes", string(notices[1].Content))
	}
}

func TestNoticesForgedCookieIsEscaped(t *testing.T) {
	c := testRequestContext()
	forged := serializeNoticesForCookie(c, []templates.Notice{
		{Class: "success", Content: "<script>alert(1)</script>"},
	})

	notices := deserializeNoticesFromCookie(forged)
	if assert.Len(t, notices, 1) {
		assert.NotContains(t, string(notices[0].Content), "<script>")
	}
}

func TestNoticesSizeLimit(t *testing.T) {
	c := testRequestContext()

	var res ResponseData
	res.AddFutureNotice("success", "first")
	res.AddFutureNotice("success", strings.Repeat("x", maxNoticesCookieSize))

	notices := deserializeNoticesFromCookie(serializeNoticesForCookie(c, res.FutureNotices))
	if assert.Len(t, notices, 1) {
		assert.Equal(t, "first", string(notices[0].Content))
	}
}

func TestNoticesBadCookie(t *testing.T) {
	assert.Empty(t, deserializeNoticesFromCookie("not base64!"))
	assert.Empty(t, serializeNoticesForCookie(testRequestContext(), nil))
}
