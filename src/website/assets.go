package website

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sciclub/clubsite/src/assets"
	"github.com/sciclub/clubsite/src/siteurl"
)

type AssetUploadResult struct {
	ID     string `json:"id,omitempty"`
	Url    string `json:"url,omitempty"`
	Mime   string `json:"mime,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Expects a multipart form with the file in the "file" field. Responds with
// JSON, except for plain browser form posts, which are redirected back to the
// dashboard with a notice.
func AssetUpload(c *RequestContext) ResponseData {
	wantsHtml := strings.Contains(c.Req.Header.Get("Accept"), "text/html")

	fail := func(status int, msg string, errs ...error) ResponseData {
		if wantsHtml {
			res := c.Redirect(siteurl.BuildAdmin(), http.StatusSeeOther)
			res.AddFutureNotice("failure", msg)
			res.Errors = errs
			return res
		}
		res := ResponseData{
			StatusCode: status,
			Errors:     errs,
		}
		res.WriteJson(AssetUploadResult{Error: msg}, c.Perf)
		return res
	}

	if c.Req.ContentLength > maxFormSize {
		return fail(http.StatusRequestEntityTooLarge, fmt.Sprintf("File is too big. The maximum size is %d MB.", assets.MaxUploadSize/1024/1024))
	}

	file, header, err := c.Req.FormFile("file")
	if err != nil {
		return fail(http.StatusBadRequest, "No file was uploaded.")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, assets.MaxUploadSize+1))
	if err != nil {
		return fail(http.StatusBadRequest, "Failed to read the uploaded file.", err)
	}

	asset, err := assets.Create(c, c.Conn, assets.CreateInput{
		Content:     data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		UploaderID:  &c.CurrentUser.ID,
	})
	if err != nil {
		var invalid assets.InvalidAssetError
		if errors.As(err, &invalid) {
			return fail(http.StatusBadRequest, invalid.Reason)
		}
		return fail(http.StatusInternalServerError, "The file could not be stored. Please try again later.", err)
	}

	c.Logger.Info().
		Str("asset", asset.ID.String()).
		Str("filename", asset.Filename).
		Int("size", asset.Size).
		Msg("asset uploaded")

	url := assets.PublicURL(asset.S3Key)
	if wantsHtml {
		res := c.Redirect(siteurl.BuildAdmin(), http.StatusSeeOther)
		res.AddFutureNotice("success", fmt.Sprintf("Uploaded %s.", asset.Filename))
		return res
	}

	var res ResponseData
	res.WriteJson(AssetUploadResult{
		ID:     asset.ID.String(),
		Url:    url,
		Mime:   asset.MimeType,
		Width:  asset.Width,
		Height: asset.Height,
	}, c.Perf)
	return res
}
