package website

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/clubdata"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/siteurl"
	"github.com/sciclub/clubsite/src/templates"
)

type articleForm struct {
	Title        string `label:"Title" validate:"required,max=200"`
	Summary      string `label:"Summary" validate:"max=500"`
	Body         string `label:"Body" validate:"max=200000"`
	CoverAssetID string `label:"Cover image" validate:"omitempty,uuid"`
	Published    bool
}

func readArticleForm(form url.Values) articleForm {
	return articleForm{
		Title:        formString(form, "title"),
		Summary:      formString(form, "summary"),
		Body:         form.Get("body"),
		CoverAssetID: formString(form, "cover_asset_id"),
		Published:    formBool(form, "published"),
	}
}

func articleFormFrom(a *models.Article) articleForm {
	return articleForm{
		Title:        a.Title,
		Summary:      a.Summary,
		Body:         a.BodyRaw,
		CoverAssetID: optionalUUIDString(a.CoverAssetID),
		Published:    a.Published,
	}
}

func (f articleForm) input(authorID *int) clubdata.ArticleInput {
	return clubdata.ArticleInput{
		AuthorID:     authorID,
		Title:        f.Title,
		Summary:      f.Summary,
		BodyRaw:      f.Body,
		CoverAssetID: parseOptionalUUID(f.CoverAssetID),
		Published:    f.Published,
	}
}

func AdminArticles(c *RequestContext) ResponseData {
	articles, err := clubdata.FetchArticles(c, c.Conn, clubdata.ArticlesQuery{IncludeUnpublished: true})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	tmpl := AdminListData{
		BaseData: getBaseData(c, "Articles"),
		NewUrl:   siteurl.BuildAdminArticleNew(),
	}
	for _, article := range articles {
		tmpl.Articles = append(tmpl.Articles, templates.ArticleToTemplate(article, nil, nil))
	}

	var res ResponseData
	res.MustWriteTemplate("admin_articles.html", tmpl, c.Perf)
	return res
}

func AdminArticleNew(c *RequestContext) ResponseData {
	data, err := newAdminEditData(c, "New article", true, siteurl.BuildAdminArticleNew(), siteurl.BuildAdminArticles(), articleForm{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	return renderAdminEdit(c, "admin_article_edit.html", data)
}

func AdminArticleNewSubmit(c *RequestContext) ResponseData {
	values, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}
	form := readArticleForm(values)

	if errs := validateForm(form); errs != nil {
		data, err := newAdminEditData(c, "New article", true, siteurl.BuildAdminArticleNew(), siteurl.BuildAdminArticles(), form)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
		data.Errors = errs
		return renderAdminEdit(c, "admin_article_edit.html", data)
	}

	article, err := clubdata.CreateArticle(c, c.Conn, form.input(&c.CurrentUser.ID))
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create article"))
	}
	c.Logger.Info().Str("article", article.ID.String()).Str("username", c.CurrentUser.Username).Msg("article created")

	res := c.Redirect(siteurl.BuildAdminArticles(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Created \""+article.Title+"\".")
	return res
}

func articleFromPath(c *RequestContext) (*models.Article, *ResponseData) {
	id, err := uuid.Parse(c.PathParams["id"])
	if err != nil {
		res := FourOhFour(c)
		return nil, &res
	}
	article, err := clubdata.FetchArticle(c, c.Conn, id)
	if err != nil {
		var res ResponseData
		if errors.Is(err, db.NotFound) {
			res = FourOhFour(c)
		} else {
			res = c.ErrorResponse(http.StatusInternalServerError, err)
		}
		return nil, &res
	}
	return article, nil
}

func AdminArticleEdit(c *RequestContext) ResponseData {
	article, errRes := articleFromPath(c)
	if errRes != nil {
		return *errRes
	}

	data, err := newAdminEditData(c, "Edit article", false, siteurl.BuildAdminArticleEdit(article.ID), siteurl.BuildAdminArticles(), articleFormFrom(article))
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	return renderAdminEdit(c, "admin_article_edit.html", data)
}

func AdminArticleEditSubmit(c *RequestContext) ResponseData {
	article, errRes := articleFromPath(c)
	if errRes != nil {
		return *errRes
	}

	values, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}
	form := readArticleForm(values)

	if errs := validateForm(form); errs != nil {
		data, err := newAdminEditData(c, "Edit article", false, siteurl.BuildAdminArticleEdit(article.ID), siteurl.BuildAdminArticles(), form)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
		data.Errors = errs
		return renderAdminEdit(c, "admin_article_edit.html", data)
	}

	updated, err := clubdata.UpdateArticle(c, c.Conn, article.ID, form.input(article.AuthorID))
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to update article"))
	}

	res := c.Redirect(siteurl.BuildAdminArticles(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Saved \""+updated.Title+"\".")
	return res
}

func AdminArticleDelete(c *RequestContext) ResponseData {
	article, errRes := articleFromPath(c)
	if errRes != nil {
		return *errRes
	}
	return renderAdminDelete(c, "article", article.Title, siteurl.BuildAdminArticleDelete(article.ID), siteurl.BuildAdminArticles())
}

func AdminArticleDeleteSubmit(c *RequestContext) ResponseData {
	article, errRes := articleFromPath(c)
	if errRes != nil {
		return *errRes
	}

	err := clubdata.DeleteArticle(c, c.Conn, article.ID)
	if err != nil && !errors.Is(err, db.NotFound) {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	c.Logger.Info().Str("article", article.ID.String()).Str("username", c.CurrentUser.Username).Msg("article deleted")

	res := c.Redirect(siteurl.BuildAdminArticles(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Deleted \""+article.Title+"\".")
	return res
}
