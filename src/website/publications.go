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

type PublicationsTemplateData struct {
	templates.BaseData

	Publications []templates.Publication
}

func Publications(c *RequestContext) ResponseData {
	publications, err := clubdata.FetchPublications(c, c.Conn)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var coverIDs []*uuid.UUID
	for _, pub := range publications {
		coverIDs = append(coverIDs, pub.CoverAssetID)
	}
	urls, err := fetchAssetUrls(c, coverIDs...)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	tmpl := PublicationsTemplateData{
		BaseData: getBaseData(c, "Publications"),
	}
	for _, pub := range publications {
		tmpl.Publications = append(tmpl.Publications, templates.PublicationToTemplate(pub, urls))
	}

	var res ResponseData
	res.MustWriteTemplate("publications.html", tmpl, c.Perf)
	return res
}

type publicationForm struct {
	Title        string `label:"Title" validate:"required,max=300"`
	Authors      string `label:"Authors" validate:"required,max=1000"`
	Venue        string `label:"Venue" validate:"max=300"`
	Abstract     string `label:"Abstract" validate:"max=10000"`
	Citation     string `label:"Citation" validate:"max=2000"`
	Url          string `label:"Link" validate:"omitempty,url"`
	PublishedOn  string `label:"Published on" validate:"required,datetime=2006-01-02"`
	CoverAssetID string `label:"Cover image" validate:"omitempty,uuid"`
}

func readPublicationForm(form url.Values) publicationForm {
	return publicationForm{
		Title:        formString(form, "title"),
		Authors:      formString(form, "authors"),
		Venue:        formString(form, "venue"),
		Abstract:     formString(form, "abstract"),
		Citation:     formString(form, "citation"),
		Url:          formString(form, "url"),
		PublishedOn:  formString(form, "published_on"),
		CoverAssetID: formString(form, "cover_asset_id"),
	}
}

func publicationFormFrom(p *models.Publication) publicationForm {
	return publicationForm{
		Title:        p.Title,
		Authors:      p.Authors,
		Venue:        p.Venue,
		Abstract:     p.Abstract,
		Citation:     p.Citation,
		Url:          p.Url,
		PublishedOn:  p.PublishedOn.UTC().Format(formDateLayout),
		CoverAssetID: optionalUUIDString(p.CoverAssetID),
	}
}

func (f publicationForm) input() (clubdata.PublicationInput, []string) {
	if errs := validateForm(f); errs != nil {
		return clubdata.PublicationInput{}, errs
	}

	publishedOn, err := parseFormTime(formDateLayout, f.PublishedOn)
	if err != nil {
		return clubdata.PublicationInput{}, []string{"Published on is not a valid date."}
	}

	return clubdata.PublicationInput{
		Title:        f.Title,
		Authors:      f.Authors,
		Venue:        f.Venue,
		Abstract:     f.Abstract,
		Citation:     f.Citation,
		Url:          f.Url,
		PublishedOn:  publishedOn,
		CoverAssetID: parseOptionalUUID(f.CoverAssetID),
	}, nil
}

func AdminPublications(c *RequestContext) ResponseData {
	publications, err := clubdata.FetchPublications(c, c.Conn)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	tmpl := AdminListData{
		BaseData: getBaseData(c, "Publications"),
		NewUrl:   siteurl.BuildAdminPublicationNew(),
	}
	for _, pub := range publications {
		tmpl.Publications = append(tmpl.Publications, templates.PublicationToTemplate(pub, nil))
	}

	var res ResponseData
	res.MustWriteTemplate("admin_publications.html", tmpl, c.Perf)
	return res
}

func AdminPublicationNew(c *RequestContext) ResponseData {
	data, err := newAdminEditData(c, "New publication", true, siteurl.BuildAdminPublicationNew(), siteurl.BuildAdminPublications(), publicationForm{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	return renderAdminEdit(c, "admin_publication_edit.html", data)
}

func AdminPublicationNewSubmit(c *RequestContext) ResponseData {
	values, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}
	form := readPublicationForm(values)

	in, errs := form.input()
	if errs != nil {
		data, err := newAdminEditData(c, "New publication", true, siteurl.BuildAdminPublicationNew(), siteurl.BuildAdminPublications(), form)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
		data.Errors = errs
		return renderAdminEdit(c, "admin_publication_edit.html", data)
	}

	pub, err := clubdata.CreatePublication(c, c.Conn, in)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create publication"))
	}

	res := c.Redirect(siteurl.BuildAdminPublications(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Created \""+pub.Title+"\".")
	return res
}

func AdminPublicationEdit(c *RequestContext) ResponseData {
	pub, errRes := fetchFromPath(c, clubdata.FetchPublication)
	if errRes != nil {
		return *errRes
	}

	data, err := newAdminEditData(c, "Edit publication", false, siteurl.BuildAdminPublicationEdit(pub.ID), siteurl.BuildAdminPublications(), publicationFormFrom(pub))
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	return renderAdminEdit(c, "admin_publication_edit.html", data)
}

func AdminPublicationEditSubmit(c *RequestContext) ResponseData {
	pub, errRes := fetchFromPath(c, clubdata.FetchPublication)
	if errRes != nil {
		return *errRes
	}

	values, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}
	form := readPublicationForm(values)

	in, errs := form.input()
	if errs != nil {
		data, err := newAdminEditData(c, "Edit publication", false, siteurl.BuildAdminPublicationEdit(pub.ID), siteurl.BuildAdminPublications(), form)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
		data.Errors = errs
		return renderAdminEdit(c, "admin_publication_edit.html", data)
	}

	updated, err := clubdata.UpdatePublication(c, c.Conn, pub.ID, in)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to update publication"))
	}

	res := c.Redirect(siteurl.BuildAdminPublications(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Saved \""+updated.Title+"\".")
	return res
}

func AdminPublicationDelete(c *RequestContext) ResponseData {
	pub, errRes := fetchFromPath(c, clubdata.FetchPublication)
	if errRes != nil {
		return *errRes
	}
	return renderAdminDelete(c, "publication", pub.Title, siteurl.BuildAdminPublicationDelete(pub.ID), siteurl.BuildAdminPublications())
}

func AdminPublicationDeleteSubmit(c *RequestContext) ResponseData {
	pub, errRes := fetchFromPath(c, clubdata.FetchPublication)
	if errRes != nil {
		return *errRes
	}

	err := clubdata.DeletePublication(c, c.Conn, pub.ID)
	if err != nil && !errors.Is(err, db.NotFound) {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	res := c.Redirect(siteurl.BuildAdminPublications(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Deleted \""+pub.Title+"\".")
	return res
}
