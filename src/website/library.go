package website

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/clubdata"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/siteurl"
	"github.com/sciclub/clubsite/src/templates"
)

type LibraryTemplateData struct {
	templates.BaseData

	Categories      []templates.LibraryCategory
	AllUrl          string
	CurrentCategory string
	Groups          []templates.LibraryCategory
}

// Lists resources grouped by category. ?category= narrows the page to one
// category, matched without regard to case.
func Library(c *RequestContext) ResponseData {
	category := strings.TrimSpace(c.Req.URL.Query().Get("category"))

	categories, err := clubdata.FetchLibraryCategories(c, c.Conn)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	resources, err := clubdata.FetchLibraryResources(c, c.Conn, clubdata.LibraryQuery{Category: category})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	if category != "" && len(resources) == 0 {
		return FourOhFour(c)
	}

	var fileIDs []*uuid.UUID
	for _, resource := range resources {
		fileIDs = append(fileIDs, resource.FileAssetID)
	}
	urls, err := fetchAssetUrls(c, fileIDs...)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	title := "Library"
	if category != "" {
		title = category + " | Library"
	}
	tmpl := LibraryTemplateData{
		BaseData:        getBaseData(c, title),
		AllUrl:          siteurl.BuildLibrary(),
		CurrentCategory: category,
		Groups:          templates.GroupLibrary(resources, urls),
	}
	for _, name := range categories {
		tmpl.Categories = append(tmpl.Categories, templates.LibraryCategory{
			Name: name,
			Url:  siteurl.BuildLibraryCategory(name),
		})
	}

	var res ResponseData
	res.MustWriteTemplate("library.html", tmpl, c.Perf)
	return res
}

type libraryForm struct {
	Title       string `label:"Title" validate:"required,max=200"`
	Category    string `label:"Category" validate:"required,max=100"`
	Description string `label:"Description" validate:"max=5000"`
	Url         string `label:"Link" validate:"omitempty,url"`
	FileAssetID string `label:"Attached file" validate:"omitempty,uuid"`
}

func readLibraryForm(form url.Values) libraryForm {
	return libraryForm{
		Title:       formString(form, "title"),
		Category:    formString(form, "category"),
		Description: formString(form, "description"),
		Url:         formString(form, "url"),
		FileAssetID: formString(form, "file_asset_id"),
	}
}

func libraryFormFrom(r *models.LibraryResource) libraryForm {
	return libraryForm{
		Title:       r.Title,
		Category:    r.Category,
		Description: r.Description,
		Url:         r.Url,
		FileAssetID: optionalUUIDString(r.FileAssetID),
	}
}

func (f libraryForm) input() (clubdata.LibraryResourceInput, []string) {
	if errs := validateForm(f); errs != nil {
		return clubdata.LibraryResourceInput{}, errs
	}
	if f.Url == "" && f.FileAssetID == "" {
		return clubdata.LibraryResourceInput{}, []string{"A resource needs a link or an attached file."}
	}

	return clubdata.LibraryResourceInput{
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
		Url:         f.Url,
		FileAssetID: parseOptionalUUID(f.FileAssetID),
	}, nil
}

func newLibraryEditData(c *RequestContext, title string, isNew bool, submitUrl string, form libraryForm) (AdminEditData[libraryForm], error) {
	data, err := newAdminEditData(c, title, isNew, submitUrl, siteurl.BuildAdminLibrary(), form)
	if err != nil {
		return data, err
	}
	data.Categories, err = clubdata.FetchLibraryCategories(c, c.Conn)
	if err != nil {
		return data, oops.New(err, "failed to fetch category suggestions")
	}
	return data, nil
}

func AdminLibrary(c *RequestContext) ResponseData {
	resources, err := clubdata.FetchLibraryResources(c, c.Conn, clubdata.LibraryQuery{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	tmpl := AdminListData{
		BaseData: getBaseData(c, "Library"),
		NewUrl:   siteurl.BuildAdminLibraryNew(),
	}
	for _, resource := range resources {
		tmpl.Resources = append(tmpl.Resources, templates.LibraryResourceToTemplate(resource, nil))
	}

	var res ResponseData
	res.MustWriteTemplate("admin_library.html", tmpl, c.Perf)
	return res
}

func AdminLibraryNew(c *RequestContext) ResponseData {
	data, err := newLibraryEditData(c, "New library resource", true, siteurl.BuildAdminLibraryNew(), libraryForm{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	return renderAdminEdit(c, "admin_library_edit.html", data)
}

func AdminLibraryNewSubmit(c *RequestContext) ResponseData {
	values, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}
	form := readLibraryForm(values)

	in, errs := form.input()
	if errs != nil {
		data, err := newLibraryEditData(c, "New library resource", true, siteurl.BuildAdminLibraryNew(), form)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
		data.Errors = errs
		return renderAdminEdit(c, "admin_library_edit.html", data)
	}

	resource, err := clubdata.CreateLibraryResource(c, c.Conn, in)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create library resource"))
	}

	res := c.Redirect(siteurl.BuildAdminLibrary(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Created \""+resource.Title+"\".")
	return res
}

func AdminLibraryEdit(c *RequestContext) ResponseData {
	resource, errRes := fetchFromPath(c, clubdata.FetchLibraryResource)
	if errRes != nil {
		return *errRes
	}

	data, err := newLibraryEditData(c, "Edit library resource", false, siteurl.BuildAdminLibraryEdit(resource.ID), libraryFormFrom(resource))
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	return renderAdminEdit(c, "admin_library_edit.html", data)
}

func AdminLibraryEditSubmit(c *RequestContext) ResponseData {
	resource, errRes := fetchFromPath(c, clubdata.FetchLibraryResource)
	if errRes != nil {
		return *errRes
	}

	values, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}
	form := readLibraryForm(values)

	in, errs := form.input()
	if errs != nil {
		data, err := newLibraryEditData(c, "Edit library resource", false, siteurl.BuildAdminLibraryEdit(resource.ID), form)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
		data.Errors = errs
		return renderAdminEdit(c, "admin_library_edit.html", data)
	}

	updated, err := clubdata.UpdateLibraryResource(c, c.Conn, resource.ID, in)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to update library resource"))
	}

	res := c.Redirect(siteurl.BuildAdminLibrary(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Saved \""+updated.Title+"\".")
	return res
}

func AdminLibraryDelete(c *RequestContext) ResponseData {
	resource, errRes := fetchFromPath(c, clubdata.FetchLibraryResource)
	if errRes != nil {
		return *errRes
	}
	return renderAdminDelete(c, "library resource", resource.Title, siteurl.BuildAdminLibraryDelete(resource.ID), siteurl.BuildAdminLibrary())
}

func AdminLibraryDeleteSubmit(c *RequestContext) ResponseData {
	resource, errRes := fetchFromPath(c, clubdata.FetchLibraryResource)
	if errRes != nil {
		return *errRes
	}

	err := clubdata.DeleteLibraryResource(c, c.Conn, resource.ID)
	if err != nil && !errors.Is(err, db.NotFound) {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	res := c.Redirect(siteurl.BuildAdminLibrary(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Deleted \""+resource.Title+"\".")
	return res
}
