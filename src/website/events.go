package website

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/clubdata"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/siteurl"
	"github.com/sciclub/clubsite/src/templates"
)

type EventsTemplateData struct {
	templates.BaseData

	Upcoming []templates.Event
	Past     []templates.Event
}

func Events(c *RequestContext) ResponseData {
	events, err := clubdata.FetchEvents(c, c.Conn)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var coverIDs []*uuid.UUID
	for _, event := range events {
		coverIDs = append(coverIDs, event.CoverAssetID)
	}
	urls, err := fetchAssetUrls(c, coverIDs...)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	upcoming, past := clubdata.SplitEvents(events, time.Now())

	tmpl := EventsTemplateData{
		BaseData: getBaseData(c, "Events"),
	}
	for _, event := range upcoming {
		tmpl.Upcoming = append(tmpl.Upcoming, templates.EventToTemplate(event, true, urls))
	}
	for _, event := range past {
		tmpl.Past = append(tmpl.Past, templates.EventToTemplate(event, false, urls))
	}

	var res ResponseData
	res.MustWriteTemplate("events.html", tmpl, c.Perf)
	return res
}

type eventForm struct {
	Title           string `label:"Title" validate:"required,max=200"`
	Description     string `label:"Description" validate:"max=50000"`
	Location        string `label:"Location" validate:"max=200"`
	RegistrationUrl string `label:"Registration link" validate:"omitempty,url"`
	StartsAt        string `label:"Start" validate:"required,datetime=2006-01-02T15:04"`
	EndsAt          string `label:"End" validate:"omitempty,datetime=2006-01-02T15:04"`
	CoverAssetID    string `label:"Cover image" validate:"omitempty,uuid"`
}

func readEventForm(form url.Values) eventForm {
	return eventForm{
		Title:           formString(form, "title"),
		Description:     form.Get("description"),
		Location:        formString(form, "location"),
		RegistrationUrl: formString(form, "registration_url"),
		StartsAt:        formString(form, "starts_at"),
		EndsAt:          formString(form, "ends_at"),
		CoverAssetID:    formString(form, "cover_asset_id"),
	}
}

func eventFormFrom(e *models.Event) eventForm {
	return eventForm{
		Title:           e.Title,
		Description:     e.DescriptionRaw,
		Location:        e.Location,
		RegistrationUrl: e.RegistrationUrl,
		StartsAt:        e.StartsAt.UTC().Format(formDateTimeLayout),
		EndsAt:          formatOptionalTime(formDateTimeLayout, e.EndsAt),
		CoverAssetID:    optionalUUIDString(e.CoverAssetID),
	}
}

// Validates the form and converts it. Returns user-facing messages when the
// form cannot be saved.
func (f eventForm) input() (clubdata.EventInput, []string) {
	if errs := validateForm(f); errs != nil {
		return clubdata.EventInput{}, errs
	}

	startsAt, err := parseFormTime(formDateTimeLayout, f.StartsAt)
	if err != nil {
		return clubdata.EventInput{}, []string{"Start is not a valid date."}
	}
	endsAt, err := parseOptionalFormTime(formDateTimeLayout, f.EndsAt)
	if err != nil {
		return clubdata.EventInput{}, []string{"End is not a valid date."}
	}
	if endsAt != nil && endsAt.Before(startsAt) {
		return clubdata.EventInput{}, []string{"End must not be before the start."}
	}

	return clubdata.EventInput{
		Title:           f.Title,
		DescriptionRaw:  f.Description,
		Location:        f.Location,
		RegistrationUrl: f.RegistrationUrl,
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		CoverAssetID:    parseOptionalUUID(f.CoverAssetID),
	}, nil
}

func AdminEvents(c *RequestContext) ResponseData {
	events, err := clubdata.FetchEvents(c, c.Conn)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	now := time.Now()
	tmpl := AdminListData{
		BaseData: getBaseData(c, "Events"),
		NewUrl:   siteurl.BuildAdminEventNew(),
	}
	for _, event := range events {
		tmpl.Events = append(tmpl.Events, templates.EventToTemplate(event, event.IsUpcoming(now), nil))
	}

	var res ResponseData
	res.MustWriteTemplate("admin_events.html", tmpl, c.Perf)
	return res
}

func AdminEventNew(c *RequestContext) ResponseData {
	data, err := newAdminEditData(c, "New event", true, siteurl.BuildAdminEventNew(), siteurl.BuildAdminEvents(), eventForm{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	return renderAdminEdit(c, "admin_event_edit.html", data)
}

func AdminEventNewSubmit(c *RequestContext) ResponseData {
	values, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}
	form := readEventForm(values)

	in, errs := form.input()
	if errs != nil {
		data, err := newAdminEditData(c, "New event", true, siteurl.BuildAdminEventNew(), siteurl.BuildAdminEvents(), form)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
		data.Errors = errs
		return renderAdminEdit(c, "admin_event_edit.html", data)
	}

	event, err := clubdata.CreateEvent(c, c.Conn, in)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create event"))
	}

	res := c.Redirect(siteurl.BuildAdminEvents(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Created \""+event.Title+"\".")
	return res
}

func AdminEventEdit(c *RequestContext) ResponseData {
	event, errRes := fetchFromPath(c, clubdata.FetchEvent)
	if errRes != nil {
		return *errRes
	}

	data, err := newAdminEditData(c, "Edit event", false, siteurl.BuildAdminEventEdit(event.ID), siteurl.BuildAdminEvents(), eventFormFrom(event))
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	return renderAdminEdit(c, "admin_event_edit.html", data)
}

func AdminEventEditSubmit(c *RequestContext) ResponseData {
	event, errRes := fetchFromPath(c, clubdata.FetchEvent)
	if errRes != nil {
		return *errRes
	}

	values, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}
	form := readEventForm(values)

	in, errs := form.input()
	if errs != nil {
		data, err := newAdminEditData(c, "Edit event", false, siteurl.BuildAdminEventEdit(event.ID), siteurl.BuildAdminEvents(), form)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
		data.Errors = errs
		return renderAdminEdit(c, "admin_event_edit.html", data)
	}

	updated, err := clubdata.UpdateEvent(c, c.Conn, event.ID, in)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to update event"))
	}

	res := c.Redirect(siteurl.BuildAdminEvents(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Saved \""+updated.Title+"\".")
	return res
}

func AdminEventDelete(c *RequestContext) ResponseData {
	event, errRes := fetchFromPath(c, clubdata.FetchEvent)
	if errRes != nil {
		return *errRes
	}
	return renderAdminDelete(c, "event", event.Title, siteurl.BuildAdminEventDelete(event.ID), siteurl.BuildAdminEvents())
}

func AdminEventDeleteSubmit(c *RequestContext) ResponseData {
	event, errRes := fetchFromPath(c, clubdata.FetchEvent)
	if errRes != nil {
		return *errRes
	}

	err := clubdata.DeleteEvent(c, c.Conn, event.ID)
	if err != nil && !errors.Is(err, db.NotFound) {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	res := c.Redirect(siteurl.BuildAdminEvents(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Deleted \""+event.Title+"\".")
	return res
}
