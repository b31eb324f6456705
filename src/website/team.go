package website

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/clubdata"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/siteurl"
	"github.com/sciclub/clubsite/src/templates"
)

type TeamTemplateData struct {
	templates.BaseData

	Members []templates.TeamMember
}

func Team(c *RequestContext) ResponseData {
	members, err := clubdata.FetchTeamMembers(c, c.Conn, clubdata.TeamQuery{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var photoIDs []*uuid.UUID
	for _, member := range members {
		photoIDs = append(photoIDs, member.PhotoAssetID)
	}
	urls, err := fetchAssetUrls(c, photoIDs...)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	tmpl := TeamTemplateData{
		BaseData: getBaseData(c, "Team"),
	}
	for _, member := range members {
		tmpl.Members = append(tmpl.Members, templates.TeamMemberToTemplate(member, urls))
	}

	var res ResponseData
	res.MustWriteTemplate("team.html", tmpl, c.Perf)
	return res
}

type teamForm struct {
	Name         string `label:"Name" validate:"required,max=200"`
	Position     string `label:"Position" validate:"required,max=200"`
	Email        string `label:"Email" validate:"omitempty,email"`
	Bio          string `label:"Bio" validate:"max=20000"`
	PhotoAssetID string `label:"Photo" validate:"omitempty,uuid"`
	SortOrder    string `label:"Sort order" validate:"omitempty,number"`
	Active       bool
}

func readTeamForm(form url.Values) teamForm {
	return teamForm{
		Name:         formString(form, "name"),
		Position:     formString(form, "position"),
		Email:        formString(form, "email"),
		Bio:          form.Get("bio"),
		PhotoAssetID: formString(form, "photo_asset_id"),
		SortOrder:    formString(form, "sort_order"),
		Active:       formBool(form, "active"),
	}
}

func teamFormFrom(m *models.TeamMember) teamForm {
	return teamForm{
		Name:         m.Name,
		Position:     m.Position,
		Email:        m.Email,
		Bio:          m.BioRaw,
		PhotoAssetID: optionalUUIDString(m.PhotoAssetID),
		SortOrder:    strconv.Itoa(m.SortOrder),
		Active:       m.Active,
	}
}

func (f teamForm) input() (clubdata.TeamMemberInput, []string) {
	if errs := validateForm(f); errs != nil {
		return clubdata.TeamMemberInput{}, errs
	}

	sortOrder, err := parseFormInt(f.SortOrder)
	if err != nil {
		return clubdata.TeamMemberInput{}, []string{"Sort order is too large."}
	}

	return clubdata.TeamMemberInput{
		Name:         f.Name,
		Position:     f.Position,
		Email:        f.Email,
		BioRaw:       f.Bio,
		PhotoAssetID: parseOptionalUUID(f.PhotoAssetID),
		SortOrder:    sortOrder,
		Active:       f.Active,
	}, nil
}

func AdminTeam(c *RequestContext) ResponseData {
	members, err := clubdata.FetchTeamMembers(c, c.Conn, clubdata.TeamQuery{IncludeInactive: true})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	tmpl := AdminListData{
		BaseData: getBaseData(c, "Team"),
		NewUrl:   siteurl.BuildAdminTeamNew(),
	}
	for _, member := range members {
		tmpl.Members = append(tmpl.Members, templates.TeamMemberToTemplate(member, nil))
	}

	var res ResponseData
	res.MustWriteTemplate("admin_team.html", tmpl, c.Perf)
	return res
}

func AdminTeamNew(c *RequestContext) ResponseData {
	data, err := newAdminEditData(c, "New team member", true, siteurl.BuildAdminTeamNew(), siteurl.BuildAdminTeam(), teamForm{Active: true})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	return renderAdminEdit(c, "admin_team_edit.html", data)
}

func AdminTeamNewSubmit(c *RequestContext) ResponseData {
	values, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}
	form := readTeamForm(values)

	in, errs := form.input()
	if errs != nil {
		data, err := newAdminEditData(c, "New team member", true, siteurl.BuildAdminTeamNew(), siteurl.BuildAdminTeam(), form)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
		data.Errors = errs
		return renderAdminEdit(c, "admin_team_edit.html", data)
	}

	member, err := clubdata.CreateTeamMember(c, c.Conn, in)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create team member"))
	}

	res := c.Redirect(siteurl.BuildAdminTeam(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Added "+member.Name+".")
	return res
}

func AdminTeamEdit(c *RequestContext) ResponseData {
	member, errRes := fetchFromPath(c, clubdata.FetchTeamMember)
	if errRes != nil {
		return *errRes
	}

	data, err := newAdminEditData(c, "Edit team member", false, siteurl.BuildAdminTeamEdit(member.ID), siteurl.BuildAdminTeam(), teamFormFrom(member))
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	return renderAdminEdit(c, "admin_team_edit.html", data)
}

func AdminTeamEditSubmit(c *RequestContext) ResponseData {
	member, errRes := fetchFromPath(c, clubdata.FetchTeamMember)
	if errRes != nil {
		return *errRes
	}

	values, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}
	form := readTeamForm(values)

	in, errs := form.input()
	if errs != nil {
		data, err := newAdminEditData(c, "Edit team member", false, siteurl.BuildAdminTeamEdit(member.ID), siteurl.BuildAdminTeam(), form)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
		data.Errors = errs
		return renderAdminEdit(c, "admin_team_edit.html", data)
	}

	updated, err := clubdata.UpdateTeamMember(c, c.Conn, member.ID, in)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to update team member"))
	}

	res := c.Redirect(siteurl.BuildAdminTeam(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Saved "+updated.Name+".")
	return res
}

func AdminTeamDelete(c *RequestContext) ResponseData {
	member, errRes := fetchFromPath(c, clubdata.FetchTeamMember)
	if errRes != nil {
		return *errRes
	}
	return renderAdminDelete(c, "team member", member.Name, siteurl.BuildAdminTeamDelete(member.ID), siteurl.BuildAdminTeam())
}

func AdminTeamDeleteSubmit(c *RequestContext) ResponseData {
	member, errRes := fetchFromPath(c, clubdata.FetchTeamMember)
	if errRes != nil {
		return *errRes
	}

	err := clubdata.DeleteTeamMember(c, c.Conn, member.ID)
	if err != nil && !errors.Is(err, db.NotFound) {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	res := c.Redirect(siteurl.BuildAdminTeam(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Removed "+member.Name+".")
	return res
}
