package website

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sciclub/clubsite/src/clubdata"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/sciclub/clubsite/src/roles"
	"github.com/sciclub/clubsite/src/siteurl"
	"github.com/sciclub/clubsite/src/templates"
)

type AdminRolesData struct {
	templates.BaseData

	Errors          []string
	GrantUrl        string
	RevokeUrl       string
	AssignableRoles []string
	Assignments     []templates.RoleAssignment
}

type roleGrantForm struct {
	Username string `label:"Username" validate:"required,max=100"`
	Role     string `label:"Role" validate:"required,oneof=admin editor member"`
}

func AdminRoles(c *RequestContext) ResponseData {
	return renderAdminRoles(c, nil)
}

func renderAdminRoles(c *RequestContext, errs []string) ResponseData {
	rows, err := clubdata.FetchRoleAssignments(c, c.Conn)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	tmpl := AdminRolesData{
		BaseData:  getBaseData(c, "Roles"),
		Errors:    errs,
		GrantUrl:  siteurl.BuildAdminRolesGrant(),
		RevokeUrl: siteurl.BuildAdminRolesRevoke(),
	}
	for _, role := range roles.Assignable {
		tmpl.AssignableRoles = append(tmpl.AssignableRoles, role.Tag())
	}
	for _, row := range rows {
		tmpl.Assignments = append(tmpl.Assignments, templates.RoleAssignmentToTemplate(row))
	}

	var res ResponseData
	if len(errs) > 0 {
		res.StatusCode = http.StatusUnprocessableEntity
	}
	res.MustWriteTemplate("admin_roles.html", tmpl, c.Perf)
	return res
}

func AdminRolesGrant(c *RequestContext) ResponseData {
	values, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}
	form := roleGrantForm{
		Username: formString(values, "username"),
		Role:     formString(values, "role"),
	}
	if errs := validateForm(form); errs != nil {
		return renderAdminRoles(c, errs)
	}

	role, err := roles.Parse(form.Role)
	if err != nil {
		return renderAdminRoles(c, []string{"Unknown role."})
	}

	user, err := clubdata.FetchUserByUsername(c, c.Conn, form.Username)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return renderAdminRoles(c, []string{fmt.Sprintf("There is no user named %s.", form.Username)})
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	err = clubdata.GrantRole(c, c.Conn, user.ID, role, &c.CurrentUser.ID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to grant role"))
	}
	c.Logger.Info().
		Str("admin", c.CurrentUser.Username).
		Str("username", user.Username).
		Str("role", role.Tag()).
		Msg("role granted")

	res := c.Redirect(siteurl.BuildAdminRoles(), http.StatusSeeOther)
	res.AddFutureNotice("success", fmt.Sprintf("%s is now %s.", user.Username, role.Tag()))
	return res
}

// Admins cannot revoke their own admin role, so the site always keeps at
// least the admin who is doing the revoking.
func AdminRolesRevoke(c *RequestContext) ResponseData {
	values, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}

	userID, err := strconv.Atoi(values.Get("user_id"))
	if err != nil {
		return c.RejectRequest("That is not a valid user.")
	}
	role, err := roles.Parse(values.Get("role"))
	if err != nil {
		return c.RejectRequest("That is not a valid role.")
	}

	if userID == c.CurrentUser.ID && role == roles.Admin {
		return renderAdminRoles(c, []string{"You cannot revoke your own admin role. Ask another admin to do it."})
	}

	err = clubdata.RevokeRole(c, c.Conn, userID, role)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return renderAdminRoles(c, []string{"That user does not hold that role."})
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to revoke role"))
	}
	c.Logger.Info().
		Str("admin", c.CurrentUser.Username).
		Int("userID", userID).
		Str("role", role.Tag()).
		Msg("role revoked")

	res := c.Redirect(siteurl.BuildAdminRoles(), http.StatusSeeOther)
	res.AddFutureNotice("success", "Role revoked.")
	return res
}
