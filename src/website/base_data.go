package website

import (
	"time"

	"github.com/sciclub/clubsite/src/config"
	"github.com/sciclub/clubsite/src/siteurl"
	"github.com/sciclub/clubsite/src/templates"
)

func getBaseData(c *RequestContext, title string) templates.BaseData {
	var templateUser *templates.User
	var templateSession *templates.Session
	if c.CurrentUser != nil {
		u := templates.UserToTemplate(c.CurrentUser)
		templateUser = &u
	}
	if c.CurrentSession != nil {
		s := templates.SessionToTemplate(c.CurrentSession)
		templateSession = &s
	}

	fullTitle := config.Config.ClubName
	if title != "" {
		fullTitle = title + " | " + config.Config.ClubName
	}

	baseData := templates.BaseData{
		Title:      fullTitle,
		ClubName:   config.Config.ClubName,
		ThemeColor: config.Config.ThemeColor,
		CurrentUrl: c.FullUrl(),

		User:    templateUser,
		Session: templateSession,
		Notices: getNoticesFromCookie(c),

		CanPublish:     c.CurrentRole.CanPublish(),
		CanManageRoles: c.CurrentRole.CanManageRoles(),

		OpenGraphItems: []templates.OpenGraphItem{
			{Property: "og:site_name", Value: config.Config.ClubName},
			{Property: "og:type", Value: "website"},
			{Property: "og:title", Value: fullTitle},
			{Property: "og:url", Value: c.FullUrl()},
		},

		Header: templates.Header{
			HomepageUrl:     siteurl.BuildHomepage(),
			JournalUrl:      siteurl.BuildJournal(),
			EventsUrl:       siteurl.BuildEvents(),
			PublicationsUrl: siteurl.BuildPublications(),
			LibraryUrl:      siteurl.BuildLibrary(),
			TeamUrl:         siteurl.BuildTeam(),

			LoginUrl:  siteurl.BuildLoginWithRedirect(c.LocalUrl()),
			LogoutUrl: siteurl.BuildLogout(),

			AdminUrl:      siteurl.BuildAdmin(),
			AdminRolesUrl: siteurl.BuildAdminRoles(),
		},
		Footer: templates.Footer{
			HomepageUrl:    siteurl.BuildHomepage(),
			JournalFeedUrl: siteurl.BuildJournalFeed(),
			Year:           time.Now().Year(),
		},
	}

	if c.CurrentUser != nil {
		baseData.RoleName = c.CurrentRole.String()
	}

	return baseData
}
