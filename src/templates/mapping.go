package templates

import (
	"html/template"

	"github.com/google/uuid"
	"github.com/sciclub/clubsite/src/clubdata"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/parsing"
	"github.com/sciclub/clubsite/src/perf"
	"github.com/sciclub/clubsite/src/siteurl"
)

// Public URLs of assets by id, as returned by clubdata.FetchAssetUrls.
type AssetUrls map[uuid.UUID]string

func (urls AssetUrls) get(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return urls[*id]
}

func UserToTemplate(u *models.User) User {
	return User{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.BestName(),
		Email:      u.Email,
		DateJoined: u.DateJoined,
	}
}

func SessionToTemplate(s *models.Session) Session {
	return Session{
		CSRFToken: s.CSRFToken,
	}
}

func ArticleToTemplate(a *models.Article, author *models.User, urls AssetUrls) Article {
	var authorName string
	if author != nil {
		authorName = author.BestName()
	}

	return Article{
		ID:         a.ID.String(),
		ShortID:    a.ShortID(),
		Title:      a.Title,
		Summary:    a.Summary,
		Url:        siteurl.BuildArticle(a.Title, a.ID),
		Content:    template.HTML(a.BodyHTML),
		BodyRaw:    a.BodyRaw,
		CoverUrl:   urls.get(a.CoverAssetID),
		Date:       a.DisplayDate(),
		UpdatedAt:  a.UpdatedAt,
		Published:  a.Published,
		AuthorName: authorName,

		EditUrl:   siteurl.BuildAdminArticleEdit(a.ID),
		DeleteUrl: siteurl.BuildAdminArticleDelete(a.ID),
	}
}

func EventToTemplate(e *models.Event, upcoming bool, urls AssetUrls) Event {
	return Event{
		ID:              e.ID,
		Title:           e.Title,
		Description:     template.HTML(e.DescriptionHTML),
		DescriptionRaw:  e.DescriptionRaw,
		Location:        e.Location,
		RegistrationUrl: e.RegistrationUrl,
		StartsAt:        e.StartsAt,
		EndsAt:          e.EndsAt,
		CoverUrl:        urls.get(e.CoverAssetID),
		Upcoming:        upcoming,

		EditUrl:   siteurl.BuildAdminEventEdit(e.ID),
		DeleteUrl: siteurl.BuildAdminEventDelete(e.ID),
	}
}

func PublicationToTemplate(p *models.Publication, urls AssetUrls) Publication {
	return Publication{
		ID:          p.ID,
		Title:       p.Title,
		Authors:     p.Authors,
		Venue:       p.Venue,
		Abstract:    p.Abstract,
		Citation:    p.Citation,
		Url:         p.Url,
		Links:       parsing.ExtractLinks(p.Citation),
		PublishedOn: p.PublishedOn,
		CoverUrl:    urls.get(p.CoverAssetID),

		EditUrl:   siteurl.BuildAdminPublicationEdit(p.ID),
		DeleteUrl: siteurl.BuildAdminPublicationDelete(p.ID),
	}
}

func LibraryResourceToTemplate(r *models.LibraryResource, urls AssetUrls) LibraryResource {
	return LibraryResource{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Url:         r.Url,
		FileUrl:     urls.get(r.FileAssetID),
		AddedAt:     r.AddedAt,

		EditUrl:   siteurl.BuildAdminLibraryEdit(r.ID),
		DeleteUrl: siteurl.BuildAdminLibraryDelete(r.ID),
	}
}

// Groups resources by category, keeping the order they arrive in.
func GroupLibrary(resources []*models.LibraryResource, urls AssetUrls) []LibraryCategory {
	var result []LibraryCategory
	indexes := map[string]int{}
	for _, r := range resources {
		i, ok := indexes[r.Category]
		if !ok {
			i = len(result)
			indexes[r.Category] = i
			result = append(result, LibraryCategory{
				Name: r.Category,
				Url:  siteurl.BuildLibraryCategory(r.Category),
			})
		}
		result[i].Resources = append(result[i].Resources, LibraryResourceToTemplate(r, urls))
	}
	return result
}

func TeamMemberToTemplate(m *models.TeamMember, urls AssetUrls) TeamMember {
	return TeamMember{
		ID:        m.ID,
		Name:      m.Name,
		Position:  m.Position,
		Email:     m.Email,
		Bio:       template.HTML(m.BioHTML),
		BioRaw:    m.BioRaw,
		PhotoUrl:  urls.get(m.PhotoAssetID),
		SortOrder: m.SortOrder,
		Active:    m.Active,

		EditUrl:   siteurl.BuildAdminTeamEdit(m.ID),
		DeleteUrl: siteurl.BuildAdminTeamDelete(m.ID),
	}
}

func CarouselItemToTemplate(item clubdata.CarouselItem, urls AssetUrls) CarouselItem {
	return CarouselItem{
		Kind:     string(item.Kind),
		Title:    item.Title,
		Summary:  item.Summary,
		Url:      item.Url,
		CoverUrl: urls.get(item.CoverAssetID),
		Date:     item.Date,
		Upcoming: item.Upcoming,
	}
}

func AssetToTemplate(a *models.Asset, url string) Asset {
	return Asset{
		ID:       a.ID.String(),
		Url:      url,
		Filename: a.Filename,
		MimeType: a.MimeType,
		Size:     a.Size,
		Width:    a.Width,
		Height:   a.Height,
		IsImage:  a.IsImage(),
	}
}

func RoleAssignmentToTemplate(row *clubdata.RoleAssignmentRow) RoleAssignment {
	return RoleAssignment{
		UserID:    row.User.ID,
		Username:  row.User.Username,
		Name:      row.User.BestName(),
		Role:      row.Assignment.Role,
		GrantedAt: row.Assignment.GrantedAt,
	}
}

// Flattens a request's perf blocks, indenting blocks that run inside an
// earlier, longer block.
func PerfRecordToTemplate(rp perf.RequestPerf) PerfRecord {
	record := PerfRecord{
		Method:     rp.Method,
		Route:      rp.Route,
		Path:       rp.Path,
		DurationMs: float64(rp.Duration().Nanoseconds()) / 1000 / 1000,
		Start:      rp.Start,
	}

	var openEnds []int
	for i := range rp.Blocks {
		block := &rp.Blocks[i]
		for len(openEnds) > 0 && block.Start.After(rp.Blocks[openEnds[len(openEnds)-1]].End) {
			openEnds = openEnds[:len(openEnds)-1]
		}
		record.Blocks = append(record.Blocks, PerfBlock{
			Category:    block.Category,
			Description: block.Description,
			OffsetMs:    rp.MsFromStart(block),
			DurationMs:  block.DurationMs(),
			Depth:       len(openEnds),
		})
		openEnds = append(openEnds, i)
	}

	return record
}
