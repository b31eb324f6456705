package templates

import (
	"html/template"
	"time"
)

type BaseData struct {
	Title          string
	CanonicalLink  string
	OpenGraphItems []OpenGraphItem
	BodyClasses    []string
	Notices        []Notice

	ClubName   string
	ThemeColor string
	CurrentUrl string

	User    *User
	Session *Session

	// Resolved for this request only; see the session middleware.
	RoleName       string
	CanPublish     bool
	CanManageRoles bool

	Header Header
	Footer Footer
}

func (bd *BaseData) AddImmediateNotice(class, content string) {
	bd.Notices = append(bd.Notices, Notice{
		Class:   class,
		Content: template.HTML(template.HTMLEscapeString(content)),
	})
}

type Header struct {
	HomepageUrl     string
	JournalUrl      string
	EventsUrl       string
	PublicationsUrl string
	LibraryUrl      string
	TeamUrl         string

	LoginUrl  string
	LogoutUrl string

	// Only shown to publishers and admins respectively.
	AdminUrl      string
	AdminRolesUrl string
}

type Footer struct {
	HomepageUrl    string
	JournalFeedUrl string
	Year           int
}

type Notice struct {
	Content template.HTML
	Class   string
}

type OpenGraphItem struct {
	Property string
	Name     string
	Value    string
}

type User struct {
	ID         int
	Username   string
	Name       string
	Email      string
	DateJoined time.Time
}

type Session struct {
	CSRFToken string
}

type Pagination struct {
	Current int
	Total   int

	FirstUrl    string
	LastUrl     string
	PreviousUrl string
	NextUrl     string
}

type Article struct {
	ID         string
	ShortID    string
	Title      string
	Summary    string
	Url        string
	Content    template.HTML
	BodyRaw    string
	CoverUrl   string
	Date       time.Time
	UpdatedAt  time.Time
	Published  bool
	AuthorName string

	EditUrl   string
	DeleteUrl string
}

type Event struct {
	ID              int
	Title           string
	Description     template.HTML
	DescriptionRaw  string
	Location        string
	RegistrationUrl string
	StartsAt        time.Time
	EndsAt          *time.Time
	CoverUrl        string
	Upcoming        bool

	EditUrl   string
	DeleteUrl string
}

type Publication struct {
	ID          int
	Title       string
	Authors     string
	Venue       string
	Abstract    string
	Citation    string
	Url         string
	Links       []string
	PublishedOn time.Time
	CoverUrl    string

	EditUrl   string
	DeleteUrl string
}

type LibraryResource struct {
	ID          int
	Title       string
	Description string
	Category    string
	Url         string
	FileUrl     string
	AddedAt     time.Time

	EditUrl   string
	DeleteUrl string
}

type LibraryCategory struct {
	Name      string
	Url       string
	Resources []LibraryResource
}

type TeamMember struct {
	ID        int
	Name      string
	Position  string
	Email     string
	Bio       template.HTML
	BioRaw    string
	PhotoUrl  string
	SortOrder int
	Active    bool

	EditUrl   string
	DeleteUrl string
}

type CarouselItem struct {
	Kind     string
	Title    string
	Summary  string
	Url      string
	CoverUrl string
	Date     time.Time
	Upcoming bool
}

type Asset struct {
	ID       string
	Url      string
	Filename string
	MimeType string
	Size     int
	Width    int
	Height   int
	IsImage  bool
}

type RoleAssignment struct {
	UserID    int
	Username  string
	Name      string
	Role      string
	GrantedAt time.Time
}

type PerfRecord struct {
	Method     string
	Route      string
	Path       string
	DurationMs float64
	Start      time.Time
	Blocks     []PerfBlock
}

type PerfBlock struct {
	Category    string
	Description string
	OffsetMs    float64
	DurationMs  float64
	Depth       int
}
