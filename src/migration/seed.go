package migration

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	lorem "github.com/HandmadeNetwork/golorem"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/sciclub/clubsite/src/clubdata"
	"github.com/sciclub/clubsite/src/config"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/models"
	"github.com/sciclub/clubsite/src/roles"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Seeds a fresh database with sample data for local dev.
func SampleSeed() {
	Migrate(LatestVersion())

	ctx := context.Background()
	conn := db.NewConnWithConfig(config.PostgresConfig{
		LogLevel: tracelog.LogLevelWarn,
	})
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		panic(err)
	}
	defer tx.Rollback(ctx)

	fmt.Println("Creating users (all with password \"password\")...")
	admin := seedUser(ctx, tx, "admin", "Ada Admin", roles.Admin)
	editor := seedUser(ctx, tx, "editor", "Eddie Editor", roles.Editor)
	seedUser(ctx, tx, "member", "Mia Member", roles.Member)
	seedUser(ctx, tx, "visitor", "", roles.None)

	fmt.Println("Creating articles...")
	authors := []*models.User{admin, editor}
	for i := 0; i < 14; i++ {
		_, err := clubdata.CreateArticle(ctx, tx, clubdata.ArticleInput{
			AuthorID:  &authors[i%len(authors)].ID,
			Title:     randomTitle(),
			BodyRaw:   randomMarkdown(),
			Published: i%5 != 0,
		})
		if err != nil {
			panic(err)
		}
	}

	fmt.Println("Creating events...")
	now := time.Now().UTC().Truncate(time.Hour)
	for i := -6; i < 4; i++ {
		startsAt := now.Add(time.Duration(i) * 9 * 24 * time.Hour)
		var endsAt *time.Time
		if randomBool() {
			end := startsAt.Add(3 * time.Hour)
			endsAt = &end
		}
		_, err := clubdata.CreateEvent(ctx, tx, clubdata.EventInput{
			Title:          randomTitle(),
			DescriptionRaw: randomMarkdown(),
			Location:       fmt.Sprintf("Room %d", 100+rand.Intn(300)),
			StartsAt:       startsAt,
			EndsAt:         endsAt,
		})
		if err != nil {
			panic(err)
		}
	}

	fmt.Println("Creating publications...")
	for i := 0; i < 6; i++ {
		_, err := clubdata.CreatePublication(ctx, tx, clubdata.PublicationInput{
			Title:       randomTitle(),
			Authors:     "M. Member, E. Editor",
			Venue:       "Journal of " + titleCase.String(lorem.Word(4, 10)),
			Abstract:    lorem.Paragraph(2, 4),
			Citation:    fmt.Sprintf("Member, M. (%d). See https://example.com/papers/%d", 2020+i, i),
			PublishedOn: time.Date(2020+i, time.Month(1+rand.Intn(12)), 1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			panic(err)
		}
	}

	fmt.Println("Creating library resources...")
	for _, category := range []string{"Guides", "Datasets", "Software"} {
		for i := 0; i < 3; i++ {
			_, err := clubdata.CreateLibraryResource(ctx, tx, clubdata.LibraryResourceInput{
				Title:       randomTitle(),
				Description: lorem.Sentence(8, 20),
				Category:    category,
				Url:         fmt.Sprintf("https://example.com/%s/%d", strings.ToLower(category), i),
			})
			if err != nil {
				panic(err)
			}
		}
	}

	fmt.Println("Creating team members...")
	for i, position := range []string{"President", "Vice President", "Treasurer", "Secretary", "Former Treasurer"} {
		_, err := clubdata.CreateTeamMember(ctx, tx, clubdata.TeamMemberInput{
			Name:      randomName(),
			Position:  position,
			BioRaw:    lorem.Paragraph(1, 2),
			SortOrder: i,
			Active:    !strings.HasPrefix(position, "Former"),
		})
		if err != nil {
			panic(err)
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Println("Done!")
}

func seedUser(ctx context.Context, conn db.ConnOrTx, username, name string, role roles.Role) *models.User {
	user, err := clubdata.CreateUser(ctx, conn, clubdata.UserInput{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Name:     name,
		Password: "password",
	})
	if err != nil {
		panic(err)
	}

	if role != roles.None {
		err = clubdata.GrantRole(ctx, conn, user.ID, role, nil)
		if err != nil {
			panic(err)
		}
	}

	return user
}

var titleCase = cases.Title(language.English)

func randomTitle() string {
	return strings.TrimSuffix(titleCase.String(lorem.Sentence(3, 8)), ".")
}

func randomMarkdown() string {
	var paragraphs []string
	for i := 0; i < 2+rand.Intn(4); i++ {
		paragraphs = append(paragraphs, lorem.Paragraph(2, 5))
	}
	paragraphs = append(paragraphs, "The energy is $E = mc^2$, roughly.")
	return strings.Join(paragraphs, "\n\n")
}

var firstNames = []string{"Alice", "Bob", "Charlie", "Dana", "Emil", "Farah", "Grace", "Hiro"}
var lastNames = []string{"Curie", "Noether", "Feynman", "Lovelace", "Raman", "Franklin", "Hopper"}

func randomName() string {
	return firstNames[rand.Intn(len(firstNames))] + " " + lastNames[rand.Intn(len(lastNames))]
}

func randomBool() bool {
	return rand.Intn(2) == 1
}
