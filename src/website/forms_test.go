package website

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFormUsesLabels(t *testing.T) {
	errs := validateForm(eventForm{
		RegistrationUrl: "not a link",
		StartsAt:        "tomorrow",
	})
	assert.Contains(t, errs, "Title is required.")
	assert.Contains(t, errs, "Registration link must be a full link, like https://example.com.")
	assert.Contains(t, errs, "Start must be a date in the format 2006-01-02T15:04.")
}

func TestEventFormInput(t *testing.T) {
	form := readEventForm(url.Values{
		"title":     {"  Star party  "},
		"starts_at": {"2026-05-01T20:00"},
		"ends_at":   {"2026-05-01T23:30"},
	})
	assert.Equal(t, "Star party", form.Title)

	in, errs := form.input()
	require.Empty(t, errs)
	assert.Equal(t, time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC), in.StartsAt)
	if assert.NotNil(t, in.EndsAt) {
		assert.Equal(t, time.Date(2026, 5, 1, 23, 30, 0, 0, time.UTC), *in.EndsAt)
	}
	assert.Nil(t, in.CoverAssetID)

	t.Run("end before start", func(t *testing.T) {
		form.EndsAt = "2026-05-01T19:00"
		_, errs := form.input()
		assert.Equal(t, []string{"End must not be before the start."}, errs)
	})
}

func TestLibraryFormNeedsLinkOrFile(t *testing.T) {
	form := libraryForm{Title: "Lab safety", Category: "Guides"}
	_, errs := form.input()
	assert.Len(t, errs, 1)

	form.FileAssetID = uuid.New().String()
	in, errs := form.input()
	assert.Empty(t, errs)
	assert.NotNil(t, in.FileAssetID)
}

func TestTeamFormSortOrder(t *testing.T) {
	form := teamForm{Name: "Ada", Position: "Chair", SortOrder: "abc"}
	_, errs := form.input()
	assert.Equal(t, []string{"Sort order must be a whole number."}, errs)

	form.SortOrder = ""
	in, errs := form.input()
	assert.Empty(t, errs)
	assert.Equal(t, 0, in.SortOrder)

	form.Email = "nope"
	_, errs = form.input()
	assert.Equal(t, []string{"Email must be an email address."}, errs)
}

func TestPublicationFormDate(t *testing.T) {
	form := publicationForm{Title: "On ice", Authors: "A. Author", PublishedOn: "2025-02-30"}
	_, errs := form.input()
	assert.NotEmpty(t, errs)

	form.PublishedOn = "2025-02-28"
	in, errs := form.input()
	assert.Empty(t, errs)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), in.PublishedOn)
}

func TestFormHelpers(t *testing.T) {
	assert.True(t, formBool(url.Values{"published": {"on"}}, "published"))
	assert.False(t, formBool(url.Values{}, "published"))
	assert.Nil(t, parseOptionalUUID("garbage"))
	assert.Equal(t, "", optionalUUIDString(nil))

	n, err := parseFormInt("")
	assert.Nil(t, err)
	assert.Equal(t, 0, n)

	tm, err := parseOptionalFormTime(formDateTimeLayout, "")
	assert.Nil(t, err)
	assert.Nil(t, tm)
}
