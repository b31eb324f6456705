package models

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID int `db:"id"`

	Title           string `db:"title"`
	DescriptionRaw  string `db:"description_raw"`
	DescriptionHTML string `db:"description_html"`
	Location        string `db:"location"`
	RegistrationUrl string `db:"registration_url"`

	StartsAt time.Time  `db:"starts_at"`
	EndsAt   *time.Time `db:"ends_at"`

	CoverAssetID *uuid.UUID `db:"cover_asset_id"`
}

// Upcoming until it has ended. Events without an end time end when they start.
func (e *Event) IsUpcoming(now time.Time) bool {
	end := e.StartsAt
	if e.EndsAt != nil {
		end = *e.EndsAt
	}
	return !end.Before(now)
}
