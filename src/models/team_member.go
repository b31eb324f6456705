package models

import (
	"github.com/google/uuid"
)

type TeamMember struct {
	ID int `db:"id"`

	Name     string `db:"name"`
	Position string `db:"position"`
	Email    string `db:"email"`
	BioRaw   string `db:"bio_raw"`
	BioHTML  string `db:"bio_html"`

	PhotoAssetID *uuid.UUID `db:"photo_asset_id"`
	SortOrder    int        `db:"sort_order"`
	Active       bool       `db:"active"`
}
