package models

import (
	"time"

	"github.com/google/uuid"
)

type Publication struct {
	ID int `db:"id"`

	Title    string `db:"title"`
	Authors  string `db:"authors"`
	Venue    string `db:"venue"`
	Abstract string `db:"abstract"`
	Citation string `db:"citation"`
	Url      string `db:"url"`

	PublishedOn  time.Time  `db:"published_on"`
	CoverAssetID *uuid.UUID `db:"cover_asset_id"`
}
