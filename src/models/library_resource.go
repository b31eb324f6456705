package models

import (
	"time"

	"github.com/google/uuid"
)

type LibraryResource struct {
	ID int `db:"id"`

	Title       string `db:"title"`
	Description string `db:"description"`
	Category    string `db:"category"`
	Url         string `db:"url"`

	FileAssetID *uuid.UUID `db:"file_asset_id"`
	AddedAt     time.Time  `db:"added_at"`
}
