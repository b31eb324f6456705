package migrations

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sciclub/clubsite/src/migration/types"
)

func init() {
	registerMigration(InitialSchema{})
}

type InitialSchema struct{}

func (m InitialSchema) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
}

func (m InitialSchema) Name() string {
	return "InitialSchema"
}

func (m InitialSchema) Description() string {
	return "Create users, sessions, roles, assets, and the club content tables"
}

func (m InitialSchema) Up(ctx context.Context, tx pgx.Tx) error {
	return execAll(ctx, tx,
		`
		CREATE TABLE club_user (
			id SERIAL PRIMARY KEY,
			username VARCHAR(30) NOT NULL UNIQUE,
			password VARCHAR(256) NOT NULL,
			email VARCHAR(254) NOT NULL DEFAULT '',
			name VARCHAR(255) NOT NULL DEFAULT '',
			date_joined TIMESTAMP WITH TIME ZONE NOT NULL,
			last_login TIMESTAMP WITH TIME ZONE
		);
		CREATE UNIQUE INDEX club_user_username_lower ON club_user (lower(username));
		`,
		`
		CREATE TABLE session (
			id VARCHAR(40) PRIMARY KEY,
			username VARCHAR(30) NOT NULL REFERENCES club_user (username) ON DELETE CASCADE ON UPDATE CASCADE,
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
			csrf_token VARCHAR(40) NOT NULL
		);
		CREATE INDEX session_expires_at ON session (expires_at);
		`,
		`
		CREATE TABLE user_role (
			user_id INT NOT NULL REFERENCES club_user (id) ON DELETE CASCADE,
			role VARCHAR(20) NOT NULL,
			granted_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			granted_by_id INT REFERENCES club_user (id) ON DELETE SET NULL,
			UNIQUE (user_id, role)
		);
		`,
		`
		CREATE TABLE asset (
			id UUID PRIMARY KEY,
			uploader_id INT REFERENCES club_user (id) ON DELETE SET NULL,
			s3_key VARCHAR(2000) NOT NULL UNIQUE,
			filename VARCHAR(1000) NOT NULL,
			size INT NOT NULL,
			mime_type VARCHAR(255) NOT NULL,
			sha1sum VARCHAR(40) NOT NULL,
			width INT NOT NULL DEFAULT 0,
			height INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
		);
		CREATE INDEX asset_created_at ON asset (created_at DESC);
		`,
		`
		CREATE TABLE article (
			id UUID PRIMARY KEY,
			author_id INT REFERENCES club_user (id) ON DELETE SET NULL,
			title VARCHAR(255) NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			body_raw TEXT NOT NULL DEFAULT '',
			body_html TEXT NOT NULL DEFAULT '',
			cover_asset_id UUID REFERENCES asset (id) ON DELETE SET NULL,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			published_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL
		);
		-- Short ids are prefixes of the hyphen-stripped id.
		CREATE INDEX article_short_id ON article (replace(id::text, '-', '') text_pattern_ops);
		CREATE INDEX article_published_date ON article (published, COALESCE(published_at, created_at) DESC);
		`,
		`
		CREATE TABLE event (
			id SERIAL PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description_raw TEXT NOT NULL DEFAULT '',
			description_html TEXT NOT NULL DEFAULT '',
			location VARCHAR(255) NOT NULL DEFAULT '',
			registration_url VARCHAR(2000) NOT NULL DEFAULT '',
			starts_at TIMESTAMP WITH TIME ZONE NOT NULL,
			ends_at TIMESTAMP WITH TIME ZONE,
			cover_asset_id UUID REFERENCES asset (id) ON DELETE SET NULL,
			CHECK (ends_at IS NULL OR ends_at >= starts_at)
		);
		CREATE INDEX event_starts_at ON event (starts_at);
		`,
		`
		CREATE TABLE publication (
			id SERIAL PRIMARY KEY,
			title VARCHAR(300) NOT NULL,
			authors VARCHAR(1000) NOT NULL,
			venue VARCHAR(300) NOT NULL DEFAULT '',
			abstract TEXT NOT NULL DEFAULT '',
			citation TEXT NOT NULL DEFAULT '',
			url VARCHAR(2000) NOT NULL DEFAULT '',
			published_on DATE NOT NULL,
			cover_asset_id UUID REFERENCES asset (id) ON DELETE SET NULL
		);
		`,
		`
		CREATE TABLE library_resource (
			id SERIAL PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category VARCHAR(100) NOT NULL,
			url VARCHAR(2000) NOT NULL DEFAULT '',
			file_asset_id UUID REFERENCES asset (id) ON DELETE SET NULL,
			added_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
		);
		CREATE INDEX library_resource_category ON library_resource (category);
		`,
		`
		CREATE TABLE team_member (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			position VARCHAR(255) NOT NULL,
			email VARCHAR(254) NOT NULL DEFAULT '',
			bio_raw TEXT NOT NULL DEFAULT '',
			bio_html TEXT NOT NULL DEFAULT '',
			photo_asset_id UUID REFERENCES asset (id) ON DELETE SET NULL,
			sort_order INT NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE
		);
		`,
	)
}

func (m InitialSchema) Down(ctx context.Context, tx pgx.Tx) error {
	return execAll(ctx, tx,
		`
		DROP TABLE team_member;
		DROP TABLE library_resource;
		DROP TABLE publication;
		DROP TABLE event;
		DROP TABLE article;
		DROP TABLE asset;
		DROP TABLE user_role;
		DROP TABLE session;
		DROP TABLE club_user;
		`,
	)
}
