package config

import (
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// Defaults for local development. Deployments override these through
// clubsite.yaml or CLUBSITE_* environment variables; see load.go.
var Config = ClubConfig{
	Env:        Dev,
	Addr:       "localhost:9001",
	BaseUrl:    "http://localhost:9001",
	ClubName:   "Scientific Club",
	ThemeColor: "2a6f97",

	Log: LogConfig{
		Level:      zerolog.DebugLevel,
		MaxSizeMB:  50,
		MaxBackups: 5,
	},

	Postgres: PostgresConfig{
		User:     "clubsite",
		Password: "password",
		Hostname: "localhost",
		Port:     5432,
		DbName:   "clubsite",
		LogLevel: tracelog.LogLevelWarn,
		MinConn:  2,
		MaxConn:  8,
	},

	Auth: AuthConfig{
		CookieDomain: "localhost",
		CookieSecure: false,
	},

	S3: S3Config{
		Key:       "dev",
		Secret:    "dev",
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9003",
		Bucket:    "clubsite-dev",
		PublicUrl: "http://localhost:9003/clubsite-dev",
	},

	Dev: DevConfig{
		LiveTemplates: false,
	},
}

func init() {
	Config = Load(Config, ".")
}
