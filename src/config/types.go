package config

import (
	"fmt"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

type Environment string

const (
	Live Environment = "live"
	Beta Environment = "beta"
	Dev  Environment = "dev"
)

type ClubConfig struct {
	Env      Environment
	Addr     string
	BaseUrl  string
	ClubName string
	// Hex colour without the leading #, used for the site theme.
	ThemeColor string

	Log      LogConfig
	Postgres PostgresConfig
	Auth     AuthConfig
	S3       S3Config
	Dev      DevConfig
}

type LogConfig struct {
	Level zerolog.Level

	// Optional JSON log file, rotated by size. Empty disables file logging.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

type PostgresConfig struct {
	User     string
	Password string
	Hostname string
	Port     int
	DbName   string
	LogLevel tracelog.LogLevel
	MinConn  int32
	MaxConn  int32
}

func (info PostgresConfig) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s", info.User, info.Password, info.Hostname, info.Port, info.DbName)
}

type AuthConfig struct {
	CookieDomain string
	CookieSecure bool
}

type S3Config struct {
	Key       string
	Secret    string
	Region    string
	Endpoint  string
	Bucket    string
	PublicUrl string
}

type DevConfig struct {
	LiveTemplates bool
}
