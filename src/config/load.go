package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const EnvPrefix = "CLUBSITE"

/*
Overlays base with settings found in dir. The sources, from lowest to highest
precedence, are: base, clubsite.yaml (or .json/.toml) in dir, and CLUBSITE_*
environment variables. A .env file in dir is loaded into the environment first
but never overrides variables that are already set. In .env files an
unquoted # starts a comment, so write colours quoted ("#2a6f97") or without
the # (2a6f97).

Keys are the lowercased, dot-separated field paths, e.g. "postgres.hostname",
which map to environment variables like CLUBSITE_POSTGRES_HOSTNAME.
*/
func Load(base ClubConfig, dir string) ClubConfig {
	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	}

	v := viper.New()
	v.SetConfigName("clubsite")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, base)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(err)
		}
	}

	cfg := base
	cfg.Env = Environment(v.GetString("env"))
	cfg.Addr = v.GetString("addr")
	cfg.BaseUrl = strings.TrimSuffix(v.GetString("baseurl"), "/")
	cfg.ClubName = v.GetString("clubname")
	cfg.ThemeColor = strings.TrimPrefix(v.GetString("themecolor"), "#")

	cfg.Log.Level = parseLogLevel(v.GetString("log.level"), base.Log.Level)
	cfg.Log.File = v.GetString("log.file")
	cfg.Log.MaxSizeMB = v.GetInt("log.maxsizemb")
	cfg.Log.MaxBackups = v.GetInt("log.maxbackups")

	cfg.Postgres.User = v.GetString("postgres.user")
	cfg.Postgres.Password = v.GetString("postgres.password")
	cfg.Postgres.Hostname = v.GetString("postgres.hostname")
	cfg.Postgres.Port = v.GetInt("postgres.port")
	cfg.Postgres.DbName = v.GetString("postgres.dbname")
	cfg.Postgres.LogLevel = parsePgLogLevel(v.GetString("postgres.loglevel"), base.Postgres.LogLevel)
	cfg.Postgres.MinConn = v.GetInt32("postgres.minconn")
	cfg.Postgres.MaxConn = v.GetInt32("postgres.maxconn")

	cfg.Auth.CookieDomain = v.GetString("auth.cookiedomain")
	cfg.Auth.CookieSecure = v.GetBool("auth.cookiesecure")

	cfg.S3.Key = v.GetString("s3.key")
	cfg.S3.Secret = v.GetString("s3.secret")
	cfg.S3.Region = v.GetString("s3.region")
	cfg.S3.Endpoint = v.GetString("s3.endpoint")
	cfg.S3.Bucket = v.GetString("s3.bucket")
	cfg.S3.PublicUrl = strings.TrimSuffix(v.GetString("s3.publicurl"), "/")

	cfg.Dev.LiveTemplates = v.GetBool("dev.livetemplates")

	return cfg
}

func setDefaults(v *viper.Viper, base ClubConfig) {
	v.SetDefault("env", string(base.Env))
	v.SetDefault("addr", base.Addr)
	v.SetDefault("baseurl", base.BaseUrl)
	v.SetDefault("clubname", base.ClubName)
	v.SetDefault("themecolor", base.ThemeColor)

	v.SetDefault("log.level", base.Log.Level.String())
	v.SetDefault("log.file", base.Log.File)
	v.SetDefault("log.maxsizemb", base.Log.MaxSizeMB)
	v.SetDefault("log.maxbackups", base.Log.MaxBackups)

	v.SetDefault("postgres.user", base.Postgres.User)
	v.SetDefault("postgres.password", base.Postgres.Password)
	v.SetDefault("postgres.hostname", base.Postgres.Hostname)
	v.SetDefault("postgres.port", base.Postgres.Port)
	v.SetDefault("postgres.dbname", base.Postgres.DbName)
	v.SetDefault("postgres.loglevel", base.Postgres.LogLevel.String())
	v.SetDefault("postgres.minconn", base.Postgres.MinConn)
	v.SetDefault("postgres.maxconn", base.Postgres.MaxConn)

	v.SetDefault("auth.cookiedomain", base.Auth.CookieDomain)
	v.SetDefault("auth.cookiesecure", base.Auth.CookieSecure)

	v.SetDefault("s3.key", base.S3.Key)
	v.SetDefault("s3.secret", base.S3.Secret)
	v.SetDefault("s3.region", base.S3.Region)
	v.SetDefault("s3.endpoint", base.S3.Endpoint)
	v.SetDefault("s3.bucket", base.S3.Bucket)
	v.SetDefault("s3.publicurl", base.S3.PublicUrl)

	v.SetDefault("dev.livetemplates", base.Dev.LiveTemplates)
}

func parseLogLevel(s string, def zerolog.Level) zerolog.Level {
	if s == "" {
		return def
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return def
	}
	return level
}

func parsePgLogLevel(s string, def tracelog.LogLevel) tracelog.LogLevel {
	level, err := tracelog.LogLevelFromString(strings.ToLower(s))
	if err != nil {
		return def
	}
	return level
}
