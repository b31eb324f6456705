package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBase() ClubConfig {
	return ClubConfig{
		Env:      Dev,
		Addr:     "localhost:1234",
		BaseUrl:  "http://club.test",
		ClubName: "Test Club",
		Log:      LogConfig{Level: zerolog.InfoLevel},
		Postgres: PostgresConfig{
			User:     "u",
			Hostname: "db.internal",
			Port:     5432,
			DbName:   "club",
			LogLevel: tracelog.LogLevelWarn,
			MaxConn:  4,
		},
	}
}

func TestLoad(t *testing.T) {
	t.Run("no overrides", func(t *testing.T) {
		cfg := Load(testBase(), t.TempDir())
		assert.Equal(t, testBase(), cfg)
	})

	t.Run("config file", func(t *testing.T) {
		dir := t.TempDir()
		yaml := "clubname: Physics Society\nbaseurl: https://physics.example.edu/\npostgres:\n  port: 6543\n  loglevel: error\nlog:\n  level: warn\n"
		require.Nil(t, os.WriteFile(filepath.Join(dir, "clubsite.yaml"), []byte(yaml), 0644))

		cfg := Load(testBase(), dir)
		assert.Equal(t, "Physics Society", cfg.ClubName)
		assert.Equal(t, "https://physics.example.edu", cfg.BaseUrl)
		assert.Equal(t, 6543, cfg.Postgres.Port)
		assert.Equal(t, tracelog.LogLevelError, cfg.Postgres.LogLevel)
		assert.Equal(t, zerolog.WarnLevel, cfg.Log.Level)
		assert.Equal(t, "db.internal", cfg.Postgres.Hostname)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		dir := t.TempDir()
		require.Nil(t, os.WriteFile(filepath.Join(dir, "clubsite.yaml"), []byte("postgres:\n  hostname: from-file\n"), 0644))
		t.Setenv("CLUBSITE_POSTGRES_HOSTNAME", "from-env")

		cfg := Load(testBase(), dir)
		assert.Equal(t, "from-env", cfg.Postgres.Hostname)
	})

	t.Run("dotenv file", func(t *testing.T) {
		dir := t.TempDir()
		require.Nil(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CLUBSITE_THEMECOLOR=\"#ff8800\"\n"), 0644))
		t.Cleanup(func() { os.Unsetenv("CLUBSITE_THEMECOLOR") })

		cfg := Load(testBase(), dir)
		assert.Equal(t, "ff8800", cfg.ThemeColor)
	})

	t.Run("dotenv colour without hash", func(t *testing.T) {
		dir := t.TempDir()
		require.Nil(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CLUBSITE_THEMECOLOR=336699\n"), 0644))
		t.Cleanup(func() { os.Unsetenv("CLUBSITE_THEMECOLOR") })

		cfg := Load(testBase(), dir)
		assert.Equal(t, "336699", cfg.ThemeColor)
	})

	t.Run("bad log level keeps default", func(t *testing.T) {
		t.Setenv("CLUBSITE_LOG_LEVEL", "loud")
		cfg := Load(testBase(), t.TempDir())
		assert.Equal(t, zerolog.InfoLevel, cfg.Log.Level)
	})
}

func TestDSN(t *testing.T) {
	cfg := PostgresConfig{User: "a", Password: "b", Hostname: "c", Port: 1, DbName: "d"}
	assert.Equal(t, "user=a password=b host=c port=1 dbname=d", cfg.DSN())
}
