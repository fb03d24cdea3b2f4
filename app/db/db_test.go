package database

import (
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-mapsync/config"
)

func TestNewDatabaseConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("missing host", func(t *testing.T) {
		_, err := NewDatabaseConfig(&config.Config{}, logger)
		assert.ErrorIs(t, err, ErrPostgresConfig)

		_, err = NewDatabaseConfig(nil, logger)
		assert.ErrorIs(t, err, ErrPostgresConfig)
	})

	t.Run("builds postgresql url", func(t *testing.T) {
		var cfg config.Config
		cfg.Repositories.Postgres.Host = "db"
		cfg.Repositories.Postgres.Port = "5433"
		cfg.Repositories.Postgres.Username = "trip"
		cfg.Repositories.Postgres.Password = "p@ss"
		cfg.Repositories.Postgres.DB = "itinerary"
		cfg.Repositories.Postgres.MAXCONWAITINGTIME = 7

		dbCfg, err := NewDatabaseConfig(&cfg, logger)
		require.NoError(t, err)

		u, err := url.Parse(dbCfg.ConnectionURL)
		require.NoError(t, err)
		assert.Equal(t, "postgresql", u.Scheme)
		assert.Equal(t, "db:5433", u.Host)
		assert.Equal(t, "/itinerary", u.Path)
		pw, _ := u.User.Password()
		assert.Equal(t, "p@ss", pw)
		assert.Equal(t, "disable", u.Query().Get("sslmode"))
		assert.Equal(t, "7", u.Query().Get("connect_timeout"))
	})
}

func TestRunMigrations_RejectsScheme(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := RunMigrations("mysql://localhost/db", logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database URL scheme")
}
