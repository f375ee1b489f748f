package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.StoreBackend)
	assert.Equal(t, "memory", cfg.EventsBackend)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("EVENTS_BACKEND", "kafka")
	_, err = Load()
	require.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBUser: "admin", DBPassword: "secret", DBHost: "db", DBPort: "5433",
		DBName: "ads", DBSSLMode: "disable",
	}
	assert.Equal(t, "postgres://admin:secret@db:5433/ads?sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}
