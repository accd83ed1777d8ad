package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "medtransport.events", cfg.RabbitMQ.Exchange)
	assert.Equal(t, -6.2088, cfg.Presence.DefaultLatitude)
	assert.Equal(t, 106.8456, cfg.Presence.DefaultLongitude)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	path := writeConfig(t, "http:\n  port: 9000\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: test\ndatabase:\n  host: db.internal\n")
	t.Setenv("MT_DATABASE__HOST", "override.internal")
	t.Setenv("MT_HTTP__PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: 5433, User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "postgres://u:p@h:5433/n?sslmode=disable", db.DSN())
}
