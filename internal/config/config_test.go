package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, defaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.Equal(t, "", cfg.DatabaseURL)
}

func TestLoadReadsEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://localhost/sketchguess")
	t.Setenv("SHUTDOWN_TIMEOUT", "30")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres://localhost/sketchguess", cfg.DatabaseURL)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFallsBackToDefaultOnInvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-number")

	cfg := Load()
	assert.Equal(t, defaultShutdownTimeout, cfg.ShutdownTimeout)
}
