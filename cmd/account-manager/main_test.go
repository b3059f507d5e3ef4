package main

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/TurtIeSocks/account-manager/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestStoreConfig(t *testing.T) {
	sc := config.StoreConfig{
		Driver:             config.DriverPostgres,
		DSN:                "postgres://x",
		MaxOpenConns:       7,
		MaxIdleConns:       3,
		ConnMaxLifetimeMin: 15,
	}

	got := storeConfig(sc)
	assert.Equal(t, "postgres", got.Driver)
	assert.Equal(t, "postgres://x", got.DSN)
	assert.Equal(t, 7, got.MaxOpenConns)
	assert.Equal(t, 3, got.MaxIdleConns)
	assert.Equal(t, 15*time.Minute, got.ConnMaxLifetime)
}

// TestRun_MissingConfig exits non-zero through the normal return path so
// deferred cleanups still unwind on failure.
func TestRun_MissingConfig(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, 1, run())
}
