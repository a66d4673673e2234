package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_ADDR", "PUBLIC_URL", "DATA_DIR", "STORE_DRIVER", "JOURNAL_DRIVER", "JOURNAL_DIR",
		"ENTRANTS_REDIS_ADDR", "ENTRANTS_REDIS_PASSWORD", "SYSTEM_IDENTITY", "SCHEDULER_MAX_DELAY",
		"OPERATOR_TOKEN_HASH", "LOG_LEVEL", "LOG_FORMAT", "STREAM_ENABLED", "DATABASE_URL", "CONTEST_HUB_CONFIG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddr)
	assert.Equal(t, StoreFile, cfg.StoreDriver)
	assert.Equal(t, JournalFile, cfg.JournalDriver)
	assert.Equal(t, filepath.Join("data", "logs"), cfg.JournalDir)
	assert.Equal(t, time.Duration(0), cfg.SchedulerMaxDelay)
	assert.True(t, cfg.StreamEnabled)
	assert.Equal(t, contest.DefaultSystemIdentity, cfg.SystemIdentity)
	assert.Contains(t, cfg.DatabaseURL, "postgres://contest_hub:")
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "contest-hub.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// local development
		"server_addr": "127.0.0.1:9000",
		"data_dir": "/var/lib/contests",
		"scheduler_max_delay": "1h",
		"stream_enabled": false,
		"log_format": "console", // trailing comma below
	}`), 0o600))

	t.Setenv("CONTEST_HUB_CONFIG", path)
	t.Setenv("SERVER_ADDR", "127.0.0.1:9100")
	t.Setenv("STORE_DRIVER", "POSTGRES")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9100", cfg.ServerAddr, "environment wins over file")
	assert.Equal(t, "/var/lib/contests", cfg.DataDir)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, time.Hour, cfg.SchedulerMaxDelay)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.False(t, cfg.StreamEnabled)
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_adr": "x"}`), 0o600))
	_, err := LoadFile(path)
	require.ErrorIs(t, err, errConfigInvalid)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.jsonc"))
	require.ErrorIs(t, err, errConfigFileRead)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOURNAL_DRIVER", "sqlite")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("JOURNAL_DRIVER", "")
	t.Setenv("SYSTEM_IDENTITY", "   ")
	_, err = Load()
	require.ErrorContains(t, err, "system identity")
}

func TestOverride(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Override(":7000", "/srv/contests"))
	assert.Equal(t, ":7000", cfg.ServerAddr)
	assert.Equal(t, filepath.Join("/srv/contests", "logs"), cfg.JournalDir)

	t.Setenv("JOURNAL_DIR", "/var/log/contests")
	cfg, err = Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Override("", "/srv/contests"))
	assert.Equal(t, "/var/log/contests", cfg.JournalDir)
}
