package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("API_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver, "data survives restarts unless memory is chosen")
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, time.Minute, cfg.Cache.QuoteExpiration)
	assert.Equal(t, "Default Account", cfg.Ledger.DefaultAccountName)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", StorageDriverMemory)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
}
