package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "")

	require.NoError(t, Load(path))
	c := Get()

	assert.Equal(t, 5*time.Minute, c.Dashboard.CacheTTL)
	assert.Equal(t, 10, c.Dashboard.TopN)
	assert.Equal(t, "liquidity_snapshot", c.NATS.Subject)
	assert.Zero(t, c.Filters.MinFDV)
	assert.Contains(t, c.Dashboard.Endpoint, "getBanksOverLiquidity")
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
[dashboard]
endpoint = "http://localhost:4137/marginfi/getBanksOverLiquidity"
cache_ttl = "1m"
top_n = 5

[filters]
min_short_liquidity = 1000.0
min_fdv = -5.0

[log]
level = "debug"
`)

	require.NoError(t, Load(path))
	c := Get()

	assert.Equal(t, "http://localhost:4137/marginfi/getBanksOverLiquidity", c.Dashboard.Endpoint)
	assert.Equal(t, time.Minute, c.Dashboard.CacheTTL)
	assert.Equal(t, 5, c.Dashboard.TopN)
	assert.Equal(t, 1000.0, c.Filters.MinShortLiquidity)
	// 负阈值被归零
	assert.Zero(t, c.Filters.MinFDV)
	assert.Equal(t, "debug", c.Logger.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv(EnvEndpoint, "http://env.example/banks")
	t.Setenv(EnvListenAddr, "127.0.0.1:9999")

	path := writeConfig(t, `
[dashboard]
endpoint = "http://file.example/banks"
`)

	require.NoError(t, Load(path))
	c := Get()

	assert.Equal(t, "http://env.example/banks", c.Dashboard.Endpoint)
	assert.Equal(t, "127.0.0.1:9999", c.Dashboard.ListenAddr)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, "[dashboard\nendpoint=")
	assert.Error(t, Load(path))

	assert.Error(t, Load(filepath.Join(t.TempDir(), "missing.toml")))
}

func TestReloadIfNeeded(t *testing.T) {
	path := writeConfig(t, `
[filters]
min_fdv = 1.0
`)
	require.NoError(t, Load(path))
	assert.Equal(t, 1.0, Get().Filters.MinFDV)

	require.NoError(t, os.WriteFile(path, []byte("[filters]\nmin_fdv = 2.0\n"), 0o644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	reloadIfNeeded()
	assert.Equal(t, 2.0, Get().Filters.MinFDV)
}
