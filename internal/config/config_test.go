package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresCredentials(t *testing.T) {
	t.Setenv("BOT_ACCOUNT", "")
	t.Setenv("BOT_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_ACCOUNT", "cratebot")
	t.Setenv("BOT_PASSWORD", "hunter2")
	t.Setenv("GATEWAY_URL", "")
	t.Setenv("CATEGORY_TAG", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cratebot", cfg.Account)
	assert.Equal(t, defaultGatewayURL, cfg.GatewayURL)
	assert.Equal(t, defaultCategoryTag, cfg.CategoryTag)
	assert.Empty(t, cfg.RedisAddr)
}

func TestServers_SingleURLWithoutOverride(t *testing.T) {
	cfg := Config{GatewayURL: "ws://localhost:9000/ws"}

	servers, err := cfg.Servers()
	require.NoError(t, err)
	assert.Equal(t, []string{"ws://localhost:9000/ws"}, servers)
}

func TestServers_OverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.yaml")
	content := "servers:\n  - ws://one.example.net/ws\n  - ws://two.example.net/ws\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := Config{GatewayURL: "ws://ignored/ws", ServerListFile: path}

	servers, err := cfg.Servers()
	require.NoError(t, err)
	assert.Equal(t, []string{"ws://one.example.net/ws", "ws://two.example.net/ws"}, servers)
}

func TestServers_EmptyOverrideIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("servers: []\n"), 0o600))

	cfg := Config{ServerListFile: path}

	_, err := cfg.Servers()
	assert.Error(t, err)
}

func TestServers_MissingOverrideFileIsAnError(t *testing.T) {
	cfg := Config{ServerListFile: filepath.Join(t.TempDir(), "absent.yaml")}

	_, err := cfg.Servers()
	assert.Error(t, err)
}
