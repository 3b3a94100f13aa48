package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore_RoundTrip(t *testing.T) {
	store := NewTokenStore(t.TempDir())

	require.NoError(t, store.Save("cratebot", "trusted-device-1"))

	token, err := store.Load("cratebot")
	require.NoError(t, err)
	assert.Equal(t, "trusted-device-1", token)
}

func TestTokenStore_MissingAccountIsEmpty(t *testing.T) {
	store := NewTokenStore(t.TempDir())

	token, err := store.Load("nobody")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestTokenStore_AccountsAreIsolated(t *testing.T) {
	store := NewTokenStore(t.TempDir())

	require.NoError(t, store.Save("bot-a", "token-a"))
	require.NoError(t, store.Save("bot-b", "token-b"))

	token, err := store.Load("bot-a")
	require.NoError(t, err)
	assert.Equal(t, "token-a", token)
}

func TestTokenStore_SaveOverwrites(t *testing.T) {
	store := NewTokenStore(t.TempDir())

	require.NoError(t, store.Save("cratebot", "old"))
	require.NoError(t, store.Save("cratebot", "new"))

	token, err := store.Load("cratebot")
	require.NoError(t, err)
	assert.Equal(t, "new", token)
}
