package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Connections)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.DatabasePath)
}

func TestSaveAndLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := &AppConfig{
		Connections: []ConnectionConfig{
			{
				ID:              "conn-1",
				Name:            "acme",
				OrganizationURL: "https://dev.azure.com/acme",
				Project:         "Fabrikam",
				Enabled:         true,
			},
		},
		Import:       ImportConfig{DefaultUserID: "dana"},
		DatabasePath: "/tmp/tracklight.db",
		LogLevel:     "debug",
	}

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, loaded.Connections, 1)
	assert.Equal(t, "acme", loaded.Connections[0].Name)
	assert.Equal(t, "https://dev.azure.com/acme", loaded.Connections[0].OrganizationURL)
	assert.True(t, loaded.Connections[0].Enabled)
	assert.Equal(t, "dana", loaded.Import.DefaultUserID)
	assert.Equal(t, "debug", loaded.LogLevel)
}

func TestConnectionSelection(t *testing.T) {
	cfg := &AppConfig{
		Connections: []ConnectionConfig{
			{ID: "a", Name: "acme", Enabled: true},
			{ID: "b", Name: "contoso", Enabled: false},
		},
	}

	conn, err := cfg.Connection("")
	require.NoError(t, err, "a single enabled connection is picked implicitly")
	assert.Equal(t, "a", conn.ID)

	conn, err = cfg.Connection("contoso")
	require.NoError(t, err)
	assert.Equal(t, "b", conn.ID)

	conn, err = cfg.Connection("b")
	require.NoError(t, err, "lookup by ID also works")
	assert.Equal(t, "contoso", conn.Name)

	_, err = cfg.Connection("ghost")
	assert.Error(t, err)
}

func TestConnectionSelectionAmbiguous(t *testing.T) {
	cfg := &AppConfig{
		Connections: []ConnectionConfig{
			{ID: "a", Name: "acme", Enabled: true},
			{ID: "b", Name: "contoso", Enabled: true},
		},
	}

	_, err := cfg.Connection("")
	assert.Error(t, err)
}
