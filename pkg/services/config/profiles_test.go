package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfiles(t *testing.T, content string) Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg, err := NewRegistry(path)
	require.NoError(t, err)
	return reg
}

func TestRegistry_GetProfiles(t *testing.T) {
	reg := writeProfiles(t, `
[local]
kind = csv
dir = ./data

[cache]
kind = duckdb
path = sales-atlas.db

[eu-warehouse]
kind = warehouse
profile = snowflake.yaml
`)

	sources, err := reg.GetProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 3)

	byName := map[string]Source{}
	for _, s := range sources {
		byName[s.Name] = s
	}
	assert.Equal(t, SourceCSV, byName["local"].Kind)
	assert.Equal(t, "./data", byName["local"].Location)
	assert.Equal(t, SourceDuckDB, byName["cache"].Kind)
	assert.Equal(t, SourceWarehouse, byName["eu-warehouse"].Kind)
	assert.Equal(t, "snowflake.yaml", byName["eu-warehouse"].Location)
}

func TestRegistry_GetProfile(t *testing.T) {
	reg := writeProfiles(t, "[local]\nkind = csv\ndir = ./data\n")

	src, err := reg.GetProfile(context.Background(), "local")
	require.NoError(t, err)
	assert.Equal(t, "local", src.Name)
	assert.Equal(t, SourceCSV, src.Kind)

	_, err = reg.GetProfile(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRegistry_UnknownKind(t *testing.T) {
	reg := writeProfiles(t, "[bad]\nkind = mongo\nuri = mongodb://x\n")

	_, err := reg.GetProfile(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source kind")
}

func TestRegistry_MissingLocation(t *testing.T) {
	reg := writeProfiles(t, "[local]\nkind = csv\n")

	_, err := reg.GetProfile(context.Background(), "local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dir")
}
