package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o600))
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, NewDefaultSettings(), s)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[model]
search = "gpt-4.1"

[features]
web_search = true

[web_search]
city = "Berlin"

[file_search]
max_results = 3
`)

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", s.Model.Search)
	assert.Equal(t, "o4-mini", s.Model.Reasoning)
	assert.True(t, s.Features.WebSearch)
	assert.False(t, s.Features.Reasoning)
	assert.Equal(t, "Berlin", s.WebSearch.City)
	assert.Equal(t, int64(3), s.FileSearch.MaxResults)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[model]\nsearch = \"gpt-4.1\"\n")
	t.Setenv("TURNSTREAM_MODEL_SEARCH", "gpt-4o-mini")
	t.Setenv("TURNSTREAM_FEATURES_REASONING", "true")

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", s.Model.Search)
	assert.True(t, s.Features.Reasoning)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[model\nsearch = ")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSave_ThenLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := NewDefaultSettings()
	s.Features.DisableFileSearch = true
	s.FileSearch.VectorStoreID = "vs_123"
	s.Storage = StorageSettings{Driver: "memory"}

	require.NoError(t, Save(dir, s))

	info, err := os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, loaded.Features.DisableFileSearch)
	assert.Equal(t, "vs_123", loaded.FileSearch.VectorStoreID)
	assert.Equal(t, "memory", loaded.Storage.Driver)
}

func TestSave_Nil(t *testing.T) {
	assert.Error(t, Save(t.TempDir(), nil))
}

func TestEngineConfig(t *testing.T) {
	s := NewDefaultSettings()
	s.Features.WebSearch = true
	s.WebSearch.Country = "DE"
	s.OpenAI.Timeout = "90s"

	cfg, err := s.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.True(t, cfg.Flags.WebSearch)
	assert.Equal(t, "DE", cfg.WebSearch.Location.Country)
	assert.Equal(t, "turnstream", cfg.FileSearch.VectorStoreName)
	assert.Equal(t, int64(10), cfg.FileSearch.MaxResults)
	assert.Equal(t, "gpt-4o", cfg.SearchModel)
}

func TestEngineConfig_BadTimeout(t *testing.T) {
	s := NewDefaultSettings()
	s.OpenAI.Timeout = "soon"

	_, err := s.EngineConfig()
	assert.ErrorContains(t, err, "openai.timeout")
}

func TestRedacted(t *testing.T) {
	s := NewDefaultSettings()
	s.OpenAI.APIKey = "sk-secret"

	r := s.Redacted()
	assert.Equal(t, "********", r.OpenAI.APIKey)
	assert.Equal(t, "sk-secret", s.OpenAI.APIKey)
}
