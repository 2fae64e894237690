// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the override variables for the duration of a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SLADEN_SERVER_URL", "LIGHTRAG_API_KEY", "SLADEN_TOKEN", "SLADEN_QUERY_MODE",
		"SLADEN_THEME", "SLADEN_LANG", "SLADEN_LOG_LEVEL", "SLADEN_CONFIG",
	} {
		t.Setenv(name, "")
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:9621", cfg.Server.URL)
	assert.Equal(t, "mix", cfg.Query.Mode)
	assert.Equal(t, 3, cfg.Query.HistoryTurns)
	assert.True(t, cfg.Query.Stream)
	assert.Equal(t, "json", cfg.Storage.Backend)
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Query, cfg.Query)
	assert.Equal(t, path, cfg.Path())
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Query.Mode = "hybrid"
	cfg.Query.Stream = false
	cfg.Query.HistoryTurns = 5
	cfg.Query.HLKeywords = []string{"graph", "rag"}
	cfg.UI.Theme = "light"
	require.NoError(t, cfg.SaveTo(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "hybrid", loaded.Query.Mode)
	assert.False(t, loaded.Query.Stream, "explicit false must survive a round trip")
	assert.Equal(t, 5, loaded.Query.HistoryTurns)
	assert.Equal(t, []string{"graph", "rag"}, loaded.Query.HLKeywords)
	assert.Equal(t, "light", loaded.UI.Theme)
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[query]\nmode = \"LOCAL\"\n"), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Query.Mode)
	assert.True(t, cfg.Query.Stream)
	assert.Equal(t, 3, cfg.Query.HistoryTurns)
}

func TestLoadFrom_UnknownTabFallsBackToChat(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ncurrent_tab = \"api\"\n"), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "chat", cfg.UI.CurrentTab)
}

func TestLoadFrom_InvalidMode(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[query]\nmode = \"telepathy\"\n"), 0600))

	_, err := LoadFrom(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "query.mode", verrs[0].Field)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.URL = "not a url"
	cfg.Query.HistoryTurns = -1
	cfg.UI.Theme = "neon"
	cfg.Storage.Backend = "mongo"

	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, want := range []string{"server.url", "query.history_turns", "ui.theme", "storage.backend"} {
		assert.True(t, fields[want], "missing error for %s", want)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLADEN_SERVER_URL", "https://rag.example.com/")
	t.Setenv("LIGHTRAG_API_KEY", "secret")
	t.Setenv("SLADEN_QUERY_MODE", "Bypass")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "https://rag.example.com", cfg.Server.URL)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, "bypass", cfg.Query.Mode)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("query.history_turns")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	require.NoError(t, cfg.Set("query.history_turns", "7"))
	assert.Equal(t, 7, cfg.Query.HistoryTurns)

	require.NoError(t, cfg.Set("query.stream", "false"))
	assert.False(t, cfg.Query.Stream)

	require.NoError(t, cfg.Set("query.ll_keywords", "alpha, beta"))
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Query.LLKeywords)

	err = cfg.Set("query.mode", "nope")
	require.Error(t, err)
	assert.Equal(t, "mix", cfg.Query.Mode, "failed Set must restore previous value")

	_, err = cfg.Get("query.bogus")
	assert.Error(t, err)
	_, err = cfg.Get("query")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "server.url")
	assert.Contains(t, keys, "query.mode")
	assert.Contains(t, keys, "log.max_backups")
	assert.NotContains(t, keys, "path")
}

func TestClone_Independent(t *testing.T) {
	cfg := Default()
	cfg.Query.HLKeywords = []string{"a"}
	cp := cfg.Clone()
	cp.Query.HLKeywords[0] = "b"
	cp.Query.Mode = "naive"

	assert.Equal(t, "a", cfg.Query.HLKeywords[0])
	assert.Equal(t, "mix", cfg.Query.Mode)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Default().SaveTo(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	ready := make(chan struct{})
	go func() {
		close(ready)
		_ = Watch(ctx, path, func(c *Config) { changes <- c }, nil)
	}()
	<-ready
	time.Sleep(100 * time.Millisecond)

	cfg := Default()
	cfg.Query.Mode = "global"
	require.NoError(t, cfg.SaveTo(path))

	select {
	case got := <-changes:
		assert.Equal(t, "global", got.Query.Mode)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
