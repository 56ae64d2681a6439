package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "ingest", "analyze", "trend", "migrate"}, names)

	analyze, _, err := root.Find([]string{"analyze"})
	require.NoError(t, err)
	assert.NotNil(t, analyze.Flags().Lookup("limit"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"NEWS_ANALYZER_CONFIG", "DATABASE_DSN", "LLM_API_KEY", "ML_INFERENCE_URL"} {
		t.Setenv(key, "")
	}
}

func TestTrendCommandWithMemoryStore(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n"), 0o600))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", path, "trend"})

	require.NoError(t, root.Execute())

	var report map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, float64(0), report["scored"])
	assert.NotEmpty(t, report["runId"])
}

func TestMigrateRequiresDSN(t *testing.T) {
	clearEnv(t)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"migrate"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.dsn")
}

func TestUnknownConfigFile(t *testing.T) {
	clearEnv(t)

	root := newRootCmd()
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "trend"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
