package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nickandperla.net/nock/pkg/nock"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "nock.yaml", `
db: /tmp/other.db
max_depth: 500
max_steps: 100000
timeout: 250ms
persist_mode: always
history_file: /tmp/hist
no_stdlib: true
`)
	cfg, err := loadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, Config{
		DB:          "/tmp/other.db",
		MaxDepth:    500,
		MaxSteps:    100000,
		Timeout:     Duration(250 * time.Millisecond),
		PersistMode: "always",
		HistoryFile: "/tmp/hist",
		NoStdlib:    true,
	}, cfg)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, nock.DefaultMaxDepth, cfg.MaxDepth)

	_, err = loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), true)
	assert.Error(t, err)

	// Keys left out keep their defaults.
	cfg, err = loadConfig(writeFile(t, "partial.yaml", "max_steps: 7\n"), true)
	require.NoError(t, err)
	assert.Equal(t, "nock.db", cfg.DB)
	assert.Equal(t, int64(7), cfg.MaxSteps)

	cfg, err = loadConfig(writeFile(t, "empty.yaml", ""), true)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	for _, content := range []string{
		"max_depht: 3\n",
		"timeout: soon\n",
		"max_steps: [1, 2]\n",
	} {
		_, err := loadConfig(writeFile(t, "bad.yaml", content), true)
		assert.Error(t, err, content)
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := defaultConfig()
	cfg.PersistMode = "sometimes"
	_, err := cfg.options()
	assert.Error(t, err)

	cfg = defaultConfig()
	cfg.DB = ""
	cfg.NoStdlib = true
	opts, err := cfg.options()
	require.NoError(t, err)
	rt, err := nock.New(opts...)
	require.NoError(t, err)
	defer rt.Close()
	assert.Empty(t, rt.Names())
}
