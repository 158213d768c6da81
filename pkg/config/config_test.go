package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := NewConfig()
		assert.Equal(t, "5000", c.Port())
		assert.Equal(t, time.Second, c.DefaultTimeout())
		assert.Equal(t, 30*time.Second, c.MaxTimeout())
		assert.Greater(t, c.NumWorkers(), 0)
		assert.Empty(t, c.EdgeLists())
		assert.Equal(t, "info", c.LogLevel())
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("ASTARX_SERVER_PORT", "6060")
		t.Setenv("ASTARX_SEARCH_MAX_TIMEOUT_MS", "250")
		c := NewConfig()
		assert.Equal(t, "6060", c.Port())
		assert.Equal(t, 250*time.Millisecond, c.MaxTimeout())
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "astarx.yaml")
		content := "search:\n  default_timeout_ms: 1500\ngraph:\n  edge_lists:\n    - a.csv\n    - b.csv.zst\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		c := NewConfig()
		require.NoError(t, c.LoadFromFile(path))
		assert.Equal(t, 1500*time.Millisecond, c.DefaultTimeout())
		assert.Equal(t, []string{"a.csv", "b.csv.zst"}, c.EdgeLists())
	})

	t.Run("missing config file", func(t *testing.T) {
		assert.Error(t, NewConfig().LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")))
	})
}

func TestCreateLogger(t *testing.T) {
	c := NewConfig()
	c.Set("logging.console", false)
	c.Set("logging.level", "warn")

	var buf bytes.Buffer
	logger := c.createLogger(&buf, "astarx-test")
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "astarx-test", line["service"])
}
