package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("writes json to the configured path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chainz.log")
		logger, err := New(Config{Level: "debug", Encoding: "json", OutputPaths: []string{path}})
		require.NoError(t, err)

		logger.Debug("batch processed")
		require.NoError(t, logger.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		line := string(data)
		assert.Contains(t, line, `"message":"batch processed"`)
		assert.Contains(t, line, `"logger":"chainz"`)
		assert.Contains(t, line, `"level":"debug"`)
	})

	t.Run("filters below level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chainz.log")
		logger, err := New(Config{Level: "warn", Encoding: "json", OutputPaths: []string{path}})
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown")
		require.NoError(t, logger.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.False(t, strings.Contains(string(data), "hidden"))
		assert.Contains(t, string(data), "shown")
	})

	t.Run("defaults", func(t *testing.T) {
		logger, err := New(Config{})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("rejects bad settings", func(t *testing.T) {
		_, err := New(Config{Level: "loud"})
		assert.Error(t, err)

		_, err = New(Config{Encoding: "xml"})
		assert.Error(t, err)
	})
}
