package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(Options{Level: "warn", Console: &buf, NoColor: true})
	defer closer.Close()

	logger.Info().Msg("hidden")
	logger.Warn().Str("font", "pop").Msg("未找到字体")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "未找到字体")
	assert.Contains(t, out, "font=pop")
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "emodis.log")
	logger, closer := New(Options{Level: "debug", File: path})
	logger.Debug().Int("size", 128).Msg("render")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "render", entry["message"])
	assert.Equal(t, "debug", entry["level"])
	assert.EqualValues(t, 128, entry["size"])
}
