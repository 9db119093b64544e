package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json with component", func(t *testing.T) {
		var buf bytes.Buffer
		l := WithComponent(New("debug", FormatJSON, &buf), "engine")
		l.Debug().Str("rule", "obsolescence").Msg("rule finished")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "debug", entry["level"])
		assert.Equal(t, "engine", entry["component"])
		assert.Equal(t, "obsolescence", entry["rule"])
		assert.Contains(t, entry, "time")
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		l := New("warn", FormatJSON, &buf)
		l.Info().Msg("hidden")
		assert.Zero(t, buf.Len())

		l.Warn().Msg("shown")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		l := New("loud", FormatJSON, &buf)
		l.Debug().Msg("hidden")
		l.Info().Msg("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("console is not json", func(t *testing.T) {
		var buf bytes.Buffer
		l := New("info", FormatConsole, &buf)
		l.Info().Msg("hello")
		assert.Contains(t, buf.String(), "hello")
		assert.False(t, json.Valid(buf.Bytes()))
	})
}
