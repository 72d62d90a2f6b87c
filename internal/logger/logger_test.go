package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Levels(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, false)
	Log.Debug().Msg("hidden")
	Log.Info().Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "shown", entry["message"])

	buf.Reset()
	Init(&buf, true)
	Log.Debug().Msg("visible now")
	assert.Contains(t, buf.String(), "visible now")
}

func TestWithRun(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, false)
	WithRun("abc-123")
	Log.Info().Msg("tagged")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "abc-123", entry["run_id"])
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "****", Redact("short"))
	assert.Equal(t, "BQDx1a…", Redact("BQDx1aLongTokenValue"))
}
