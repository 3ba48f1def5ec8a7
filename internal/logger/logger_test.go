package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestWriterFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWriter(&buf).With("session", "s1")
	l.Warn("External request not intercepted: GET https://a.test/", "method", "GET")
	l.Err(errors.New("boom"), "fulfill failed", "url", "https://a.test/")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "s1", lines[0]["session"])
	assert.Equal(t, "GET", lines[0]["method"])
	assert.Equal(t, "External request not intercepted: GET https://a.test/", lines[0]["message"])
	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestNopAndTest(t *testing.T) {
	NewNop().Info("dropped", "k", "v")
	NewTest(t).Debug("written to t.Log", "k", "v")
}
