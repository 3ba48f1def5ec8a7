package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cdpmock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, "127.0.0.1", c.Interception.ServerHost)
	assert.Equal(t, 200*time.Millisecond, c.Grace())
	assert.Equal(t, 3*time.Second, c.ProcessTimeout())
	assert.Empty(t, c.Journal.DSN)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
log:
  level: debug
  writer: [console, file]
  file: logs/cdpmock.log
interception:
  serverHost: localhost
  graceMS: 50
devtools:
  url: http://127.0.0.1:9333
journal:
  dsn: journal.sqlite3
rulesFile: rules.yaml
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "localhost", c.Interception.ServerHost)
	assert.Equal(t, 50*time.Millisecond, c.Grace())
	assert.Equal(t, 16, c.Interception.Workers)
	assert.Equal(t, "http://127.0.0.1:9333", c.DevTools.URL)
	assert.Equal(t, "journal.sqlite3", c.Journal.DSN)
	assert.Equal(t, "rules.yaml", c.RulesFile)
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"bad_level", "log:\n  level: loud\n"},
		{"bad_writer", "log:\n  writer: [syslog]\n"},
		{"file_without_path", "log:\n  writer: [file]\n"},
		{"negative_grace", "interception:\n  graceMS: -1\n"},
		{"empty_host", "interception:\n  serverHost: ''\n"},
		{"bad_devtools_url", "devtools:\n  url: not a url\n"},
		{"bad_yaml", "log: [\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadNotExist(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/cdpmock.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExampleConfigFile(t *testing.T) {
	t.Parallel()

	c, err := Load(filepath.Join("..", "..", "examples", "cdpmock.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "cdpmock.sqlite3", c.Journal.DSN)
	assert.EqualValues(t, 10, c.DevTools.AttachAttempts)
}
