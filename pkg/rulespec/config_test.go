package rulespec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `
rules:
  - url: https://swapi.dev/api/planets/1/
    method: get
    response: my mocked response
  - pattern: '^https://api\.test/users/\d+$'
    json:
      name: Luke
      planet:
        id: 1
allow:
  - pattern: '^http://127\.0\.0\.1'
  - url: https://allowed.test
    method: post
`

func TestParseConfigBuild(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(sampleRules))
	require.NoError(t, err)

	rules, allow, err := cfg.Build()
	require.NoError(t, err)
	require.Len(t, rules, 2)
	require.Len(t, allow, 2)

	assert.Equal(t, MethodGet, rules[0].Method)
	assert.Equal(t, "my mocked response", rules[0].Response)
	assert.Equal(t, MatchPattern, rules[1].URL.Kind())
	assert.Equal(t, AnyMethod, rules[1].Method)
	assert.JSONEq(t, `{"name":"Luke","planet":{"id":1}}`, rules[1].Response)

	assert.Equal(t, AnyMethod, allow[0].Method)
	assert.Equal(t, MethodPost, allow[1].Method)
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{"no_matcher", "rules:\n  - response: x\n"},
		{"two_matchers", "rules:\n  - url: a\n    exact: b\n"},
		{"bad_pattern", "allow:\n  - pattern: '('\n"},
		{"response_and_json", "rules:\n  - url: a\n    response: x\n    json:\n      k: v\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tc.yaml))
			require.NoError(t, err)
			_, _, err = cfg.Build()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Rules, 2)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNilConfigBuild(t *testing.T) {
	t.Parallel()

	var cfg *Config
	rules, allow, err := cfg.Build()
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.Empty(t, allow)
}

func TestExampleRulesFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join("..", "..", "examples", "rules.yaml"))
	require.NoError(t, err)
	rules, allow, err := cfg.Build()
	require.NoError(t, err)
	assert.Len(t, rules, 3)
	assert.Len(t, allow, 1)
	assert.True(t, rules[0].Matches("https://swapi.dev/api/planets/1/", "GET"))
	assert.True(t, rules[1].Matches("https://swapi.dev/api/people/1/", "GET"))
}
