package rulespec

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcherMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		matcher Matcher
		url     string
		want    bool
	}{
		{"literal_exact_url", Literal("https://swapi.dev/api/planets/1/"), "https://swapi.dev/api/planets/1/", true},
		{"literal_substring", Literal("swapi.dev/api"), "https://swapi.dev/api/planets/1/", true},
		{"literal_trailing_slash_matters", Literal("https://swapi.dev/api/planets/1/"), "https://swapi.dev/api/planets/1", false},
		{"literal_other_planet", Literal("https://swapi.dev/api/planets/1/"), "https://swapi.dev/api/planets/2/", false},
		{"exact_equal", Exact("https://a.test/x"), "https://a.test/x", true},
		{"exact_query_differs", Exact("https://a.test/x"), "https://a.test/x?y=1", false},
		{"pattern_match", Pattern(regexp.MustCompile(`planets/\d+/$`)), "https://swapi.dev/api/planets/7/", true},
		{"pattern_no_match", MustPattern(`^https://cdn\.`), "https://swapi.dev/", false},
		{"host_match", Host("127.0.0.1"), "http://127.0.0.1:4567/some/path", true},
		{"host_other_scheme", Host("127.0.0.1"), "https://127.0.0.1:4567/", false},
		{"host_bare", Host("127.0.0.1"), "http://127.0.0.1", true},
		{"host_query", Host("localhost"), "http://localhost?x=1", true},
		{"host_longer_address", Host("127.0.0.1"), "http://127.0.0.10/", false},
		{"host_suffix_domain", Host("127.0.0.1"), "http://127.0.0.1.evil.test/", false},
		{"host_with_port", Host("127.0.0.1:3000"), "http://127.0.0.1:30001/", false},
		{"zero_matches_nothing", Matcher{}, "https://a.test/", false},
		{"empty_literal_matches_nothing", Literal(""), "https://a.test/", false},
		{"nil_pattern_matches_nothing", Pattern(nil), "https://a.test/", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.matcher.Match(tc.url))
		})
	}
}

func TestCompilePatternError(t *testing.T) {
	t.Parallel()

	_, err := CompilePattern("(")
	assert.Error(t, err)
}

func TestParseMethod(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MethodGet, ParseMethod("get"))
	assert.Equal(t, MethodPost, ParseMethod(" Post "))
	assert.Equal(t, AnyMethod, ParseMethod(""))
	assert.Equal(t, AnyMethod, ParseMethod("any"))
	assert.Equal(t, Method("PURGE"), ParseMethod("purge"))
}

func TestMethodMatches(t *testing.T) {
	t.Parallel()

	assert.True(t, ParseMethod("get").Matches("GET"))
	assert.True(t, MethodGet.Matches("get"))
	assert.False(t, MethodGet.Matches("POST"))
	for _, m := range []string{"GET", "POST", "DELETE", "OPTIONS"} {
		assert.True(t, AnyMethod.Matches(m), m)
	}
}

func TestNewRule(t *testing.T) {
	t.Parallel()

	r := NewRule(Literal("https://a.test/"), "post", "ok")
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, MethodPost, r.Method)
	assert.True(t, r.Matches("https://a.test/x", "POST"))
	assert.False(t, r.Matches("https://a.test/x", "GET"))

	other := NewRule(Literal("https://a.test/"), "", "")
	assert.Equal(t, AnyMethod, other.Method)
	assert.NotEqual(t, r.ID, other.ID)
}

func TestAllowDefaultsToAnyMethod(t *testing.T) {
	t.Parallel()

	a := Allow(Literal("https://allowed.test"))
	assert.Equal(t, AnyMethod, a.Method)
	assert.True(t, a.Matches("https://allowed.test/x", "PATCH"))

	g := Allow(Literal("https://allowed.test"), "get")
	assert.False(t, g.Matches("https://allowed.test/x", "PATCH"))
}
