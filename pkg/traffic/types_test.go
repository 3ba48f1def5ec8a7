package traffic

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderCanonicalKeys(t *testing.T) {
	t.Parallel()

	h := make(Header)
	h.Set("content-type", "text/plain")
	h.Set("ACCESS-CONTROL-ALLOW-ORIGIN", "*")

	assert.Equal(t, "text/plain", h.Get("Content-Type"))
	assert.Equal(t, []string{"Access-Control-Allow-Origin", "Content-Type"}, h.Keys())

	h.Del("CONTENT-TYPE")
	assert.Empty(t, h.Get("content-type"))

	var nilHeader Header
	assert.Empty(t, nilHeader.Get("x"))
}

func TestMock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, body, contentType string
	}{
		{"text", "my mocked response", "text/plain; charset=utf-8"},
		{"json", `{"name":"Tatooine"}`, "application/json"},
		{"empty", "", "text/plain; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Mock(tt.body)
			assert.Equal(t, http.StatusOK, r.Status)
			assert.Equal(t, tt.contentType, r.Headers.Get("content-type"))
			assert.Equal(t, "*", r.Headers.Get("access-control-allow-origin"))
			if tt.body == "" {
				assert.Nil(t, r.Body)
			} else {
				assert.Equal(t, []byte(tt.body), r.Body)
			}
		})
	}
}
