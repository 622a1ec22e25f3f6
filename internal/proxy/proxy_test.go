package proxy

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferBody_RestoresBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":1}`))

	data, err := BufferBody(r)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	again, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(again))
}

func TestToBackend_ForwardsAllowedHeadersOnly(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/customers/search", r.URL.Path)
		assert.Equal(t, "page=2", r.URL.RawQuery)
		assert.Equal(t, "Bearer backend-key", r.Header.Get("Authorization"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		assert.Equal(t, "de-DE", r.Header.Get("Accept-Language"))
		assert.Empty(t, r.Header.Get("Cookie"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"query":"smith"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"items":[]}`))
	}))
	defer backend.Close()

	r := httptest.NewRequest(http.MethodPost, "/admin/filter-customers?page=2", strings.NewReader(`ignored`))
	r.Header.Set("Authorization", "Bearer dashboard-session")
	r.Header.Set("Cookie", "session=abc")
	r.Header.Set("X-Request-ID", "req-1")
	r.Header.Set("Accept-Language", "de-DE")
	w := httptest.NewRecorder()

	authorize := func(req *http.Request) { req.Header.Set("Authorization", "Bearer backend-key") }
	ToBackend(w, r, slog.Default(), backend.URL+"/api/", "/v1/customers/search", []byte(`{"query":"smith"}`), authorize)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestToBackend_UnreachableIs502(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	r := httptest.NewRequest(http.MethodPost, "/admin/list-reverifications", nil)
	w := httptest.NewRecorder()
	ToBackend(w, r, slog.Default(), url, "/v1/x", nil, nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
