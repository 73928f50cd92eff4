package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest_EncodesBody(t *testing.T) {
	r := NewRequest(http.MethodPost, "/books", map[string]any{"title": "T1"})

	assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
	b, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"T1"}`, string(b))
}

func TestDecodeEnvelope_Error(t *testing.T) {
	w := httptest.NewRecorder()
	_, _ = w.WriteString(`{"success":false,"error":{"code":"NOT_FOUND","message":"gone"}}`)

	env := DecodeEnvelope(t, w)

	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAuthorUpstream_ServesKnownAuthors(t *testing.T) {
	u := NewAuthorUpstream(t, UpstreamAuthor{ID: 7, FirstName: "Ada", LastName: "Lovelace"})

	resp, err := http.Get(u.URL + "/authors/7")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data UpstreamAuthor `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Lovelace", body.Data.LastName)

	missing, err := http.Get(u.URL + "/authors/8")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	assert.Equal(t, 2, u.Requests())
	assert.False(t, u.Overlapped())
}

func TestAuthorUpstream_UnavailableAuthor(t *testing.T) {
	u := NewAuthorUpstream(t, UpstreamAuthor{ID: 7, FirstName: "Ada", LastName: "Lovelace"})
	u.Unavailable = map[int64]bool{7: true}

	resp, err := http.Get(u.URL + "/authors/7")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
