package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// NewRequest creates a new HTTP request for testing. A non-nil body is JSON-encoded.
func NewRequest(method, path string, body any) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// Envelope mirrors the httpx response envelope with data left raw.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// DecodeEnvelope reads the recorded response body as an Envelope.
func DecodeEnvelope(t testing.TB, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}

// DecodeData decodes a successful envelope's data into dst.
func DecodeData(t testing.TB, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := DecodeEnvelope(t, w)
	require.True(t, env.Success, "expected success envelope, got error %q", env.Error.Code)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// UpstreamAuthor is an author as served by AuthorUpstream.
type UpstreamAuthor struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthorUpstream is a fake author service answering GET /authors/{id}.
// It counts requests and records whether two requests were ever in flight at once.
type AuthorUpstream struct {
	URL string
	// Hang makes every request block until the client gives up.
	Hang bool
	// Unavailable lists author ids answered with 503 Service Unavailable.
	Unavailable map[int64]bool

	authors  map[int64]UpstreamAuthor
	requests atomic.Int32
	inFlight atomic.Int32
	overlap  atomic.Bool
}

// NewAuthorUpstream starts a fake author service closed at test cleanup.
func NewAuthorUpstream(t testing.TB, authors ...UpstreamAuthor) *AuthorUpstream {
	t.Helper()
	u := &AuthorUpstream{authors: make(map[int64]UpstreamAuthor, len(authors))}
	for _, a := range authors {
		u.authors[a.ID] = a
	}
	srv := httptest.NewServer(u)
	t.Cleanup(srv.Close)
	u.URL = srv.URL
	return u
}

func (u *AuthorUpstream) Requests() int { return int(u.requests.Load()) }

// Overlapped reports whether requests were ever served concurrently.
func (u *AuthorUpstream) Overlapped() bool { return u.overlap.Load() }

func (u *AuthorUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.requests.Add(1)
	if u.inFlight.Add(1) > 1 {
		u.overlap.Store(true)
	}
	defer u.inFlight.Add(-1)

	if u.Hang {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		return
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/authors/"), 10, 64)
	if err == nil && u.Unavailable[id] {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	a, ok := u.authors[id]
	if err != nil || !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": a})
}
