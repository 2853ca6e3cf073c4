package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/wisebet-storefront-poc/internal/faults"
)

// stubTokens simula o session manager: Refresh troca o token corrente.
type stubTokens struct {
	mu          sync.Mutex
	token       string
	next        string
	refreshErr  error
	refreshes   atomic.Int32
	invalidated atomic.Int32
}

func (s *stubTokens) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *stubTokens) Refresh(context.Context) error {
	s.refreshes.Add(1)
	if s.refreshErr != nil {
		return s.refreshErr
	}
	s.mu.Lock()
	s.token = s.next
	s.mu.Unlock()
	return nil
}

func (s *stubTokens) Invalidate() {
	s.invalidated.Add(1)
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

func newTestClient(url string, tokens TokenSource) *Client {
	return New(url, 2*time.Second, zap.NewNop(), tokens)
}

func TestBearerAttachedWhenPresent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, &stubTokens{token: "tok-1"})
	require.NoError(t, c.Get(context.Background(), "/markets", nil))
	assert.Equal(t, "Bearer tok-1", got)
}

func TestNoBearerWhenUnauthenticated(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, &stubTokens{})
	var out []any
	require.NoError(t, c.Get(context.Background(), "/markets", &out))
	assert.Empty(t, got)
}

func TestRetriedExactlyOnceAfterSuccessfulRefresh(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"token expired"}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tokens := &stubTokens{token: "tok-old", next: "tok-new"}
	c := newTestClient(srv.URL, tokens)

	var out map[string]bool
	require.NoError(t, c.Get(context.Background(), "/bets/user", &out))
	assert.True(t, out["ok"])
	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, int32(1), tokens.refreshes.Load())
}

func TestRetryThatStill401FailsWithoutLooping(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"nope"}`))
	}))
	defer srv.Close()

	tokens := &stubTokens{token: "tok-old", next: "tok-new"}
	c := newTestClient(srv.URL, tokens)

	err := c.Get(context.Background(), "/bets/user", nil)
	var ae *faults.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "nope", ae.Message)

	// uma requisição + um retry, nunca um terceiro
	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, int32(1), tokens.refreshes.Load())
	assert.Equal(t, int32(1), tokens.invalidated.Load())
}

func TestRefreshFailureSurfacesOriginalError(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"token expired"}`))
	}))
	defer srv.Close()

	tokens := &stubTokens{token: "tok-old", refreshErr: errors.New("refresh down")}
	c := newTestClient(srv.URL, tokens)

	err := c.Get(context.Background(), "/bets/user", nil)
	var ae *faults.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "token expired", ae.Message)

	// sem retry quando o refresh falha
	assert.Equal(t, int32(1), requests.Load())
	assert.Equal(t, int32(1), tokens.refreshes.Load())
}

func TestServerErrorMapsToNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"db down"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, &stubTokens{token: "tok"})
	err := c.Get(context.Background(), "/markets", nil)

	var ne *faults.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Contains(t, ne.Error(), "db down")
}

func TestTransportFailureMapsToNetworkError(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1", &stubTokens{})
	err := c.Get(context.Background(), "/markets", nil)

	var ne *faults.NetworkError
	assert.ErrorAs(t, err, &ne)
}

func TestPostRetriesWithSameBody(t *testing.T) {
	var bodies []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"token expired"}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tokens := &stubTokens{token: "tok-old", next: "tok-new"}
	c := newTestClient(srv.URL, tokens)

	require.NoError(t, c.Post(context.Background(), "/bets/place", map[string]string{"userId": "u1"}, nil))
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1])
}
