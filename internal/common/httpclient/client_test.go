package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := New("test", time.Second, 3, WithInitialInterval(time.Millisecond))

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.DoJSON(context.Background(), Request{Method: http.MethodGet, URL: server.URL}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_ClientErrorsArePermanent(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid api key"))
	}))
	defer server.Close()

	c := New("test", time.Second, 3, WithInitialInterval(time.Millisecond))
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, URL: server.URL})

	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Contains(t, err.Error(), "invalid api key")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_SendsBodyHeadersAndBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "svc", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "value", body["key"])
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := New("test", time.Second, 0)
	_, err := c.Do(context.Background(), Request{
		Method:   http.MethodPost,
		URL:      server.URL,
		Headers:  map[string]string{"X-Test": "yes"},
		Body:     map[string]string{"key": "value"},
		Username: "svc",
		Password: "secret",
	})
	require.NoError(t, err)
}

func TestClient_TimeoutIsDetected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := New("test", 20*time.Millisecond, 0)
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, URL: server.URL})

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.False(t, IsTimeout(&StatusError{StatusCode: 500}))
}
