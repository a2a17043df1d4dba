package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client with a millisecond backoff unit and its
// allowlist opened up for httptest servers.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(WithRetryUnit(time.Millisecond))
	require.NoError(t, err)
	c.allowURL = func(string) bool { return true }
	return c
}

func TestRequestJSONSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newTestClient(t)
	body, err := c.RequestJSON(context.Background(), http.MethodGet, server.URL, "test-token", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))
}

func TestRequestJSONBlockedURL(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	c, err := New()
	require.NoError(t, err)

	_, err = c.RequestJSON(context.Background(), http.MethodGet, server.URL, "token", nil)
	require.ErrorIs(t, err, ErrBlockedURL)
	require.Zero(t, atomic.LoadInt32(&calls), "blocked request must not reach the network")
}

func TestRequestJSONRetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"recovered":true}`))
	}))
	defer server.Close()

	c := newTestClient(t)
	body, err := c.RequestJSON(context.Background(), http.MethodGet, server.URL, "token", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"recovered":true}`, string(body))
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRequestJSONRetriesExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"InternalError","message":"boom"}}`))
	}))
	defer server.Close()

	c := newTestClient(t)
	_, err := c.RequestJSON(context.Background(), http.MethodGet, server.URL, "token", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	require.Equal(t, "InternalError", apiErr.Code)
	// Initial attempt plus three retries.
	require.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestRequestJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"Forbidden","message":"no access"}}`))
	}))
	defer server.Close()

	c := newTestClient(t)
	_, err := c.RequestJSON(context.Background(), http.MethodGet, server.URL, "token", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	require.Contains(t, apiErr.Hint, "permission")
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRequestJSONMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"truncated`))
	}))
	defer server.Close()

	c := newTestClient(t)
	_, err := c.RequestJSON(context.Background(), http.MethodGet, server.URL, "token", nil)
	require.ErrorContains(t, err, "malformed response")
}

func TestRetryWaitSchedule(t *testing.T) {
	c, err := New(WithRetryUnit(time.Millisecond))
	require.NoError(t, err)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Millisecond},
		{2, 2 * time.Millisecond},
		{3, 4 * time.Millisecond},
		{4, 8 * time.Millisecond},
		{5, 8 * time.Millisecond},
	}
	for _, tt := range tests {
		resp := retryResponse(tt.attempt, "")
		require.Equal(t, tt.want, c.retryWait(resp), "attempt %d", tt.attempt)
	}
}

func TestRetryWaitHonorsRetryAfterHeader(t *testing.T) {
	c, err := New(WithRetryUnit(time.Millisecond))
	require.NoError(t, err)

	resp := retryResponse(1, "7")
	require.Equal(t, 7*time.Millisecond, c.retryWait(resp))

	// An unparsable header falls back to the exponential schedule.
	resp = retryResponse(2, "soon")
	require.Equal(t, 2*time.Millisecond, c.retryWait(resp))
}

func TestRetryAfterHeaderDrivesWaitEndToEnd(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newTestClient(t)
	body, err := c.RequestJSON(context.Background(), http.MethodGet, server.URL, "token", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestListAllFollowsPagination(t *testing.T) {
	var calls int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/page1":
			fmt.Fprintf(w, `{"value":[{"n":1},{"n":2}],"nextLink":"%s/page2"}`, server.URL)
		case "/page2":
			fmt.Fprintf(w, `{"value":[{"n":3}],"nextLink":"%s/page3"}`, server.URL)
		case "/page3":
			fmt.Fprint(w, `{"value":[{"n":4}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newTestClient(t)
	items, err := c.ListAll(context.Background(), server.URL+"/page1", "token")
	require.NoError(t, err)
	require.Len(t, items, 4)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))

	// Server order is preserved across pages.
	for i, item := range items {
		var entry struct {
			N int `json:"n"`
		}
		require.NoError(t, json.Unmarshal(item, &entry))
		require.Equal(t, i+1, entry.N)
	}
}

func TestListAllPropagatesPageError(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/page1" {
			fmt.Fprintf(w, `{"value":[{"n":1}],"nextLink":"%s/page2"}`, server.URL)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NotFound","message":"gone"}}`))
	}))
	defer server.Close()

	c := newTestClient(t)
	_, err := c.ListAll(context.Background(), server.URL+"/page1", "token")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

// retryResponse builds a minimal resty response for retryWait.
func retryResponse(attempt int, retryAfter string) *resty.Response {
	header := http.Header{}
	if retryAfter != "" {
		header.Set("Retry-After", retryAfter)
	}
	return &resty.Response{
		Request:     &resty.Request{Attempt: attempt},
		RawResponse: &http.Response{Header: header},
	}
}
