// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_SetsHeaders(t *testing.T) {
	var gotUA, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	resp, err := Get(context.Background(), ts.Client(), ts.URL, "paper-miner-test/0.1")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "paper-miner-test/0.1", gotUA)
	assert.Equal(t, "application/pdf", gotAccept)
}

func TestGet_DefaultUserAgent(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	resp, err := Get(context.Background(), ts.Client(), ts.URL, "")
	require.NoError(t, err)
	Discard(resp)

	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestGet_NoRetryOnServerError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	resp, err := Get(context.Background(), ts.Client(), ts.URL, "")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGet_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := Get(context.Background(), NewClient(), url, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP request")
}

func TestGet_BadURL(t *testing.T) {
	_, err := Get(context.Background(), NewClient(), "://missing-scheme", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating request")
}
