// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// DefaultUserAgent identifies paper-miner to remote servers.
const DefaultUserAgent = "paper-miner/0.1"

// NewClient returns the client used for document downloads. It follows
// redirects and sets no timeout: one request is one attempt.
func NewClient() *http.Client {
	return &http.Client{}
}

// Get issues a single GET for url, asking for a PDF. The caller closes the
// response body. There is no retry.
func Get(ctx context.Context, client *http.Client, url, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	return resp, nil
}

// Discard drains and closes a response body so the connection can be reused.
func Discard(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
