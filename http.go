package robodash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	pkghttp "github.com/jdziat/robodash/pkg/http"
)

// httpClient performs the GET requests of the client. Identical requests
// in flight at the same time share one round trip; nothing is kept after
// it completes.
type httpClient struct {
	doer      pkghttp.Doer
	userAgent string
	maxBytes  int64
	timeout   time.Duration
	hooks     *pkghttp.ClassifiedHookChain
	logger    StructuredLogger
	metrics   Metrics

	group singleflight.Group

	requests  atomic.Int64
	coalesced atomic.Int64
	failures  atomic.Int64
}

// newHTTPClient creates a new HTTP client.
func newHTTPClient(cfg *Config) *httpClient {
	return &httpClient{
		doer:      cfg.HTTPClient,
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxResponseBytes,
		timeout:   cfg.Timeout,
		hooks:     newHookChain(cfg),
		logger:    cfg.StructuredLogger,
		metrics:   cfg.Metrics,
	}
}

// getBytes fetches rawURL and returns the body. The returned slice may be
// shared with concurrent callers of the same URL and must not be modified.
//
// The shared round trip is detached from the cancellation of whichever
// caller started it and bounded by the client timeout instead. Each caller
// stops waiting when its own context is done.
func (h *httpClient) getBytes(ctx context.Context, rawURL string) ([]byte, error) {
	ch := h.group.DoChan(rawURL, func() (any, error) {
		flightCtx, cancel := h.flightContext(ctx)
		defer cancel()
		return h.doOnce(flightCtx, rawURL)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, fmt.Errorf("robodash: request to %s: %w", rawURL, ctx.Err())
	}
	if res.Shared {
		h.coalesced.Add(1)
		if h.metrics != nil {
			h.metrics.IncrementCounter("robodash.http.coalesced", 1)
		}
	}
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Val.([]byte), nil
}

func (h *httpClient) flightContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if h.timeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, h.timeout)
}

// getJSON fetches rawURL and decodes it into result. Numbers in untyped
// fields decode as json.Number.
func (h *httpClient) getJSON(ctx context.Context, rawURL string, result any) error {
	body, err := h.getBytes(ctx, rawURL)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(result); err != nil {
		return &DecodeError{URL: rawURL, Err: err}
	}
	return nil
}

// doOnce executes a single HTTP request.
func (h *httpClient) doOnce(ctx context.Context, rawURL string) ([]byte, error) {
	h.requests.Add(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("robodash: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", h.userAgent)

	if err := h.hooks.BeforeRequest(ctx, req); err != nil {
		h.failures.Add(1)
		return nil, err
	}

	start := time.Now()
	resp, err := h.doer.Do(req)
	if err != nil {
		h.failures.Add(1)
		h.hooks.AfterResponse(ctx, req, nil, time.Since(start), err)
		return nil, fmt.Errorf("robodash: request to %s failed: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	duration := time.Since(start)
	if readErr == nil && int64(len(body)) > h.maxBytes {
		readErr = ErrResponseTooLong
	}
	h.hooks.AfterResponse(ctx, req, resp, duration, readErr)

	if resp.StatusCode >= 400 {
		h.failures.Add(1)
		return nil, newAPIError(rawURL, resp.StatusCode, body)
	}
	if readErr != nil {
		h.failures.Add(1)
		return nil, fmt.Errorf("robodash: failed to read response from %s: %w", rawURL, readErr)
	}
	return body, nil
}

// newAPIError builds an *APIError from an error response. The hub answers
// with {"error": "..."}; other servers may send plain text.
func newAPIError(rawURL string, status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, URL: rawURL}
	if len(body) == 0 {
		return apiErr
	}
	if err := json.Unmarshal(body, apiErr); err != nil {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 {
			text = text[:200]
		}
		apiErr.Message = text
	}
	return apiErr
}
