// Copyright 2025 James Ross
package adapter

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HTTPAdapter POSTs each payload to a configured endpoint. It self-throttles
// with a token bucket so a misbehaving producer cannot overwhelm the sink,
// and it optionally signs each request body with HMAC-SHA256 the way a
// webhook receiver would expect to verify it.
type HTTPAdapter struct {
	URL        string
	Secret     string
	Timeout    time.Duration
	RatePerSec float64
	Burst      int

	mu      sync.Mutex
	client  *http.Client
	limiter *rate.Limiter
	closed  bool
}

func NewHTTP(url, secret string, timeout time.Duration, ratePerSec float64, burst int) *HTTPAdapter {
	return &HTTPAdapter{URL: url, Secret: secret, Timeout: timeout, RatePerSec: ratePerSec, Burst: burst, closed: true}
}

func (a *HTTPAdapter) New() Adapter {
	return NewHTTP(a.URL, a.Secret, a.Timeout, a.RatePerSec, a.Burst)
}

func (a *HTTPAdapter) Name() string { return "http:" + a.URL }

func (a *HTTPAdapter) Open() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.client = &http.Client{Timeout: a.Timeout}
	limit := rate.Limit(a.RatePerSec)
	if a.RatePerSec <= 0 {
		limit = rate.Inf
	}
	burst := a.Burst
	if burst <= 0 {
		burst = 1
	}
	a.limiter = rate.NewLimiter(limit, burst)
	a.closed = false
	return nil
}

func (a *HTTPAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.client = nil
	return nil
}

func (a *HTTPAdapter) Flush() error {
	if a.Closed() {
		return &ClosedErr{}
	}
	return nil
}

func (a *HTTPAdapter) Emit(payload []byte) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return &ClosedErr{}
	}
	client, limiter := a.client, a.limiter
	a.mu.Unlock()

	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if a.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
	}
	defer cancel()
	if err := limiter.Wait(ctx); err != nil {
		return &EmitErr{Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL, bytes.NewReader(payload))
	if err != nil {
		return &EmitPermanentErr{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if a.Secret != "" {
		req.Header.Set("X-Emit-Signature", sign(a.Secret, payload))
	}

	resp, err := client.Do(req)
	if err != nil {
		return &EmitErr{Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return &EmitPermanentErr{Cause: fmt.Errorf("status %d", resp.StatusCode)}
	default:
		return &EmitErr{Cause: fmt.Errorf("status %d", resp.StatusCode)}
	}
}

func (a *HTTPAdapter) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
