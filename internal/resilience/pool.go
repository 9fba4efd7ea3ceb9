package resilience

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Pool is a circuit-breaker-protected HTTP client with a bounded, keep-alive
// transport. All upstream calls made by the source clients go through a Pool
// so that connection reuse and failure isolation are handled in one place.
type Pool struct {
	client  *http.Client
	breaker *CircuitBreaker

	requests int64
	failures int64
}

// PoolConfig bounds the transport owned by a Pool.
type PoolConfig struct {
	MaxIdleConns    int
	MaxConnsPerHost int
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
}

// DefaultPoolConfig returns the transport bounds used for upstream APIs.
// The 15s request timeout is the per-call budget for every external fetch.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxIdleConns:    10,
		MaxConnsPerHost: 20,
		IdleTimeout:     30 * time.Second,
		RequestTimeout:  15 * time.Second,
	}
}

// NewPool creates a pool around a fresh transport and the given breaker.
func NewPool(config PoolConfig, cb *CircuitBreaker) *Pool {
	transport := &http.Transport{
		MaxIdleConns:          config.MaxIdleConns,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		MaxIdleConnsPerHost:   config.MaxIdleConns / 2,
		IdleConnTimeout:       config.IdleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: config.RequestTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Pool{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.RequestTimeout,
		},
		breaker: cb,
	}
}

// Do executes an HTTP request through the breaker. A non-2xx status is not an
// error at this layer; callers decide how to degrade.
func (p *Pool) Do(ctx context.Context, method, url string, headers map[string]string) (*http.Response, error) {
	var resp *http.Response

	err := p.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return err
		}

		for key, value := range headers {
			req.Header.Set(key, value)
		}

		start := time.Now()
		resp, err = p.client.Do(req)
		duration := time.Since(start)

		atomic.AddInt64(&p.requests, 1)
		if err != nil {
			atomic.AddInt64(&p.failures, 1)
			slog.Warn("Upstream request failed", "url", url, "error", err, "duration_ms", duration.Milliseconds())
			return err
		}

		slog.Debug("Upstream request completed", "url", url, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())
		return nil
	})

	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Stats returns pool statistics for the monitoring endpoints.
func (p *Pool) Stats() map[string]interface{} {
	return map[string]interface{}{
		"requests":              atomic.LoadInt64(&p.requests),
		"failures":              atomic.LoadInt64(&p.failures),
		"circuit_breaker_state": p.breaker.State().String(),
		"circuit_failures":      p.breaker.Failures(),
	}
}

// Close releases idle connections held by the transport.
func (p *Pool) Close() error {
	if transport, ok := p.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	return nil
}
