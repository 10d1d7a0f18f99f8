package pipeline

import (
	"net/http"
	"time"
)

const (
	idleConnTimeout   = 90 * time.Second
	respHeaderTimeout = 30 * time.Second
)

// NewPooledHTTPClient creates an http.Client whose connection pool is sized
// for the expected number of concurrent rehearsal sessions. Pool sizes below
// one fall back to a single idle connection.
func NewPooledHTTPClient(poolSize int, timeout time.Duration) *http.Client {
	if poolSize < 1 {
		poolSize = 1
	}
	transport := &http.Transport{
		MaxIdleConns:          poolSize,
		MaxIdleConnsPerHost:   poolSize,
		IdleConnTimeout:       idleConnTimeout,
		ResponseHeaderTimeout: respHeaderTimeout,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
