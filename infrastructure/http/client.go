// Package http builds outbound HTTP clients with bounded timeouts and pooling.
package http

import (
	"net/http"
	"time"
)

// Defaults.
const (
	DefaultTimeout               = 30 * time.Second
	DefaultMaxIdleConns          = 100
	DefaultMaxIdleConnsPerHost   = 10
	DefaultIdleConnTimeout       = 90 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultExpectContinueTimeout = 1 * time.Second
)

// ClientConfig configures an HTTP client. Zero fields take defaults.
type ClientConfig struct {
	// Timeout bounds a whole request including reading the body.
	Timeout time.Duration
	// ResponseHeaderTimeout bounds the wait for response headers. Zero means no limit,
	// which suits slow streaming upstreams bounded by a context instead.
	ResponseHeaderTimeout time.Duration
	MaxIdleConnsPerHost   int
}

// NewClient creates an HTTP client from cfg. A nil cfg uses defaults.
func NewClient(cfg *ClientConfig) *http.Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	perHost := cfg.MaxIdleConnsPerHost
	if perHost == 0 {
		perHost = DefaultMaxIdleConnsPerHost
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = DefaultMaxIdleConns
	transport.MaxIdleConnsPerHost = perHost
	transport.IdleConnTimeout = DefaultIdleConnTimeout
	transport.TLSHandshakeTimeout = DefaultTLSHandshakeTimeout
	transport.ExpectContinueTimeout = DefaultExpectContinueTimeout
	transport.ResponseHeaderTimeout = cfg.ResponseHeaderTimeout

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
