// Package http builds net/http clients with bounded timeouts for
// calls against the directory service.
package http

import (
	"net"
	"net/http"
	"time"
)

// ClientConfig holds HTTP client configuration
type ClientConfig struct {
	// ConnectTimeout bounds TCP connection establishment
	ConnectTimeout time.Duration
	// RequestTimeout bounds the whole request including body read
	RequestTimeout      time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	Transport           http.RoundTripper
}

// DefaultClientConfig returns the timeouts used for directory requests:
// 10s to connect, 30s for the full round trip.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ConnectTimeout:      10 * time.Second,
		RequestTimeout:      30 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

// ClientOption is a function that modifies ClientConfig
type ClientOption func(*ClientConfig)

// WithConnectTimeout sets the dial timeout
func WithConnectTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.ConnectTimeout = timeout
	}
}

// WithRequestTimeout sets the overall request timeout
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.RequestTimeout = timeout
	}
}

// WithTransport sets a custom transport
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *ClientConfig) {
		c.Transport = transport
	}
}

// NewClient creates a new HTTP client with the given options
func NewClient(opts ...ClientOption) *http.Client {
	cfg := DefaultClientConfig()

	for _, opt := range opts {
		opt(&cfg)
	}

	var transport http.RoundTripper
	if cfg.Transport != nil {
		transport = cfg.Transport
	} else {
		transport = &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: cfg.ConnectTimeout,
			}).DialContext,
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.IdleConnTimeout,
		}
	}

	return &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: transport,
	}
}
