// Package httpx builds the REST clients used to talk to market-data vendors.
package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/brettelliot/azul/internal/slogx"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 2
	DefaultRetryWait = 15 * time.Second
)

// Options configures a vendor REST client. Retries is the number of extra attempts
// after a transport error, a 429 or a 5xx response; zero disables retrying.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	UserAgent string
	Logger    *slog.Logger
}

// baseTransport returns the shared HTTP transport configuration used by vendor clients.
func baseTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: 2 * time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		DisableKeepAlives:     true,
	}
}

// New creates a resty client with the shared transport, JSON accept header and retry policy.
func New(opts Options) *resty.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = DefaultRetryWait
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	c := resty.New().
		SetTransport(baseTransport()).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryWait).
		AddRetryCondition(Retryable).
		SetHeader("Accept", "application/json").
		SetLogger(slogx.Printf{L: opts.Logger})
	if opts.BaseURL != "" {
		c.SetBaseURL(opts.BaseURL)
	}
	if opts.UserAgent != "" {
		c.SetHeader("User-Agent", opts.UserAgent)
	}
	return c
}

// Retryable reports whether a response warrants another attempt.
func Retryable(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
}
