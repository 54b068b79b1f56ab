// Package netutil builds outbound HTTP clients shared by the Telegram poller
// and the storage backends.
package netutil

import (
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

// ClientOptions tunes NewClient. Zero fields take the defaults below.
type ClientOptions struct {
	Timeout         time.Duration
	ResponseTimeout time.Duration
	Retries         int
	Backoff         time.Duration
	// RetryStatus also retries responses with RetryableStatus codes.
	RetryStatus bool
}

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultResponseTimeout   = 5 * time.Second
	defaultClientTimeout     = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
	defaultRetryAttempts     = 3
	defaultRetryBackoff      = 2 * time.Second
)

func (o ClientOptions) withDefaults() ClientOptions {
	if o.Timeout <= 0 {
		o.Timeout = defaultClientTimeout
	}
	if o.ResponseTimeout <= 0 {
		o.ResponseTimeout = defaultResponseTimeout
	}
	if o.Retries < 0 {
		o.Retries = 0
	} else if o.Retries == 0 {
		o.Retries = defaultRetryAttempts
	}
	if o.Backoff <= 0 {
		o.Backoff = defaultRetryBackoff
	}
	return o
}

// NewClient returns an HTTP client with pooled keep-alive connections and a
// transport that retries transient failures with linear backoff. Requests
// with a non-idempotent method are retried only when the dial failed.
func NewClient(opts ClientOptions) *http.Client {
	opts = opts.withDefaults()
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ResponseHeaderTimeout: opts.ResponseTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: NewRetryTransport(transport, opts),
	}
}

// NewRetryTransport wraps base with the retry policy of opts.
func NewRetryTransport(base http.RoundTripper, opts ClientOptions) http.RoundTripper {
	opts = opts.withDefaults()
	return &retryTransport{
		base:        base,
		maxRetries:  opts.Retries,
		backoff:     opts.Backoff,
		retryStatus: opts.RetryStatus,
	}
}

type retryTransport struct {
	base        http.RoundTripper
	maxRetries  int
	backoff     time.Duration
	retryStatus bool
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	attempts := t.maxRetries + 1
	replayable := idempotent(req.Method)
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		currReq := req
		if attempt > 1 {
			currReq = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				currReq.Body = body
			} else if req.Body != nil && req.Body != http.NoBody {
				return nil, lastErr
			}
		}

		resp, err := base.RoundTrip(currReq)
		switch {
		case err == nil && !(t.retryStatus && replayable && RetryableStatus(resp.StatusCode)):
			return resp, nil
		case err == nil:
			if attempt == attempts {
				return resp, nil
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			lastErr = &StatusError{Code: resp.StatusCode}
		default:
			lastErr = err
			if !ShouldRetry(err) || !(replayable || notSent(err)) || attempt == attempts {
				return nil, lastErr
			}
		}

		timer := time.NewTimer(t.backoff * time.Duration(attempt))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}

	return nil, lastErr
}

// idempotent reports whether a request with method may reach the server twice.
func idempotent(method string) bool {
	switch method {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// notSent reports whether err failed the request before it left the client.
func notSent(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// StatusError records a retried HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return "upstream status " + http.StatusText(e.Code)
}
