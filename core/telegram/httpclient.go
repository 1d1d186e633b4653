package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/insurancebot/core/telegram/netutil"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 90 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
	// Long polling holds the request open, and file downloads can be large.
	defaultClientTimeout = 90 * time.Second
	defaultRetryAttempts = 3
	defaultRetryBackoff  = time.Second
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls and file downloads.
func BuildHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout: defaultClientTimeout,
		Transport: &retryTransport{
			base:       transport,
			maxRetries: defaultRetryAttempts,
			backoff:    defaultRetryBackoff,
		},
	}
}

// retryTransport repeats requests that failed before a response arrived.
// Requests whose body cannot be replayed are attempted once.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	replayable := req.Body == nil || req.Body == http.NoBody || req.GetBody != nil

	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		curr := req
		if attempt > 0 {
			curr = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				curr.Body = body
			}
		}

		resp, err := base.RoundTrip(curr)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !replayable || !netutil.ShouldRetry(err) || attempt == t.maxRetries {
			break
		}

		timer := time.NewTimer(t.backoff * time.Duration(attempt+1))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}
