// Package http_client builds the HTTP client the engine uses to reach the
// verse service.
package http_client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vk/prayerclock/internal/ctxlog"
)

// DefaultTimeout bounds a single verse lookup.
const DefaultTimeout = 10 * time.Second

// Input configures the client.
type Input struct {
	Timeout   time.Duration
	UserAgent string
}

// CreateHttpClient returns a client with pooled connections. A zero timeout
// uses DefaultTimeout.
func CreateHttpClient(ctx context.Context, input *Input) (*http.Client, error) {
	if input == nil {
		input = &Input{}
	}
	if input.Timeout < 0 {
		return nil, errors.New("http client timeout must not be negative")
	}
	timeout := input.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if input.UserAgent != "" {
		transport = &userAgent{name: input.UserAgent, next: transport}
	}

	ctxlog.FromContext(ctx).Debug("HTTP client created.", "timeout", timeout)
	return &http.Client{Timeout: timeout, Transport: transport}, nil
}

// DestroyHttpClient closes idle connections.
func DestroyHttpClient(client *http.Client) error {
	client.CloseIdleConnections()
	return nil
}

type userAgent struct {
	name string
	next http.RoundTripper
}

func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", u.name)
	return u.next.RoundTrip(clone)
}

func (u *userAgent) CloseIdleConnections() {
	if c, ok := u.next.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}
