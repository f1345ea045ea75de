// Package httpclient builds the HTTP client used for probing and wraps it in
// a Prober that issues single GET requests and classifies failures.
package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/duration"
)

// Config holds HTTP client configuration options.
type Config struct {
	// Timeout is the fallback request timeout when a probe passes none.
	Timeout time.Duration

	// UserAgent is sent on every probe.
	UserAgent string

	// VerifyTLS enables certificate verification. Probing defaults to off so
	// a broken certificate does not hide the application behind it; the TLS
	// inspector reports certificate problems separately.
	VerifyTLS bool

	// RootCAs overrides the system pool when VerifyTLS is set.
	RootCAs *x509.CertPool

	// FollowRedirects follows up to MaxRedirects hops within one probe.
	FollowRedirects bool
	MaxRedirects    int

	// Proxy is an http, https, socks5 or socks5h URL (optional).
	Proxy string

	// RateLimit caps probes per second across the whole scan; 0 disables it.
	RateLimit float64
}

// DefaultConfig returns the settings used for a normal scan.
func DefaultConfig() Config {
	return Config{
		Timeout:         duration.DefaultProbe,
		UserAgent:       defaults.UserAgent("scan"),
		FollowRedirects: true,
		MaxRedirects:    defaults.MaxRedirects,
	}
}

var errTooManyRedirects = errors.New("too many redirects")

// New creates an HTTP client for cfg. Cookies are never stored, so each probe
// is independent of the previous ones.
func New(cfg Config) (*http.Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = duration.DefaultProbe
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = defaults.MaxRedirects
	}

	dialer := &net.Dialer{
		Timeout:   duration.Dial,
		KeepAlive: duration.KeepAlive,
	}

	transport := &http.Transport{
		MaxIdleConns:        defaults.ConcurrencyMax * 2,
		MaxIdleConnsPerHost: defaults.ConcurrencyMax,
		IdleConnTimeout:     duration.IdleConn,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: duration.TLSHandshake,
		DialContext:         dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS, //nolint:gosec // verification is opt-in for probing
			RootCAs:            cfg.RootCAs,
		},
	}

	if err := applyProxy(transport, cfg.Proxy); err != nil {
		return nil, err
	}

	// No Client.Timeout: each Fetch bounds its own request with a context
	// deadline, which may exceed cfg.Timeout.
	client := &http.Client{Transport: transport}
	if cfg.FollowRedirects {
		limit := cfg.MaxRedirects
		client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
			if len(via) >= limit {
				return fmt.Errorf("%w after %d hops", errTooManyRedirects, len(via))
			}
			return nil
		}
	} else {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client, nil
}
