package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/proxy"
)

var supportedProxySchemes = map[string]bool{
	"http":    true,
	"https":   true,
	"socks5":  true,
	"socks5h": true, // DNS resolved by the proxy
}

// ParseProxyURL validates a proxy URL. An empty string means no proxy and
// yields nil, nil. A missing scheme defaults to http.
func ParseProxyURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProxyConfig, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if !supportedProxySchemes[u.Scheme] {
		return nil, fmt.Errorf("%w: unsupported scheme %q, want http, https, socks5 or socks5h", ErrProxyConfig, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host", ErrProxyConfig)
	}
	if u.Port() == "" {
		port := "8080"
		if strings.HasPrefix(u.Scheme, "socks") {
			port = "1080"
		}
		u.Host = net.JoinHostPort(u.Hostname(), port)
	}
	return u, nil
}

// applyProxy wires the proxy into transport: HTTP(S) proxies through
// Transport.Proxy, SOCKS proxies through a dialer from golang.org/x/net/proxy.
func applyProxy(transport *http.Transport, raw string) error {
	u, err := ParseProxyURL(raw)
	if err != nil || u == nil {
		return err
	}
	if !strings.HasPrefix(u.Scheme, "socks") {
		transport.Proxy = http.ProxyURL(u)
		return nil
	}

	socksURL := *u
	socksURL.Scheme = "socks5"
	d, err := proxy.FromURL(&socksURL, proxy.Direct)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProxyConfig, err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return d.Dial(network, addr)
		}
		return nil
	}
	transport.DialContext = cd.DialContext
	return nil
}
