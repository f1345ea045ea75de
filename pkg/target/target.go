// Package target parses and validates the single URL a scan runs against
// and derives the values modules need from it.
package target

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/webprobe/webprobe/pkg/defaults"
)

// Param is one query parameter with every value it carries, in the order the
// values appear.
type Param struct {
	Name   string
	Values []string
}

// Target is an absolute http(s) URL. It is immutable; every accessor returns
// freshly computed values.
type Target struct {
	raw string
	u   url.URL
}

// Parse validates raw and returns a Target. Missing schemes are rejected
// rather than guessed.
func Parse(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, fmt.Errorf("%w: empty", ErrInvalidTarget)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "":
		return Target{}, fmt.Errorf("%w: %q has no scheme", ErrUnsupportedScheme, raw)
	default:
		return Target{}, fmt.Errorf("%w: got %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" || u.Hostname() == "" {
		return Target{}, fmt.Errorf("%w: %q has no host", ErrInvalidTarget, raw)
	}
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err != nil || n < 1 || n > 65535 {
			return Target{}, fmt.Errorf("%w: bad port %q", ErrInvalidTarget, p)
		}
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Fragment = ""
	return Target{raw: raw, u: *u}, nil
}

// MustParse is like Parse but panics on error. Intended for tests.
func MustParse(raw string) Target {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the URL as supplied by the operator.
func (t Target) String() string {
	return t.raw
}

// URL returns a copy of the parsed URL.
func (t Target) URL() *url.URL {
	u := t.u
	return &u
}

// Hostname returns the host without port.
func (t Target) Hostname() string {
	return t.u.Hostname()
}

// Port returns the explicit port or the scheme default.
func (t Target) Port() int {
	if p := t.u.Port(); p != "" {
		n, _ := strconv.Atoi(p)
		return n
	}
	if t.IsHTTPS() {
		return defaults.PortHTTPS
	}
	return defaults.PortHTTP
}

// IsHTTPS reports whether the scheme is https.
func (t Target) IsHTTPS() bool {
	return t.u.Scheme == "https"
}

// Params returns the query parameters in order of first appearance. Blank
// values are kept so `?q=` is still probed.
func (t Target) Params() []Param {
	var params []Param
	index := make(map[string]int)
	for _, pair := range strings.Split(t.u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(k)
		if err != nil || name == "" {
			continue
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			value = v
		}
		if i, ok := index[name]; ok {
			params[i].Values = append(params[i].Values, value)
			continue
		}
		index[name] = len(params)
		params = append(params, Param{Name: name, Values: []string{value}})
	}
	return params
}

// HasParams reports whether the query string carries any parameter.
func (t Target) HasParams() bool {
	return len(t.Params()) > 0
}

// WithParam returns the URL with name's value replaced by value as its sole
// value. Every other parameter keeps its original values and position.
func (t Target) WithParam(name, value string) string {
	var b strings.Builder
	for _, p := range t.Params() {
		values := p.Values
		if p.Name == name {
			values = []string{value}
		}
		for _, v := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(p.Name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	u := t.u
	u.RawQuery = b.String()
	return u.String()
}
