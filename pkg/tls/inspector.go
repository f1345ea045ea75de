// Package tls inspects the certificate a target presents during a TLS
// handshake and grades the negotiated protocol.
//
// The handshake is driven by refraction-networking/utls with the Go client
// hello profile, so trust verification is the standard library's.
package tls

import (
	"context"
	stdtls "crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	utls "github.com/refraction-networking/utls"

	"github.com/webprobe/webprobe/pkg/duration"
)

// Result summarises one handshake. When Valid is false, Error explains why;
// certificate fields are filled whenever the server presented one.
type Result struct {
	Host        string    `json:"host"`
	Port        int       `json:"port"`
	Valid       bool      `json:"valid"`
	Subject     string    `json:"subject,omitempty"`
	Issuer      string    `json:"issuer,omitempty"`
	NotBefore   time.Time `json:"not_before,omitzero"`
	NotAfter    time.Time `json:"not_after,omitzero"`
	DNSNames    []string  `json:"dns_names,omitempty"`
	Version     uint16    `json:"-"`
	VersionName string    `json:"version,omitempty"`
	CipherSuite string    `json:"cipher_suite,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Inspector performs verifying TLS handshakes.
type Inspector struct {
	timeout time.Duration
	roots   *x509.CertPool
	hello   utls.ClientHelloID
	logger  *slog.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithTimeout bounds dial plus handshake.
func WithTimeout(d time.Duration) Option {
	return func(i *Inspector) { i.timeout = d }
}

// WithRootCAs replaces the system trust store.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(i *Inspector) { i.roots = pool }
}

// WithLogger sets a custom structured logger for the inspector.
func WithLogger(l *slog.Logger) Option {
	return func(i *Inspector) { i.logger = l }
}

// NewInspector returns an Inspector using the system trust store.
func NewInspector(opts ...Option) *Inspector {
	i := &Inspector{
		timeout: duration.TLSHandshake,
		hello:   utls.HelloGolang,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.timeout <= 0 {
		i.timeout = duration.TLSHandshake
	}
	return i
}

// Inspect connects to host:port and reports the certificate. It never
// returns an error or panics: every failure becomes Valid=false with Error
// populated.
func (i *Inspector) Inspect(ctx context.Context, host string, port int) (res Result) {
	res = Result{Host: host, Port: port}
	defer func() {
		if r := recover(); r != nil {
			res.Valid = false
			res.Error = fmt.Sprintf("handshake panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		res.Error = err.Error()
		i.logger.Debug("tls dial failed", slog.String("addr", addr), slog.String("error", res.Error))
		return res
	}
	defer conn.Close()

	uConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		RootCAs:    i.roots,
		MinVersion: utls.VersionTLS10,
	}, i.hello)
	defer uConn.Close()

	handshakeErr := uConn.HandshakeContext(ctx)
	state := uConn.ConnectionState()
	if len(state.PeerCertificates) > 0 {
		fillCertificate(&res, state.PeerCertificates[0])
	}
	if handshakeErr != nil {
		res.Error = handshakeErr.Error()
		i.logger.Debug("tls handshake failed", slog.String("addr", addr), slog.String("error", res.Error))
		return res
	}

	res.Valid = true
	res.Version = state.Version
	res.VersionName = stdtls.VersionName(state.Version)
	res.CipherSuite = stdtls.CipherSuiteName(state.CipherSuite)
	return res
}

func fillCertificate(res *Result, cert *x509.Certificate) {
	res.Subject = commonNameOr(cert.Subject.CommonName, cert.Subject.String())
	res.Issuer = commonNameOr(cert.Issuer.CommonName, cert.Issuer.String())
	res.NotBefore = cert.NotBefore
	res.NotAfter = cert.NotAfter
	res.DNSNames = cert.DNSNames
}

func commonNameOr(cn, full string) string {
	if strings.TrimSpace(cn) != "" {
		return cn
	}
	return full
}
