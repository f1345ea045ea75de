package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Sentinel errors for probe failure modes. A ProbeError matches the sentinel
// for its Kind, so callers use errors.Is.
var (
	// ErrTimeout indicates the target did not answer within the probe deadline.
	ErrTimeout = errors.New("httpclient: timeout")

	// ErrConnection indicates DNS, dial or proxy failure.
	ErrConnection = errors.New("httpclient: connection failed")

	// ErrTLS indicates a TLS handshake or certificate verification failure.
	ErrTLS = errors.New("httpclient: TLS handshake failed")

	// ErrProxyConfig indicates a malformed or unsupported proxy URL.
	ErrProxyConfig = errors.New("httpclient: invalid proxy")
)

// ErrorKind classifies a failed probe.
type ErrorKind string

const (
	KindTimeout          ErrorKind = "timeout"
	KindConnectionFailed ErrorKind = "connection_failed"
	KindTLSFailed        ErrorKind = "tls_failed"
	KindOther            ErrorKind = "other"
)

// ProbeError is returned by Prober.Fetch for every transport-level failure.
type ProbeError struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel corresponding to the error kind.
func (e *ProbeError) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrConnection:
		return e.Kind == KindConnectionFailed
	case ErrTLS:
		return e.Kind == KindTLSFailed
	}
	return false
}

// IsTimeout reports whether err is a probe timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Classify maps a transport error onto an ErrorKind. TLS checks run before
// the generic net.Error checks because handshake failures are also OpErrors.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var (
		verifyErr   *tls.CertificateVerificationError
		recordErr   tls.RecordHeaderError
		alertErr    tls.AlertError
		unknownAuth x509.UnknownAuthorityError
		invalidCert x509.CertificateInvalidError
		hostnameErr x509.HostnameError
	)
	switch {
	case errors.As(err, &verifyErr),
		errors.As(err, &recordErr),
		errors.As(err, &alertErr),
		errors.As(err, &unknownAuth),
		errors.As(err, &invalidCert),
		errors.As(err, &hostnameErr),
		strings.Contains(err.Error(), "tls: "):
		return KindTLSFailed
	}

	var (
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.Is(err, ErrConnection) {
		return KindConnectionFailed
	}
	return KindOther
}

func newProbeError(rawURL string, err error) *ProbeError {
	return &ProbeError{Kind: Classify(err), URL: rawURL, Err: err}
}
