// Package duration provides canonical time constants for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for time-based configuration.
//
// Usage:
//
//	resp, err := prober.Fetch(ctx, url, duration.HeaderProbe, nil)
//	inspector := tls.NewInspector(tls.Config{Timeout: duration.TLSHandshake})
//
// DO NOT use hardcoded time.Duration values like `5 * time.Second` in
// scanner packages. Reference the appropriate constant instead.
package duration

import "time"

// ============================================================================
// PROBE TIMEOUTS
// ============================================================================
//
// Each probe is bounded individually. No budget spans the whole scan unless
// the operator configures one.
// ============================================================================

const (
	// HeaderProbe is for the header policy fetch (5s)
	HeaderProbe = 5 * time.Second

	// BaselineProbe is for the unmodified-target baseline fetch (5s)
	BaselineProbe = 5 * time.Second

	// InjectionProbe is for each payload-substituted request (8s)
	InjectionProbe = 8 * time.Second

	// LandingPage is for the surface-analysis fetch of the first response (10s)
	LandingPage = 10 * time.Second

	// CSPProbe is for the XSS module's CSP presence check (3s)
	CSPProbe = 3 * time.Second

	// TLSHandshake is for the raw TLS inspection handshake (5s)
	TLSHandshake = 5 * time.Second

	// DefaultProbe applies when a caller passes a zero timeout (10s)
	DefaultProbe = 10 * time.Second
)

// ============================================================================
// TRANSPORT
// ============================================================================

const (
	// Dial is for establishing TCP connections (10s)
	Dial = 10 * time.Second

	// KeepAlive is for TCP keep-alive interval (30s)
	KeepAlive = 30 * time.Second

	// IdleConn is for idle connection pool timeout (90s)
	IdleConn = 90 * time.Second
)

// ============================================================================
// TELEMETRY
// ============================================================================

const (
	// TelemetryShutdown bounds exporter flush on exit (5s)
	TelemetryShutdown = 5 * time.Second

	// TelemetryConnect bounds the OTLP exporter connection attempt (10s)
	TelemetryConnect = 10 * time.Second

	// MetricsReadHeader is the /metrics server read-header timeout (5s)
	MetricsReadHeader = 5 * time.Second
)
