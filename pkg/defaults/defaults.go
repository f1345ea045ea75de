// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for runtime configuration defaults.
//
// Usage:
//
//	cfg.Concurrency = defaults.ConcurrencyMinimal
//	req.Header.Set("Accept", defaults.AcceptHTML)
//
// DO NOT hardcode values like `MaxPayloads: 3` in scanner packages.
// Reference the appropriate constant from this package instead.
package defaults

import "fmt"

// ToolName is the name reported in telemetry and the User-Agent.
const ToolName = "webprobe"

// Version is the current webprobe version
const Version = "0.4.1"

// ============================================================================
// CONCURRENCY SETTINGS
// ============================================================================
//
// The reference scan is strictly sequential. Higher values fan parameters
// out inside the injection engine; per-parameter ordering is unaffected.
// ============================================================================

const (
	// ConcurrencyMinimal is one probe in flight at a time (1)
	ConcurrencyMinimal = 1

	// ConcurrencyLow is for light parallel parameter testing (4)
	ConcurrencyLow = 4

	// ConcurrencyMedium is for targets with many query parameters (8)
	ConcurrencyMedium = 8

	// ConcurrencyMax caps parameter fan-out (32)
	ConcurrencyMax = 32
)

// ============================================================================
// PAYLOAD BUDGETS
// ============================================================================
//
// Bounded subsets of each catalogue keep request volume proportional to
// parameter count rather than catalogue size.
// ============================================================================

const (
	// SQLPayloadsPerCategory is how many payloads of each SQL category are tried (2)
	SQLPayloadsPerCategory = 2

	// XSSMaxPayloads is how many XSS payloads are tried per parameter (3)
	XSSMaxPayloads = 3

	// SurfaceMaxFields is how many fields per form are reported (3)
	SurfaceMaxFields = 3

	// MaxRedirects bounds redirect chains followed within one probe (10)
	MaxRedirects = 10
)

// ============================================================================
// DETECTION THRESHOLDS
// ============================================================================

const (
	// SQLLengthDeltaRatio is the relative body-size change treated as a
	// significant differential signal (0.3)
	SQLLengthDeltaRatio = 0.3

	// SQLKeywordThreshold is the keyword count that must be exceeded (2)
	SQLKeywordThreshold = 2

	// CertExpiryWarningDays flags certificates expiring within this window (30)
	CertExpiryWarningDays = 30

	// EvidenceSnippetLen bounds payload and header excerpts in findings (50)
	EvidenceSnippetLen = 50
)

// ============================================================================
// HTTP
// ============================================================================

const (
	// ContentTypeHTML is text/html
	ContentTypeHTML = "text/html"

	// AcceptHTML accepts HTML and related types (standard browser)
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	// PortHTTP is the default port for http targets
	PortHTTP = 80

	// PortHTTPS is the default port for https targets
	PortHTTPS = 443
)

// ============================================================================
// USER AGENTS
// ============================================================================

// UAMinimal is the plain tool user agent
const UAMinimal = ToolName + "/" + Version

// UserAgent returns the webprobe user agent with an optional context,
// e.g. "webprobe/0.4.1 (sqli)".
func UserAgent(context string) string {
	if context == "" {
		return UAMinimal
	}
	return fmt.Sprintf("%s/%s (%s)", ToolName, Version, context)
}
