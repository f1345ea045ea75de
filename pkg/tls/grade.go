package tls

import (
	stdtls "crypto/tls"
	"fmt"
	"time"

	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/finding"
)

// ModuleName tags findings produced from a TLS inspection.
const ModuleName = "tls"

// Assess turns an inspection result into findings:
//   - handshake or trust failure: WEAK_TLS warning carrying the error
//   - protocol below TLS 1.2: WEAK_TLS vulnerability (medium)
//   - certificate expiring within the warning window: warning
//   - otherwise an info line with subject, issuer and expiry
func Assess(res Result, now time.Time) finding.ModuleResult {
	out := finding.NewModuleResult(ModuleName)

	if !res.Valid {
		out.Add(finding.NewWarning(ModuleName, finding.TypeWeakTLS,
			"SSL/TLS certificate validation failed").
			WithDetails(res.Error))
		return out
	}

	if res.Version != 0 && res.Version < stdtls.VersionTLS12 {
		out.Add(finding.NewVulnerability(ModuleName, finding.TypeWeakTLS, finding.Medium,
			fmt.Sprintf("Outdated TLS protocol negotiated: %s", res.VersionName)).
			WithDetails("TLS 1.2 or newer should be required"))
	}

	window := time.Duration(defaults.CertExpiryWarningDays) * 24 * time.Hour
	if remaining := res.NotAfter.Sub(now); !res.NotAfter.IsZero() && remaining < window {
		days := int(remaining.Hours() / 24)
		out.Add(finding.NewWarning(ModuleName, finding.TypeWeakTLS,
			fmt.Sprintf("SSL certificate expires in %d days", days)).
			WithDetails(res.NotAfter.UTC().Format(time.RFC3339)))
	}

	out.Add(finding.NewInfo(ModuleName, "SSL certificate is valid").
		WithDetails(fmt.Sprintf("subject=%s issuer=%s expires=%s protocol=%s",
			res.Subject, res.Issuer, res.NotAfter.UTC().Format(time.RFC3339), res.VersionName)))
	return out
}
