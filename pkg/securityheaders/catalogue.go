package securityheaders

import (
	"strconv"
	"strings"

	"github.com/webprobe/webprobe/pkg/regexcache"
)

// Header is one catalogue entry. Validator, when set, reports whether a
// present value is strong enough; nil accepts any value.
type Header struct {
	Name      string
	Purpose   string
	Validator func(string) bool
}

// Catalogue returns the security headers checked on every response, in
// evaluation order. The slice is freshly allocated on each call.
func Catalogue() []Header {
	return []Header{
		{
			Name:      "Strict-Transport-Security",
			Purpose:   "forces HTTPS for subsequent visits",
			Validator: validHSTS,
		},
		{
			Name:    "Content-Security-Policy",
			Purpose: "restricts sources of script and other content",
		},
		{
			Name:    "X-Frame-Options",
			Purpose: "protects against clickjacking",
			Validator: func(v string) bool {
				v = strings.ToUpper(strings.TrimSpace(v))
				return v == "DENY" || v == "SAMEORIGIN"
			},
		},
		{
			Name:    "X-Content-Type-Options",
			Purpose: "disables MIME sniffing",
			Validator: func(v string) bool {
				return strings.EqualFold(strings.TrimSpace(v), "nosniff")
			},
		},
		{
			Name:    "Referrer-Policy",
			Purpose: "controls Referer leakage",
		},
		{
			Name:    "Permissions-Policy",
			Purpose: "restricts browser feature access",
		},
		{
			Name:    "X-XSS-Protection",
			Purpose: "legacy browser XSS filter",
			Validator: func(v string) bool {
				return strings.HasPrefix(strings.TrimSpace(v), "1")
			},
		},
	}
}

// CoreHeaders are the headers re-checked by the orchestrator's baseline sweep.
func CoreHeaders() []string {
	return []string{
		"X-Frame-Options",
		"X-Content-Type-Options",
		"Strict-Transport-Security",
		"Content-Security-Policy",
	}
}

// ServerTokens are Server header substrings that reveal the software in use.
func ServerTokens() []string {
	return []string{"Apache", "nginx", "IIS", "Tomcat"}
}

// validHSTS requires a positive max-age.
func validHSTS(v string) bool {
	m := regexcache.MustGetFold(`max-age\s*=\s*"?(\d+)`).FindStringSubmatch(v)
	if m == nil {
		return false
	}
	age, err := strconv.ParseInt(m[1], 10, 64)
	return err == nil && age > 0
}
