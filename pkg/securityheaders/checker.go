// Package securityheaders evaluates response headers against a fixed
// catalogue of security headers, cookie attributes and Server disclosure.
package securityheaders

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/finding"
	"github.com/webprobe/webprobe/pkg/httpclient"
	"github.com/webprobe/webprobe/pkg/target"
)

const (
	// ModuleName tags findings from the header module.
	ModuleName = "security_headers"

	// SweepModuleName tags findings from the baseline header sweep.
	SweepModuleName = "baseline_headers"
)

// Check evaluates resp. Headers are visited in catalogue order, then
// Set-Cookie values in response order, then the Server header, so output is
// reproducible against an unchanged target.
func Check(resp *httpclient.Response, tgt target.Target) finding.ModuleResult {
	out := finding.NewModuleResult(ModuleName)

	present, missing := 0, 0
	for _, h := range Catalogue() {
		// presence is decided by the header line, not its value: an empty
		// header is present and weak
		values := resp.Header.Values(h.Name)
		if len(values) == 0 {
			missing++
			out.Add(finding.NewVulnerability(ModuleName, finding.TypeMissingSecurityHeader, finding.Medium,
				fmt.Sprintf("Missing security header: %s", h.Name)).
				WithDetails(h.Purpose).
				WithEvidenceURL(resp.URL))
			continue
		}
		present++
		value := values[0]
		out.Add(finding.NewInfo(ModuleName, fmt.Sprintf("%s: %s", h.Name, value)).WithDetails(h.Purpose))
		if strings.TrimSpace(value) == "" || (h.Validator != nil && !h.Validator(value)) {
			out.Add(finding.NewWarning(ModuleName, finding.TypeWeakSecurityHeader,
				fmt.Sprintf("Weak header value: %s=%s", h.Name, truncate(value))))
		}
	}

	checkCookies(&out, resp.Header, tgt.IsHTTPS())
	checkServer(&out, resp.Header)

	out.Add(finding.NewInfo(ModuleName,
		fmt.Sprintf("Security headers: %d present, %d missing", present, missing)))
	return out
}

func checkCookies(out *finding.ModuleResult, h http.Header, https bool) {
	for _, raw := range h.Values("Set-Cookie") {
		name, httpOnly, secure := cookieFlags(raw)
		if !httpOnly {
			out.Add(finding.NewWarning(ModuleName, finding.TypeInsecureCookie,
				fmt.Sprintf("Cookie %q set without HttpOnly flag", name)))
		}
		if https && !secure {
			out.Add(finding.NewWarning(ModuleName, finding.TypeInsecureCookie,
				fmt.Sprintf("Cookie %q set without Secure flag on HTTPS site", name)))
		}
	}
}

// cookieFlags reads a raw Set-Cookie value. Attribute names are matched
// case-insensitively.
func cookieFlags(raw string) (name string, httpOnly, secure bool) {
	parts := strings.Split(raw, ";")
	name, _, _ = strings.Cut(strings.TrimSpace(parts[0]), "=")
	for _, attr := range parts[1:] {
		key, _, _ := strings.Cut(strings.TrimSpace(attr), "=")
		switch {
		case strings.EqualFold(key, "HttpOnly"):
			httpOnly = true
		case strings.EqualFold(key, "Secure"):
			secure = true
		}
	}
	return name, httpOnly, secure
}

func checkServer(out *finding.ModuleResult, h http.Header) {
	server := h.Get("Server")
	if server == "" {
		return
	}
	out.Add(finding.NewInfo(ModuleName, "Server: "+server))
	lower := strings.ToLower(server)
	for _, token := range ServerTokens() {
		if strings.Contains(lower, strings.ToLower(token)) {
			out.Add(finding.NewWarning(ModuleName, finding.TypeInformationDisclosure,
				"Server header discloses software: "+server))
			return
		}
	}
}

// Sweep is the orchestrator's independent re-check of the core headers. It
// reports presence as info and absence as a warning.
func Sweep(resp *httpclient.Response) finding.ModuleResult {
	out := finding.NewModuleResult(SweepModuleName)
	for _, name := range CoreHeaders() {
		if values := resp.Header.Values(name); len(values) > 0 {
			out.Add(finding.NewInfo(SweepModuleName, fmt.Sprintf("%s: %s", name, truncate(values[0]))))
			continue
		}
		out.Add(finding.NewWarning(SweepModuleName, "", fmt.Sprintf("%s: absent", name)))
	}
	return out
}

func truncate(s string) string {
	if len(s) <= defaults.EvidenceSnippetLen {
		return s
	}
	return s[:defaults.EvidenceSnippetLen] + "..."
}
