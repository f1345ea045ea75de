// Package xss detects reflected cross-site scripting by checking whether an
// injected payload comes back verbatim in the response body.
package xss

import (
	"fmt"
	"strings"

	"github.com/webprobe/webprobe/pkg/finding"
	"github.com/webprobe/webprobe/pkg/injection"
)

// ModuleName tags reflected-XSS findings.
const ModuleName = "reflected_xss"

// Detector is a literal containment check. It is neither DOM- nor
// context-aware.
type Detector struct{}

// Name implements injection.Detector.
func (Detector) Name() string { return ModuleName }

// Evaluate implements injection.Detector. Failed probes, timeouts included,
// are negative and leave an info note.
func (Detector) Evaluate(p injection.Probe) injection.Verdict {
	if p.Err != nil {
		return injection.Verdict{Note: fmt.Sprintf("XSS probe of %q failed: %v", p.Parameter, p.Err)}
	}
	if strings.Contains(p.Response.Body, p.Payload.Value) {
		return injection.Verdict{Hit: true, Reason: "payload reflected unescaped"}
	}
	return injection.Verdict{}
}

// Finding implements injection.Detector.
func (Detector) Finding(p injection.Probe, _ injection.Verdict) finding.Finding {
	return finding.NewVulnerability(ModuleName, finding.TypeReflectedXSS, finding.High,
		fmt.Sprintf("Reflected XSS in parameter %s", p.Parameter)).
		WithParameter(p.Parameter).
		WithPayload(p.Payload.Value, p.Payload.Category).
		WithDetails("payload reflected in response: " + p.Payload.Value).
		WithEvidenceURL(p.URL)
}
