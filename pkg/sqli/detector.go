// Package sqli detects SQL-injection-susceptible query parameters from
// database error fingerprints, differential response analysis and timing.
package sqli

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/finding"
	"github.com/webprobe/webprobe/pkg/httpclient"
	"github.com/webprobe/webprobe/pkg/injection"
	"github.com/webprobe/webprobe/pkg/payloads"
)

// ModuleName tags SQL injection findings.
const ModuleName = "sql_injection"

// Detector evaluates probe responses for SQL injection signals, in priority
// order: error fingerprint, response-size delta, keyword count, error+sql
// co-occurrence, and finally a timeout on a time-based payload.
type Detector struct {
	rules     []Rule
	keywords  []string
	ratio     float64
	threshold int
}

// NewDetector returns a detector using rules. Nil rules select DefaultRules.
func NewDetector(rules []Rule) *Detector {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Detector{
		rules:     rules,
		keywords:  Keywords(),
		ratio:     defaults.SQLLengthDeltaRatio,
		threshold: defaults.SQLKeywordThreshold,
	}
}

// Name implements injection.Detector.
func (d *Detector) Name() string { return ModuleName }

// Evaluate implements injection.Detector.
func (d *Detector) Evaluate(p injection.Probe) injection.Verdict {
	if p.Err != nil {
		if httpclient.IsTimeout(p.Err) && p.Payload.Category == payloads.SQLTimeBased {
			return injection.Verdict{Hit: true, Reason: "request timed out (possible time-based injection)"}
		}
		return injection.Verdict{Note: fmt.Sprintf("SQL probe of %q failed: %v", p.Parameter, p.Err)}
	}

	body := p.Response.Body
	if dbms, ok := Fingerprint(d.rules, body); ok {
		return injection.Verdict{Hit: true, Reason: fmt.Sprintf("SQL error (%s)", strings.ToUpper(string(dbms)))}
	}

	if p.Baseline != nil {
		if ratio := LengthDelta(body, p.Baseline.Body); ratio > d.ratio {
			return injection.Verdict{Hit: true, Reason: fmt.Sprintf("significant response-size delta (%.1f%%)", ratio*100)}
		}
	}

	folded := cases.Fold().String(body)
	if n := CountKeywords(folded, d.keywords); n > d.threshold {
		return injection.Verdict{Hit: true, Reason: fmt.Sprintf("SQL keywords in response (%d)", n)}
	}
	if strings.Contains(folded, "error") && strings.Contains(folded, "sql") {
		return injection.Verdict{Hit: true, Reason: "error text mentions SQL"}
	}
	return injection.Verdict{}
}

// Finding implements injection.Detector.
func (d *Detector) Finding(p injection.Probe, v injection.Verdict) finding.Finding {
	return finding.NewVulnerability(ModuleName, finding.TypeSQLInjection, finding.Critical,
		fmt.Sprintf("Potential SQL injection (%s) in parameter %s", p.Payload.Category, p.Parameter)).
		WithParameter(p.Parameter).
		WithPayload(p.Payload.Value, p.Payload.Category).
		WithDetails(fmt.Sprintf("payload: %s, reason: %s", p.Payload.Value, v.Reason)).
		WithEvidenceURL(p.URL)
}

// LengthDelta returns |len(probe)-len(baseline)| / len(baseline), or 0 for
// an empty baseline.
func LengthDelta(probe, baseline string) float64 {
	if len(baseline) == 0 {
		return 0
	}
	diff := len(probe) - len(baseline)
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) / float64(len(baseline))
}

// CountKeywords counts how many distinct keywords occur in folded text.
func CountKeywords(folded string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(folded, k) {
			n++
		}
	}
	return n
}
