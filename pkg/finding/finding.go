package finding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"
)

// Kind classifies a finding into one of the three result streams.
type Kind string

const (
	KindVulnerability Kind = "vulnerability"
	KindWarning       Kind = "warning"
	KindInfo          Kind = "info"
)

// Type enumerates what a finding is about.
type Type string

const (
	TypeMissingSecurityHeader Type = "MISSING_SECURITY_HEADER"
	TypeWeakSecurityHeader    Type = "WEAK_SECURITY_HEADER"
	TypeReflectedXSS          Type = "REFLECTED_XSS"
	TypeSQLInjection          Type = "SQL_INJECTION"
	TypeWeakTLS               Type = "WEAK_TLS"
	TypeInsecureCookie        Type = "INSECURE_COOKIE"
	TypeInformationDisclosure Type = "INFORMATION_DISCLOSURE"
	TypeModuleFailure         Type = "MODULE_FAILURE"
	TypeProbeFailure          Type = "PROBE_FAILURE"
	TypeScanTimeout           Type = "SCAN_TIMEOUT"
)

// Finding is one observation produced by a module or by the orchestrator's
// baseline checks. Only vulnerability findings are required to carry a Type
// and Severity; warnings and info items may leave them empty.
type Finding struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"kind"`
	Type        Type     `json:"type,omitempty"`
	Severity    Severity `json:"severity,omitempty"`
	Module      string   `json:"module,omitempty"`
	Description string   `json:"description"`
	Details     string   `json:"details,omitempty"`
	Parameter   string   `json:"parameter,omitempty"`
	Payload     string   `json:"payload,omitempty"`
	Category    string   `json:"category,omitempty"`
	EvidenceURL string   `json:"evidence_url,omitempty"`
}

// NewVulnerability builds a vulnerability finding with its stable ID set.
// Optional fields (Details, Parameter, Payload, ...) are filled by the caller
// through the With* helpers before the finding is appended to a result.
func NewVulnerability(module string, typ Type, sev Severity, description string) Finding {
	return Finding{
		Kind:        KindVulnerability,
		Type:        typ,
		Severity:    sev,
		Module:      module,
		Description: description,
	}.withID()
}

// NewWarning builds a warning finding. typ may be empty.
func NewWarning(module string, typ Type, description string) Finding {
	return Finding{
		Kind:        KindWarning,
		Type:        typ,
		Module:      module,
		Description: description,
	}.withID()
}

// NewInfo builds an informational finding.
func NewInfo(module, description string) Finding {
	return Finding{
		Kind:        KindInfo,
		Module:      module,
		Description: description,
	}.withID()
}

// WithDetails returns a copy of f carrying details.
func (f Finding) WithDetails(details string) Finding {
	f.Details = details
	return f
}

// WithParameter returns a copy of f bound to an injected query parameter.
func (f Finding) WithParameter(param string) Finding {
	f.Parameter = param
	return f.withID()
}

// WithPayload returns a copy of f recording the payload and its category.
func (f Finding) WithPayload(payload, category string) Finding {
	f.Payload = payload
	f.Category = category
	return f
}

// WithEvidenceURL returns a copy of f pointing at the request that produced it.
func (f Finding) WithEvidenceURL(u string) Finding {
	f.EvidenceURL = u
	return f
}

// Validate checks the vulnerability invariant: non-empty type, a known
// severity and a non-empty description. Other kinds only need a description.
func (f Finding) Validate() error {
	if strings.TrimSpace(f.Description) == "" {
		return fmt.Errorf("%w: empty description", ErrInvalidFinding)
	}
	if f.Kind != KindVulnerability {
		return nil
	}
	if f.Type == "" {
		return fmt.Errorf("%w: vulnerability without type", ErrInvalidFinding)
	}
	if !f.Severity.IsValid() {
		return fmt.Errorf("%w: severity %q", ErrInvalidFinding, f.Severity)
	}
	return nil
}

// Fingerprint returns a hash of the identifying fields of f. Two scans of an
// unchanged target produce the same fingerprints, so reports can be diffed.
func (f Finding) Fingerprint() string {
	h := murmur3.New64()
	for _, part := range []string{string(f.Kind), string(f.Type), f.Module, f.Parameter, f.Description} {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func (f Finding) withID() Finding {
	f.ID = f.Fingerprint()
	return f
}
