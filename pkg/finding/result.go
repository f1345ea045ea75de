package finding

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ModuleResult is the output of a single module: three ordered finding
// streams. A module returns one even when it fails part way through.
type ModuleResult struct {
	Module          string    `json:"module"`
	Vulnerabilities []Finding `json:"vulnerabilities"`
	Warnings        []Finding `json:"warnings"`
	Info            []Finding `json:"info"`
}

// NewModuleResult returns an empty result for the named module.
func NewModuleResult(module string) ModuleResult {
	return ModuleResult{
		Module:          module,
		Vulnerabilities: []Finding{},
		Warnings:        []Finding{},
		Info:            []Finding{},
	}
}

// Add appends f to the stream matching its kind. Unknown kinds are treated
// as info so nothing is dropped. A vulnerability that fails Validate is
// recorded as a MODULE_FAILURE warning instead.
func (r *ModuleResult) Add(f Finding) {
	if f.Module == "" {
		f.Module = r.Module
		f = f.withID()
	}
	if f.Kind == KindVulnerability {
		if err := f.Validate(); err != nil {
			f = NewWarning(f.Module, TypeModuleFailure, "Malformed vulnerability finding discarded").
				WithParameter(f.Parameter).
				WithDetails(err.Error())
		}
	}
	switch f.Kind {
	case KindVulnerability:
		r.Vulnerabilities = append(r.Vulnerabilities, f)
	case KindWarning:
		r.Warnings = append(r.Warnings, f)
	default:
		r.Info = append(r.Info, f)
	}
}

// Merge appends every finding of other, preserving order.
func (r *ModuleResult) Merge(other ModuleResult) {
	r.Vulnerabilities = append(r.Vulnerabilities, other.Vulnerabilities...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Info = append(r.Info, other.Info...)
}

// Len returns the total number of findings.
func (r ModuleResult) Len() int {
	return len(r.Vulnerabilities) + len(r.Warnings) + len(r.Info)
}

// All returns every finding in stream order: vulnerabilities, warnings, info.
func (r ModuleResult) All() []Finding {
	out := make([]Finding, 0, r.Len())
	out = append(out, r.Vulnerabilities...)
	out = append(out, r.Warnings...)
	return append(out, r.Info...)
}

// ScanResult is the aggregate handed to the reporting layer. Only the
// orchestrator appends to it, and it is frozen before being returned.
type ScanResult struct {
	ScanID          uuid.UUID `json:"scan_id"`
	Target          string    `json:"target"`
	ScanType        string    `json:"scan_type"`
	Timestamp       string    `json:"timestamp"`
	DurationSeconds float64   `json:"duration_seconds"`
	Vulnerabilities []Finding `json:"vulnerabilities"`
	Warnings        []Finding `json:"warnings"`
	Info            []Finding `json:"info"`

	start  time.Time
	frozen bool
}

// NewScanResult creates an empty result stamped with start.
func NewScanResult(target, scanType string, start time.Time) *ScanResult {
	return &ScanResult{
		ScanID:          uuid.New(),
		Target:          target,
		ScanType:        scanType,
		Timestamp:       start.UTC().Format(time.RFC3339),
		Vulnerabilities: []Finding{},
		Warnings:        []Finding{},
		Info:            []Finding{},
		start:           start,
	}
}

// Append merges a module result into the aggregate. It is a no-op once the
// result has been frozen.
func (s *ScanResult) Append(r ModuleResult) {
	if s.frozen {
		return
	}
	s.Vulnerabilities = append(s.Vulnerabilities, r.Vulnerabilities...)
	s.Warnings = append(s.Warnings, r.Warnings...)
	s.Info = append(s.Info, r.Info...)
}

// Freeze records the scan duration and clips the slices so later appends by
// a consumer cannot write into the orchestrator's backing arrays.
func (s *ScanResult) Freeze(end time.Time) {
	if s.frozen {
		return
	}
	s.DurationSeconds = end.Sub(s.start).Seconds()
	s.Vulnerabilities = slices.Clip(s.Vulnerabilities)
	s.Warnings = slices.Clip(s.Warnings)
	s.Info = slices.Clip(s.Info)
	s.frozen = true
}

// Frozen reports whether Freeze has been called.
func (s *ScanResult) Frozen() bool {
	return s.frozen
}

// CountBySeverity tallies vulnerability findings per severity.
func (s *ScanResult) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int, 4)
	for _, v := range s.Vulnerabilities {
		counts[v.Severity]++
	}
	return counts
}
