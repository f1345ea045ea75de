// Package scanner runs detection modules against one target and aggregates
// their findings into a single frozen ScanResult.
//
// Modules run in registration order. Baseline checks registered with Before
// run ahead of the module loop and those registered with After run behind
// it. A module that errors, panics or is cut off by the scan deadline is
// recorded as a warning and never aborts the scan.
package scanner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/webprobe/webprobe/pkg/finding"
	"github.com/webprobe/webprobe/pkg/target"
)

// Module is one independent detection heuristic.
type Module interface {
	Name() string
	Scan(ctx context.Context, tgt target.Target) (finding.ModuleResult, error)
}

// ScanType selects which modules run.
type ScanType string

const (
	// ScanBasic runs the header policy module plus baseline checks.
	ScanBasic ScanType = "basic"
	// ScanFull also runs the injection detectors.
	ScanFull ScanType = "full"
)

// ParseScanType accepts "basic" or "full", case-insensitively. Empty means
// full.
func ParseScanType(s string) (ScanType, error) {
	switch ScanType(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScanFull:
		return ScanFull, nil
	case ScanBasic:
		return ScanBasic, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScanType, s)
	}
}

// State is the orchestrator lifecycle.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Recorder receives module outcomes. *metrics.Collector implements it.
type Recorder interface {
	ObserveModule(module string, d time.Duration, res finding.ModuleResult)
	ModuleFailed(module, reason string)
	ScanCompleted(scanType string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveModule(string, time.Duration, finding.ModuleResult) {}
func (nopRecorder) ModuleFailed(string, string)                             {}
func (nopRecorder) ScanCompleted(string)                                    {}

// Components is the standard module set. Nil entries are skipped.
type Components struct {
	Surface Module
	Headers Module
	SQL     Module
	XSS     Module
	TLS     Module
	Sweep   Module
}

// Standard builds an orchestrator with the standard layout: surface
// analysis before the loop, headers then SQL then XSS in the loop (the
// injection detectors only for full scans), and the TLS check (https
// targets only) and header sweep after it.
func Standard(tgt target.Target, scanType ScanType, c Components, opts ...Option) *Orchestrator {
	o := New(tgt, scanType, opts...)
	o.Before(c.Surface)
	o.Register(c.Headers)
	if scanType == ScanFull {
		o.Register(c.SQL)
		o.Register(c.XSS)
	}
	if tgt.IsHTTPS() {
		o.After(c.TLS)
	}
	o.After(c.Sweep)
	return o
}
