package surface

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/duration"
	"github.com/webprobe/webprobe/pkg/finding"
	"github.com/webprobe/webprobe/pkg/httpclient"
	"github.com/webprobe/webprobe/pkg/target"
)

// ModuleName tags surface findings.
const ModuleName = "surface"

// Analyzer fetches the landing page and reports its attack surface.
type Analyzer struct {
	fetcher   httpclient.Fetcher
	timeout   time.Duration
	maxFields int
	logger    *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMaxFields bounds the fields reported per form.
func WithMaxFields(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxFields = n
		}
	}
}

// WithTimeout sets the landing page fetch timeout. Non-positive values keep
// the default.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer returns an analyzer fetching through fetcher.
func NewAnalyzer(fetcher httpclient.Fetcher, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:   fetcher,
		timeout:   duration.LandingPage,
		maxFields: defaults.SurfaceMaxFields,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the module name.
func (a *Analyzer) Name() string { return ModuleName }

// Scan fetches the target and returns info findings only. A failed fetch is
// reported as a warning.
func (a *Analyzer) Scan(ctx context.Context, tgt target.Target) (finding.ModuleResult, error) {
	out := finding.NewModuleResult(ModuleName)
	resp, err := a.fetcher.Fetch(ctx, tgt.String(), a.timeout, http.Header{"Accept": {defaults.AcceptHTML}})
	if err != nil {
		a.logger.Debug("landing page fetch failed", slog.String("module", ModuleName), slog.String("error", err.Error()))
		out.Add(finding.NewWarning(ModuleName, finding.TypeProbeFailure, "Surface analysis failed").
			WithDetails(err.Error()))
		return out, nil
	}

	report := Analyze(resp.Body)
	a.logger.Debug("landing page analyzed",
		slog.String("module", ModuleName),
		slog.Int("forms", len(report.Forms)),
		slog.Int("high_risk_fields", report.HighRiskFields()))
	for _, line := range Lines(report, resp.Header.Get("Content-Type"), a.maxFields) {
		out.Add(finding.NewInfo(ModuleName, line))
	}
	return out, nil
}
