package securityheaders

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

// Scanner is the header policy module: one GET of the target, then Check.
type Scanner struct {
	fetcher httpclient.Fetcher
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// WithTimeout overrides the probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewScanner returns the header module using fetcher for its probe.
func NewScanner(fetcher httpclient.Fetcher, opts ...Option) *Scanner {
	s := &Scanner{
		fetcher: fetcher,
		timeout: duration.HeaderProbe,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements scanner.Module.
func (s *Scanner) Name() string { return ModuleName }

// Scan fetches the target and evaluates its headers. A failed probe is
// reported as a warning, not an error.
func (s *Scanner) Scan(ctx context.Context, tgt target.Target) (finding.ModuleResult, error) {
	resp, err := s.fetcher.Fetch(ctx, tgt.String(), s.timeout, acceptHTML())
	if err != nil {
		s.logger.Debug("header probe failed", slog.String("module", ModuleName), slog.String("error", err.Error()))
		out := finding.NewModuleResult(ModuleName)
		out.Add(finding.NewWarning(ModuleName, finding.TypeProbeFailure, "Header check failed").
			WithDetails(err.Error()))
		return out, nil
	}
	return Check(resp, tgt), nil
}

func acceptHTML() http.Header {
	return http.Header{"Accept": {defaults.AcceptHTML}}
}

// Sweeper re-fetches the target after the module loop and reports the core
// headers once more, independently of the header module's result.
type Sweeper struct {
	fetcher httpclient.Fetcher
	timeout time.Duration
	logger  *slog.Logger
}

// NewSweeper returns the baseline header sweep.
func NewSweeper(fetcher httpclient.Fetcher, opts ...Option) *Sweeper {
	s := NewScanner(fetcher, opts...)
	return &Sweeper{fetcher: s.fetcher, timeout: s.timeout, logger: s.logger}
}

// Name returns the sweep's module name.
func (s *Sweeper) Name() string { return SweepModuleName }

// Scan fetches the target and runs Sweep on the response.
func (s *Sweeper) Scan(ctx context.Context, tgt target.Target) (finding.ModuleResult, error) {
	resp, err := s.fetcher.Fetch(ctx, tgt.String(), s.timeout, acceptHTML())
	if err != nil {
		s.logger.Debug("header sweep failed", slog.String("module", SweepModuleName), slog.String("error", err.Error()))
		out := finding.NewModuleResult(SweepModuleName)
		out.Add(finding.NewWarning(SweepModuleName, finding.TypeProbeFailure, "Baseline header sweep failed").
			WithDetails(err.Error()))
		return out, nil
	}
	return Sweep(resp), nil
}
