package xss

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/webprobe/webprobe/pkg/attackconfig"
	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/duration"
	"github.com/webprobe/webprobe/pkg/finding"
	"github.com/webprobe/webprobe/pkg/httpclient"
	"github.com/webprobe/webprobe/pkg/injection"
	"github.com/webprobe/webprobe/pkg/payloads"
	"github.com/webprobe/webprobe/pkg/target"
)

// Config configures the reflected-XSS module.
type Config struct {
	attackconfig.Base `yaml:",inline"`

	// Categories restricts the plan to these categories, in order.
	Categories []string `yaml:"categories,omitempty"`

	CSPTimeout time.Duration `yaml:"csp_timeout,omitempty"`

	Catalogue *payloads.Catalogue `yaml:"-"`
}

// DefaultConfig tries the first three catalogue payloads per parameter.
func DefaultConfig() Config {
	base := attackconfig.DefaultBase()
	base.MaxPayloads = defaults.XSSMaxPayloads
	return Config{
		Base:       base,
		CSPTimeout: duration.CSPProbe,
	}
}

// Validate fills zero values with defaults.
func (c *Config) Validate() {
	c.Base.Validate()
	if c.MaxPayloads <= 0 {
		c.MaxPayloads = defaults.XSSMaxPayloads
	}
	if c.CSPTimeout <= 0 {
		c.CSPTimeout = duration.CSPProbe
	}
	if c.Catalogue == nil {
		c.Catalogue = payloads.DefaultXSS()
	}
}

// Scanner is the reflected-XSS module.
type Scanner struct {
	cfg     Config
	plan    []payloads.Payload
	fetcher httpclient.Fetcher
	engine  *injection.Engine
	logger  *slog.Logger

	engineOpts []injection.Option
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets a custom structured logger for the module and its engine.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// WithEngineOptions passes options through to the injection engine, such
// as a tracer.
func WithEngineOptions(opts ...injection.Option) Option {
	return func(s *Scanner) { s.engineOpts = append(s.engineOpts, opts...) }
}

// NewScanner builds the module and resolves its payload plan.
func NewScanner(fetcher httpclient.Fetcher, cfg Config, opts ...Option) (*Scanner, error) {
	cfg.Validate()

	var plan []payloads.Payload
	if len(cfg.Categories) > 0 {
		p, err := cfg.Catalogue.PerCategory(0, cfg.Categories...)
		if err != nil {
			return nil, err
		}
		if len(p) > cfg.MaxPayloads {
			p = p[:cfg.MaxPayloads]
		}
		plan = p
	} else {
		plan = cfg.Catalogue.First(cfg.MaxPayloads)
	}

	s := &Scanner{
		cfg:     cfg,
		plan:    plan,
		fetcher: fetcher,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = injection.NewEngine(fetcher, cfg.Base,
		append([]injection.Option{injection.WithLogger(s.logger)}, s.engineOpts...)...)
	return s, nil
}

// Name implements scanner.Module.
func (s *Scanner) Name() string { return ModuleName }

// Plan returns the payloads tried against each parameter.
func (s *Scanner) Plan() []payloads.Payload {
	return append([]payloads.Payload(nil), s.plan...)
}

// Scan probes each query parameter for reflection, then checks whether the
// target sends a Content-Security-Policy.
func (s *Scanner) Scan(ctx context.Context, tgt target.Target) (finding.ModuleResult, error) {
	out, err := s.engine.ProbeParameters(ctx, tgt, s.plan, Detector{}, nil)
	if n := len(out.Vulnerabilities); n > 0 {
		out.Add(finding.NewInfo(ModuleName, fmt.Sprintf("Reflected XSS vulnerabilities found: %d", n)))
	} else {
		out.Add(finding.NewInfo(ModuleName, "No reflected XSS detected"))
	}
	if err != nil {
		return out, err
	}

	out.Merge(s.checkCSP(ctx, tgt))
	return out, nil
}

// checkCSP runs outside the per-parameter loop: a missing policy raises the
// exploitability of any reflection.
func (s *Scanner) checkCSP(ctx context.Context, tgt target.Target) finding.ModuleResult {
	out := finding.NewModuleResult(ModuleName)
	resp, err := s.fetcher.Fetch(ctx, tgt.String(), s.cfg.CSPTimeout, nil)
	if err != nil {
		s.logger.Debug("csp probe failed", slog.String("module", ModuleName), slog.String("error", err.Error()))
		out.Add(finding.NewWarning(ModuleName, finding.TypeProbeFailure, "Could not check Content-Security-Policy").
			WithDetails(err.Error()))
		return out
	}
	csp := resp.Header.Get("Content-Security-Policy")
	if csp == "" {
		out.Add(finding.NewWarning(ModuleName, finding.TypeMissingSecurityHeader,
			"Content-Security-Policy is missing (raises XSS risk)"))
		return out
	}
	if len(csp) > defaults.EvidenceSnippetLen {
		csp = csp[:defaults.EvidenceSnippetLen] + "..."
	}
	out.Add(finding.NewInfo(ModuleName, "Content-Security-Policy found: "+csp))
	return out
}
