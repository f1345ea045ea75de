package sqli

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

// Config configures the SQL injection module.
type Config struct {
	attackconfig.Base `yaml:",inline"`

	// PayloadsPerCategory bounds each category of the plan.
	PayloadsPerCategory int `yaml:"payloads_per_category,omitempty"`

	// Categories lists the categories tried, in order. Empty means all
	// catalogue categories in catalogue order.
	Categories []string `yaml:"categories,omitempty"`

	BaselineTimeout time.Duration `yaml:"baseline_timeout,omitempty"`

	Catalogue *payloads.Catalogue `yaml:"-"`
	Rules     []Rule              `yaml:"-"`
}

// DefaultConfig returns the standard SQL plan: two payloads from each of
// boolean_based, error_based, union_based and time_based.
func DefaultConfig() Config {
	return Config{
		Base:                attackconfig.DefaultBase(),
		PayloadsPerCategory: defaults.SQLPayloadsPerCategory,
		BaselineTimeout:     duration.BaselineProbe,
	}
}

// Validate fills zero values with defaults.
func (c *Config) Validate() {
	c.Base.Validate()
	if c.PayloadsPerCategory <= 0 {
		c.PayloadsPerCategory = defaults.SQLPayloadsPerCategory
	}
	if c.BaselineTimeout <= 0 {
		c.BaselineTimeout = duration.BaselineProbe
	}
	if c.Catalogue == nil {
		c.Catalogue = payloads.DefaultSQL()
	}
}

// Scanner is the SQL injection module.
type Scanner struct {
	cfg      Config
	engine   *injection.Engine
	detector *Detector
	logger   *slog.Logger

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

// NewScanner builds the module. The payload plan is resolved here so an
// unknown category fails at construction rather than mid-scan.
func NewScanner(fetcher httpclient.Fetcher, cfg Config, opts ...Option) (*Scanner, error) {
	cfg.Validate()
	if _, err := cfg.Catalogue.PerCategory(cfg.PayloadsPerCategory, cfg.Categories...); err != nil {
		return nil, err
	}
	s := &Scanner{
		cfg:      cfg,
		detector: NewDetector(cfg.Rules),
		logger:   slog.Default(),
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

// Plan returns the payloads tried against each parameter, in order.
func (s *Scanner) Plan() []payloads.Payload {
	plan, _ := s.cfg.Catalogue.PerCategory(s.cfg.PayloadsPerCategory, s.cfg.Categories...)
	return plan
}

// Scan probes every query parameter. The baseline response is fetched once
// and shared by all parameters.
func (s *Scanner) Scan(ctx context.Context, tgt target.Target) (finding.ModuleResult, error) {
	if !tgt.HasParams() {
		out := finding.NewModuleResult(ModuleName)
		out.Add(finding.NewInfo(ModuleName, "No query parameters to test for SQL injection"))
		return out, nil
	}

	baseline := s.engine.FetchBaseline(ctx, tgt, s.cfg.BaselineTimeout)
	if baseline == nil {
		s.logger.Debug("no baseline, differential analysis disabled", slog.String("module", ModuleName))
	}

	out, err := s.engine.ProbeParameters(ctx, tgt, s.Plan(), s.detector, baseline)
	if baseline == nil {
		out.Add(finding.NewInfo(ModuleName, "Baseline response unavailable, response-size analysis skipped"))
	}
	if n := len(out.Vulnerabilities); n > 0 {
		out.Add(finding.NewInfo(ModuleName, fmt.Sprintf("Potential SQL injections: %d", n)))
		out.Add(finding.NewWarning(ModuleName, "", "Signs of SQL injection detected, manual verification required"))
	} else {
		out.Add(finding.NewInfo(ModuleName, "No SQL injection detected in URL parameters"))
	}
	return out, err
}
