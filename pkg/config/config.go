// Package config loads scan settings from an optional YAML file and the
// command line, and derives the per-component configurations from them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/duration"
	"github.com/webprobe/webprobe/pkg/httpclient"
	"github.com/webprobe/webprobe/pkg/scanner"
)

// Timeouts bounds individual probes. Values are Go duration strings in
// YAML ("8s").
type Timeouts struct {
	Header    time.Duration `yaml:"header"`
	Baseline  time.Duration `yaml:"baseline"`
	Injection time.Duration `yaml:"injection"`
	Landing   time.Duration `yaml:"landing"`
	CSP       time.Duration `yaml:"csp"`
	TLS       time.Duration `yaml:"tls"`
}

// SQL tunes the SQL injection detector.
type SQL struct {
	PayloadsPerCategory int      `yaml:"payloads_per_category"`
	Categories          []string `yaml:"categories,omitempty"`
}

// XSS tunes the reflected-XSS detector.
type XSS struct {
	MaxPayloads int      `yaml:"max_payloads"`
	Categories  []string `yaml:"categories,omitempty"`
}

// Surface tunes the form/script analyzer.
type Surface struct {
	MaxFields int `yaml:"max_fields"`
}

// Telemetry configures exporters. Empty addresses disable them.
type Telemetry struct {
	MetricsAddr  string `yaml:"metrics_addr,omitempty"`
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`
	OTLPInsecure bool   `yaml:"otlp_insecure,omitempty"`
}

// Config holds every scan setting.
type Config struct {
	Target   string `yaml:"target,omitempty"`
	ScanType string `yaml:"scan_type"`

	// Transport
	UserAgent       string  `yaml:"user_agent"`
	VerifyTLS       bool    `yaml:"verify_tls"`
	FollowRedirects bool    `yaml:"follow_redirects"`
	MaxRedirects    int     `yaml:"max_redirects"`
	Proxy           string  `yaml:"proxy,omitempty"`
	RateLimit       float64 `yaml:"rate_limit,omitempty"`

	Timeouts Timeouts `yaml:"timeouts"`

	// Execution
	Concurrency     int           `yaml:"concurrency"`
	MaxParams       int           `yaml:"max_params,omitempty"`
	ParallelModules bool          `yaml:"parallel_modules,omitempty"`
	ScanTimeout     time.Duration `yaml:"scan_timeout,omitempty"`

	SQL         SQL     `yaml:"sql"`
	XSS         XSS     `yaml:"xss"`
	Surface     Surface `yaml:"surface"`
	PayloadFile string  `yaml:"payload_file,omitempty"`

	Telemetry Telemetry `yaml:"telemetry"`

	// Output
	OutputFile string `yaml:"output_file,omitempty"`
	Verbose    bool   `yaml:"verbose,omitempty"`
}

// Default returns the reference behaviour: full scan, sequential probing,
// per-probe timeouts only.
func Default() Config {
	return Config{
		ScanType:        string(scanner.ScanFull),
		UserAgent:       defaults.UserAgent("scan"),
		FollowRedirects: true,
		MaxRedirects:    defaults.MaxRedirects,
		Timeouts: Timeouts{
			Header:    duration.HeaderProbe,
			Baseline:  duration.BaselineProbe,
			Injection: duration.InjectionProbe,
			Landing:   duration.LandingPage,
			CSP:       duration.CSPProbe,
			TLS:       duration.TLSHandshake,
		},
		Concurrency: defaults.ConcurrencyMinimal,
		SQL:         SQL{PayloadsPerCategory: defaults.SQLPayloadsPerCategory},
		XSS:         XSS{MaxPayloads: defaults.XSSMaxPayloads},
		Surface:     Surface{MaxFields: defaults.SurfaceMaxFields},
	}
}

// Load reads path over Default. An empty path returns the defaults.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.decode(data); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks ranges and fills zero values with defaults.
func (c *Config) Validate() error {
	def := Default()

	st, err := scanner.ParseScanType(c.ScanType)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.ScanType = string(st)

	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("%w: max_redirects must be >= 0", ErrInvalidConfig)
	}
	if c.MaxRedirects == 0 {
		c.MaxRedirects = def.MaxRedirects
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit must be >= 0", ErrInvalidConfig)
	}
	if c.Proxy != "" {
		if _, err := httpclient.ParseProxyURL(c.Proxy); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	for _, t := range []struct {
		name string
		v    *time.Duration
		def  time.Duration
	}{
		{"header", &c.Timeouts.Header, def.Timeouts.Header},
		{"baseline", &c.Timeouts.Baseline, def.Timeouts.Baseline},
		{"injection", &c.Timeouts.Injection, def.Timeouts.Injection},
		{"landing", &c.Timeouts.Landing, def.Timeouts.Landing},
		{"csp", &c.Timeouts.CSP, def.Timeouts.CSP},
		{"tls", &c.Timeouts.TLS, def.Timeouts.TLS},
	} {
		if *t.v < 0 {
			return fmt.Errorf("%w: timeouts.%s must be >= 0", ErrInvalidConfig, t.name)
		}
		if *t.v == 0 {
			*t.v = t.def
		}
	}
	if c.ScanTimeout < 0 {
		return fmt.Errorf("%w: scan_timeout must be >= 0", ErrInvalidConfig)
	}

	if c.Concurrency < 0 || c.Concurrency > defaults.ConcurrencyMax {
		return fmt.Errorf("%w: concurrency must be between 1 and %d", ErrInvalidConfig, defaults.ConcurrencyMax)
	}
	if c.Concurrency == 0 {
		c.Concurrency = def.Concurrency
	}
	if c.MaxParams < 0 {
		return fmt.Errorf("%w: max_params must be >= 0", ErrInvalidConfig)
	}

	if c.SQL.PayloadsPerCategory < 0 || c.XSS.MaxPayloads < 0 || c.Surface.MaxFields < 0 {
		return fmt.Errorf("%w: payload and field budgets must be >= 0", ErrInvalidConfig)
	}
	if c.SQL.PayloadsPerCategory == 0 {
		c.SQL.PayloadsPerCategory = def.SQL.PayloadsPerCategory
	}
	if c.XSS.MaxPayloads == 0 {
		c.XSS.MaxPayloads = def.XSS.MaxPayloads
	}
	if c.Surface.MaxFields == 0 {
		c.Surface.MaxFields = def.Surface.MaxFields
	}
	return nil
}

// Type returns the validated scan type.
func (c Config) Type() scanner.ScanType {
	st, err := scanner.ParseScanType(c.ScanType)
	if err != nil {
		return scanner.ScanFull
	}
	return st
}

// HTTPClient derives the probe client configuration.
func (c Config) HTTPClient() httpclient.Config {
	return httpclient.Config{
		Timeout:         duration.DefaultProbe,
		UserAgent:       c.UserAgent,
		VerifyTLS:       c.VerifyTLS,
		FollowRedirects: c.FollowRedirects,
		MaxRedirects:    c.MaxRedirects,
		Proxy:           c.Proxy,
		RateLimit:       c.RateLimit,
	}
}
