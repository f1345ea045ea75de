package attackconfig

import (
	"time"

	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/duration"
	"github.com/webprobe/webprobe/pkg/finding"
)

// Base contains configuration fields shared by the SQL and XSS detectors.
type Base struct {
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	UserAgent   string        `yaml:"user_agent,omitempty"`
	MaxPayloads int           `yaml:"max_payloads,omitempty"`
	// MaxParams bounds how many query parameters are probed; 0 means all.
	MaxParams   int `yaml:"max_params,omitempty"`
	Concurrency int `yaml:"concurrency,omitempty"`

	// OnFinding is called for every vulnerability as soon as it is found.
	OnFinding func(finding.Finding) `yaml:"-"`
}

// DefaultBase returns a Base with production defaults: sequential probing
// with the injection timeout.
func DefaultBase() Base {
	return Base{
		Timeout:     duration.InjectionProbe,
		UserAgent:   defaults.UserAgent("scan"),
		Concurrency: defaults.ConcurrencyMinimal,
	}
}

// Validate fills zero-value fields with defaults.
func (b *Base) Validate() {
	if b.Timeout <= 0 {
		b.Timeout = duration.InjectionProbe
	}
	if b.UserAgent == "" {
		b.UserAgent = defaults.UserAgent("scan")
	}
	if b.Concurrency <= 0 {
		b.Concurrency = defaults.ConcurrencyMinimal
	}
	if b.Concurrency > defaults.ConcurrencyMax {
		b.Concurrency = defaults.ConcurrencyMax
	}
	if b.MaxParams < 0 {
		b.MaxParams = 0
	}
}

// Notify calls OnFinding if set.
func (b *Base) Notify(f finding.Finding) {
	if b.OnFinding != nil {
		b.OnFinding(f)
	}
}
