package config

import (
	"github.com/webprobe/webprobe/pkg/attackconfig"
	"github.com/webprobe/webprobe/pkg/payloads"
	"github.com/webprobe/webprobe/pkg/sqli"
	"github.com/webprobe/webprobe/pkg/xss"
)

func (c Config) attackBase() attackconfig.Base {
	base := attackconfig.DefaultBase()
	base.Timeout = c.Timeouts.Injection
	base.UserAgent = c.UserAgent
	base.MaxParams = c.MaxParams
	base.Concurrency = c.Concurrency
	return base
}

// Payloads loads the configured catalogue file, or the built-in catalogues.
func (c Config) Payloads() (payloads.Set, error) {
	return payloads.LoadFile(c.PayloadFile)
}

// SQLConfig derives the SQL detector configuration.
func (c Config) SQLConfig(set payloads.Set) sqli.Config {
	cfg := sqli.DefaultConfig()
	cfg.Base = c.attackBase()
	cfg.PayloadsPerCategory = c.SQL.PayloadsPerCategory
	cfg.Categories = c.SQL.Categories
	cfg.BaselineTimeout = c.Timeouts.Baseline
	cfg.Catalogue = set.SQL
	return cfg
}

// XSSConfig derives the reflected-XSS detector configuration.
func (c Config) XSSConfig(set payloads.Set) xss.Config {
	cfg := xss.DefaultConfig()
	cfg.Base = c.attackBase()
	cfg.MaxPayloads = c.XSS.MaxPayloads
	cfg.Categories = c.XSS.Categories
	cfg.CSPTimeout = c.Timeouts.CSP
	cfg.Catalogue = set.XSS
	return cfg
}
