package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/duration"
	"github.com/webprobe/webprobe/pkg/payloads"
	"github.com/webprobe/webprobe/pkg/scanner"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webprobe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, scanner.ScanFull, cfg.Type())
	assert.Equal(t, defaults.ConcurrencyMinimal, cfg.Concurrency)
	assert.Equal(t, duration.InjectionProbe, cfg.Timeouts.Injection)
	assert.True(t, cfg.FollowRedirects)
	assert.Zero(t, cfg.ScanTimeout)
}

func TestParse(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
scan_type: basic
rate_limit: 2.5
timeouts:
  injection: 3s
scan_timeout: 1m
sql:
  payloads_per_category: 1
  categories: [error_based]
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, scanner.ScanBasic, cfg.Type())
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Injection)
	assert.Equal(t, duration.HeaderProbe, cfg.Timeouts.Header, "unset keys keep defaults")
	assert.Equal(t, time.Minute, cfg.ScanTimeout)
	assert.Equal(t, []string{payloads.SQLErrorBased}, cfg.SQL.Categories)
	assert.True(t, cfg.FollowRedirects)

	empty, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), empty)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("retries: 3\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	tests := map[string]func(*Config){
		"scan type":   func(c *Config) { c.ScanType = "deep" },
		"rate":        func(c *Config) { c.RateLimit = -1 },
		"proxy":       func(c *Config) { c.Proxy = "ftp://proxy" },
		"timeout":     func(c *Config) { c.Timeouts.TLS = -time.Second },
		"scan":        func(c *Config) { c.ScanTimeout = -time.Second },
		"concurrency": func(c *Config) { c.Concurrency = defaults.ConcurrencyMax + 1 },
		"params":      func(c *Config) { c.MaxParams = -1 },
		"budget":      func(c *Config) { c.XSS.MaxPayloads = -1 },
	}
	for name, mutate := range tests {
		cfg := Default()
		mutate(&cfg)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, name)
	}
}

func TestValidateFillsZeroes(t *testing.T) {
	t.Parallel()

	var cfg Config
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "full", cfg.ScanType)
	assert.Equal(t, Default().Timeouts, cfg.Timeouts)
	assert.Equal(t, defaults.SQLPayloadsPerCategory, cfg.SQL.PayloadsPerCategory)
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeFile(t, "target: https://example.com/?q=1\nconcurrency: 4\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/?q=1", cfg.Target)
	assert.Equal(t, 4, cfg.Concurrency)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "concurrency: [\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "scan_type: basic\nconcurrency: 4\nproxy: socks5://127.0.0.1:9050\n")
	cfg, err := ParseFlags([]string{
		"-config", path,
		"-c", "8",
		"-no-redirects",
		"-scan-timeout", "30s",
		"-v",
		"https://example.com/search?q=x",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/search?q=x", cfg.Target)
	assert.Equal(t, "basic", cfg.ScanType, "file value kept when the flag is not given")
	assert.Equal(t, 8, cfg.Concurrency, "explicit flag wins over the file")
	assert.Equal(t, "socks5://127.0.0.1:9050", cfg.Proxy)
	assert.False(t, cfg.FollowRedirects)
	assert.Equal(t, 30*time.Second, cfg.ScanTimeout)
	assert.True(t, cfg.Verbose)
}

func TestParseFlagsRequiresTarget(t *testing.T) {
	t.Parallel()

	_, err := ParseFlags(nil, io.Discard)
	assert.ErrorIs(t, err, ErrMissingRequired)

	_, err = ParseFlags([]string{"-type", "deep", "http://example.com"}, io.Discard)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestComponentConfigs(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Concurrency = 4
	cfg.XSS.Categories = []string{payloads.XSSBypass}
	require.NoError(t, cfg.Validate())

	set, err := cfg.Payloads()
	require.NoError(t, err)

	sql := cfg.SQLConfig(set)
	assert.Equal(t, 4, sql.Concurrency)
	assert.Equal(t, duration.InjectionProbe, sql.Timeout)
	assert.Equal(t, duration.BaselineProbe, sql.BaselineTimeout)
	assert.Same(t, set.SQL, sql.Catalogue)

	x := cfg.XSSConfig(set)
	assert.Equal(t, defaults.XSSMaxPayloads, x.MaxPayloads)
	assert.Equal(t, []string{payloads.XSSBypass}, x.Categories)

	hc := cfg.HTTPClient()
	assert.Equal(t, cfg.UserAgent, hc.UserAgent)
	assert.Equal(t, defaults.MaxRedirects, hc.MaxRedirects)
}
