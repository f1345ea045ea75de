package securityheaders

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webprobe/webprobe/pkg/finding"
	"github.com/webprobe/webprobe/pkg/httpclient"
	"github.com/webprobe/webprobe/pkg/target"
)

func response(h http.Header) *httpclient.Response {
	return &httpclient.Response{StatusCode: 200, Header: h, URL: "https://example.com/"}
}

func countType(fs []finding.Finding, typ finding.Type) int {
	n := 0
	for _, f := range fs {
		if f.Type == typ {
			n++
		}
	}
	return n
}

func TestCheckAllMissing(t *testing.T) {
	t.Parallel()

	out := Check(response(http.Header{}), target.MustParse("https://example.com/"))
	require.Len(t, out.Vulnerabilities, len(Catalogue()))
	for i, h := range Catalogue() {
		v := out.Vulnerabilities[i]
		assert.Equal(t, finding.TypeMissingSecurityHeader, v.Type)
		assert.Equal(t, finding.Medium, v.Severity)
		assert.Contains(t, v.Description, h.Name, "catalogue order must be preserved")
		assert.NoError(t, v.Validate())
	}
}

func TestCheckOneFindingPerAbsentHeader(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Content-Security-Policy", "default-src 'self'")

	out := Check(response(h), target.MustParse("https://example.com/"))
	assert.Equal(t, 4, countType(out.Vulnerabilities, finding.TypeMissingSecurityHeader))
	for _, v := range out.Vulnerabilities {
		assert.NotContains(t, v.Description, "X-Frame-Options")
		assert.NotContains(t, v.Description, "Strict-Transport-Security")
		assert.NotContains(t, v.Description, "Content-Security-Policy")
	}
	assert.Zero(t, countType(out.Warnings, finding.TypeWeakSecurityHeader))

	last := out.Info[len(out.Info)-1]
	assert.Equal(t, "Security headers: 3 present, 4 missing", last.Description)
}

func TestCheckWeakValues(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("Strict-Transport-Security", "max-age=0")
	h.Set("X-Frame-Options", "ALLOW-FROM https://evil.example")
	h.Set("X-Content-Type-Options", "sniff")
	h.Set("X-XSS-Protection", "0")

	out := Check(response(h), target.MustParse("https://example.com/"))
	assert.Equal(t, 4, countType(out.Warnings, finding.TypeWeakSecurityHeader))
}

func TestCheckEmptyHeaderIsPresentButWeak(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("X-Frame-Options", "")
	h.Set("Content-Security-Policy", " ")

	out := Check(response(h), target.MustParse("https://example.com/"))
	for _, v := range out.Vulnerabilities {
		assert.NotContains(t, v.Description, "X-Frame-Options")
		assert.NotContains(t, v.Description, "Content-Security-Policy")
	}
	assert.Equal(t, 5, countType(out.Vulnerabilities, finding.TypeMissingSecurityHeader))
	assert.Equal(t, 2, countType(out.Warnings, finding.TypeWeakSecurityHeader))
	assert.Equal(t, "Security headers: 2 present, 5 missing", out.Info[len(out.Info)-1].Description)

	sweep := Sweep(response(h))
	for _, w := range sweep.Warnings {
		assert.NotEqual(t, "X-Frame-Options: absent", w.Description)
	}
}

func TestCheckCookies(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Add("Set-Cookie", "session=abc; Path=/; HttpOnly; Secure")
	h.Add("Set-Cookie", "theme=dark; Path=/")
	h.Add("Set-Cookie", "csrf=xyz; secure")

	https := Check(response(h), target.MustParse("https://example.com/"))
	// theme: no HttpOnly + no Secure, csrf: no HttpOnly
	assert.Equal(t, 3, countType(https.Warnings, finding.TypeInsecureCookie))

	plain := Check(response(h), target.MustParse("http://example.com/"))
	assert.Equal(t, 2, countType(plain.Warnings, finding.TypeInsecureCookie), "Secure is only required on HTTPS")
}

func TestCheckServerDisclosure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		server string
		leak   bool
	}{
		{"Apache/2.4.41 (Ubuntu)", true},
		{"nginx/1.18.0", true},
		{"Microsoft-IIS/10.0", true},
		{"cloudflare", false},
	}
	for _, tt := range tests {
		h := http.Header{}
		h.Set("Server", tt.server)
		out := Check(response(h), target.MustParse("http://example.com/"))
		if tt.leak {
			assert.Equal(t, 1, countType(out.Warnings, finding.TypeInformationDisclosure), tt.server)
		} else {
			assert.Zero(t, countType(out.Warnings, finding.TypeInformationDisclosure), tt.server)
		}
		var seen bool
		for _, i := range out.Info {
			if i.Description == "Server: "+tt.server {
				seen = true
			}
		}
		assert.True(t, seen, "server value reported as info")
	}
}

func TestCheckDeterministic(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("X-Frame-Options", "SAMEORIGIN")
	h.Add("Set-Cookie", "a=1")
	tgt := target.MustParse("https://example.com/")

	first := Check(response(h), tgt)
	second := Check(response(h), tgt)
	assert.Equal(t, first, second)
}

func TestSweep(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("X-Content-Type-Options", "nosniff")
	out := Sweep(response(h))
	assert.Len(t, out.Info, 1)
	assert.Len(t, out.Warnings, 3)
	assert.Empty(t, out.Vulnerabilities)
}

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, string, time.Duration, http.Header) (*httpclient.Response, error) {
	return nil, &httpclient.ProbeError{Kind: httpclient.KindTimeout, URL: "x", Err: errors.New("deadline")}
}

func TestScannerProbeFailureBecomesWarning(t *testing.T) {
	t.Parallel()

	out, err := NewScanner(failingFetcher{}).Scan(context.Background(), target.MustParse("https://example.com/"))
	require.NoError(t, err)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, finding.TypeProbeFailure, out.Warnings[0].Type)
	assert.Empty(t, out.Vulnerabilities)
}

func TestScannerAgainstServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Server", "nginx")
	}))
	defer srv.Close()

	prober, err := httpclient.NewProber(httpclient.DefaultConfig())
	require.NoError(t, err)

	s := NewScanner(prober)
	assert.Equal(t, ModuleName, s.Name())
	out, err := s.Scan(context.Background(), target.MustParse(srv.URL))
	require.NoError(t, err)
	assert.Len(t, out.Vulnerabilities, len(Catalogue())-1)
	assert.Equal(t, 1, countType(out.Warnings, finding.TypeInformationDisclosure))
}

func TestSweeper(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Strict-Transport-Security", "max-age=63072000")
	}))
	defer srv.Close()

	prober, err := httpclient.NewProber(httpclient.DefaultConfig())
	require.NoError(t, err)

	s := NewSweeper(prober)
	assert.Equal(t, SweepModuleName, s.Name())
	out, err := s.Scan(context.Background(), target.MustParse(srv.URL))
	require.NoError(t, err)
	require.Len(t, out.Info, 1)
	assert.Equal(t, "Strict-Transport-Security: max-age=63072000", out.Info[0].Description)
	assert.Len(t, out.Warnings, 3)

	failed, err := NewSweeper(failingFetcher{}).Scan(context.Background(), target.MustParse(srv.URL))
	require.NoError(t, err)
	require.Len(t, failed.Warnings, 1)
	assert.Equal(t, finding.TypeProbeFailure, failed.Warnings[0].Type)
}
