package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/webprobe/webprobe/pkg/iohelper"
)

// Response is the part of an HTTP response the detectors look at.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
	// URL is the final URL after redirects.
	URL      string
	Duration time.Duration
}

// Observer receives the outcome of every probe. outcome is "ok" or an
// ErrorKind.
type Observer interface {
	ObserveProbe(outcome string, d time.Duration)
}

// Fetcher issues one GET request. It is the seam the injection engine and
// the modules depend on, so tests can substitute canned responses.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, timeout time.Duration, headers http.Header) (*Response, error)
}

// Prober issues independent GET probes against the target. It is safe for
// concurrent use.
type Prober struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
	observer  Observer
	logger    *slog.Logger
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithLogger sets a custom structured logger for the prober.
func WithLogger(l *slog.Logger) ProberOption {
	return func(p *Prober) { p.logger = l }
}

// WithObserver registers a probe observer, typically the metrics collector.
func WithObserver(o Observer) ProberOption {
	return func(p *Prober) { p.observer = o }
}

// WithClient replaces the HTTP client built from the config.
func WithClient(c *http.Client) ProberOption {
	return func(p *Prober) { p.client = c }
}

// NewProber builds a Prober from cfg.
func NewProber(cfg Config, opts ...ProberOption) (*Prober, error) {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	p := &Prober{
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		logger:    slog.Default(),
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		client, err := New(cfg)
		if err != nil {
			return nil, err
		}
		p.client = client
	}
	return p, nil
}

// Fetch issues a single GET request. timeout bounds this probe only; zero
// uses the configured default. Every transport failure is returned as a
// *ProbeError. No retries are made.
func (p *Prober) Fetch(ctx context.Context, rawURL string, timeout time.Duration, headers http.Header) (*Response, error) {
	if timeout <= 0 {
		timeout = p.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, p.fail(rawURL, fmt.Errorf("rate limiter: %w", err), 0)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &ProbeError{Kind: KindOther, URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", p.userAgent)
	for k, vs := range headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, p.fail(rawURL, err, time.Since(start))
	}
	defer iohelper.DrainAndClose(resp.Body)

	body, err := iohelper.ReadBodyString(resp.Body)
	if err != nil {
		return nil, p.fail(rawURL, fmt.Errorf("read body: %w", err), time.Since(start))
	}
	elapsed := time.Since(start)

	if p.observer != nil {
		p.observer.ObserveProbe("ok", elapsed)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		URL:        resp.Request.URL.String(),
		Duration:   elapsed,
	}, nil
}

func (p *Prober) fail(rawURL string, err error, elapsed time.Duration) error {
	pe := newProbeError(rawURL, err)
	p.logger.Debug("probe failed",
		slog.String("url", rawURL),
		slog.String("kind", string(pe.Kind)),
		slog.String("error", err.Error()))
	if p.observer != nil {
		p.observer.ObserveProbe(string(pe.Kind), elapsed)
	}
	return pe
}
