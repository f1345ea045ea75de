// Package metrics exposes scan activity for Prometheus scraping: probe
// outcomes and latency, findings by kind and severity, and per-module run
// time and failures. Every method is safe on a nil *Collector so callers
// can leave metrics disabled without branching.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/duration"
	"github.com/webprobe/webprobe/pkg/finding"
)

// Path is where Serve exposes the registry.
const Path = "/metrics"

var probeBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0}

// Collector owns a private registry so scans never touch the global one.
type Collector struct {
	registry *prometheus.Registry

	probesTotal    *prometheus.CounterVec
	probeSeconds   *prometheus.HistogramVec
	findingsTotal  *prometheus.CounterVec
	moduleSeconds  *prometheus.HistogramVec
	moduleFailures *prometheus.CounterVec
	scansTotal     *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() (*Collector, error) {
	ns := defaults.ToolName
	c := &Collector{
		registry: prometheus.NewRegistry(),
		probesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "probes_total",
			Help:      "HTTP probes issued, by outcome (ok or error kind)",
		}, []string{"outcome"}),
		probeSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "probe_duration_seconds",
			Help:      "HTTP probe latency in seconds",
			Buckets:   probeBuckets,
		}, []string{"outcome"}),
		findingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "findings_total",
			Help:      "Findings recorded, by module, kind and severity",
		}, []string{"module", "kind", "severity"}),
		moduleSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "module_duration_seconds",
			Help:      "Wall time spent in each module",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"module"}),
		moduleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "module_failures_total",
			Help:      "Modules that returned an error, panicked or timed out",
		}, []string{"module", "reason"}),
		scansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "scans_total",
			Help:      "Completed scans, by scan type",
		}, []string{"scan_type"}),
	}

	for _, col := range []prometheus.Collector{
		c.probesTotal,
		c.probeSeconds,
		c.findingsTotal,
		c.moduleSeconds,
		c.moduleFailures,
		c.scansTotal,
	} {
		if err := c.registry.Register(col); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return c, nil
}

// Registry returns the private registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveProbe implements httpclient.Observer.
func (c *Collector) ObserveProbe(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.probesTotal.WithLabelValues(outcome).Inc()
	if d > 0 {
		c.probeSeconds.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

// ObserveModule records one module run and the findings it produced.
func (c *Collector) ObserveModule(module string, d time.Duration, res finding.ModuleResult) {
	if c == nil {
		return
	}
	c.moduleSeconds.WithLabelValues(module).Observe(d.Seconds())
	for _, f := range res.All() {
		sev := string(f.Severity)
		if sev == "" {
			sev = "none"
		}
		c.findingsTotal.WithLabelValues(module, string(f.Kind), sev).Inc()
	}
}

// ModuleFailed counts a module failure. reason is "error", "panic" or
// "timeout".
func (c *Collector) ModuleFailed(module, reason string) {
	if c == nil {
		return
	}
	c.moduleFailures.WithLabelValues(module, reason).Inc()
}

// ScanCompleted counts a finished scan.
func (c *Collector) ScanCompleted(scanType string) {
	if c == nil {
		return
	}
	c.scansTotal.WithLabelValues(scanType).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Serve exposes Handler on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle(Path, c.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: duration.MetricsReadHeader,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listen %s: %w", addr, err)
	}
	logger.Info("metrics server listening", slog.String("addr", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), duration.TelemetryShutdown)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
