package main

import (
	"fmt"
	"log/slog"

	"github.com/webprobe/webprobe/pkg/config"
	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/finding"
	"github.com/webprobe/webprobe/pkg/httpclient"
	"github.com/webprobe/webprobe/pkg/injection"
	"github.com/webprobe/webprobe/pkg/metrics"
	"github.com/webprobe/webprobe/pkg/payloads"
	"github.com/webprobe/webprobe/pkg/scanner"
	"github.com/webprobe/webprobe/pkg/securityheaders"
	"github.com/webprobe/webprobe/pkg/sqli"
	"github.com/webprobe/webprobe/pkg/surface"
	"github.com/webprobe/webprobe/pkg/target"
	"github.com/webprobe/webprobe/pkg/telemetry"
	"github.com/webprobe/webprobe/pkg/tls"
	"github.com/webprobe/webprobe/pkg/xss"
)

// buildOrchestrator wires every module to one shared prober.
func buildOrchestrator(
	cfg config.Config,
	tgt target.Target,
	set payloads.Set,
	collector *metrics.Collector,
	provider *telemetry.Provider,
	logger *slog.Logger,
) (*scanner.Orchestrator, error) {
	prober, err := httpclient.NewProber(cfg.HTTPClient(),
		httpclient.WithLogger(logger),
		httpclient.WithObserver(collector))
	if err != nil {
		return nil, fmt.Errorf("http client: %w", err)
	}

	injectionTracer := provider.Tracer(defaults.ToolName + "/injection")
	sqlCfg := cfg.SQLConfig(set)
	sqlCfg.OnFinding = logFinding(logger)
	sqlScanner, err := sqli.NewScanner(prober, sqlCfg,
		sqli.WithLogger(logger),
		sqli.WithEngineOptions(injection.WithTracer(injectionTracer)))
	if err != nil {
		return nil, fmt.Errorf("sql detector: %w", err)
	}
	xssCfg := cfg.XSSConfig(set)
	xssCfg.OnFinding = logFinding(logger)
	xssScanner, err := xss.NewScanner(prober, xssCfg,
		xss.WithLogger(logger),
		xss.WithEngineOptions(injection.WithTracer(injectionTracer)))
	if err != nil {
		return nil, fmt.Errorf("xss detector: %w", err)
	}

	components := scanner.Components{
		Surface: surface.NewAnalyzer(prober,
			surface.WithMaxFields(cfg.Surface.MaxFields),
			surface.WithTimeout(cfg.Timeouts.Landing),
			surface.WithLogger(logger)),
		Headers: securityheaders.NewScanner(prober,
			securityheaders.WithTimeout(cfg.Timeouts.Header),
			securityheaders.WithLogger(logger)),
		SQL: sqlScanner,
		XSS: xssScanner,
		TLS: tls.NewCheck(tls.NewInspector(
			tls.WithTimeout(cfg.Timeouts.TLS),
			tls.WithLogger(logger))),
		Sweep: securityheaders.NewSweeper(prober,
			securityheaders.WithTimeout(cfg.Timeouts.Header),
			securityheaders.WithLogger(logger)),
	}

	return scanner.Standard(tgt, cfg.Type(), components,
		scanner.WithLogger(logger),
		scanner.WithTracer(provider.Tracer(defaults.ToolName+"/scanner")),
		scanner.WithRecorder(collector),
		scanner.WithScanTimeout(cfg.ScanTimeout),
		scanner.WithParallelModules(cfg.ParallelModules),
	), nil
}

// logFinding streams vulnerabilities to the log as the injection engine
// confirms them, ahead of the final report.
func logFinding(logger *slog.Logger) func(finding.Finding) {
	return func(f finding.Finding) {
		logger.Warn("vulnerability found",
			slog.String("module", f.Module),
			slog.String("type", string(f.Type)),
			slog.String("severity", string(f.Severity)),
			slog.String("parameter", f.Parameter))
	}
}
