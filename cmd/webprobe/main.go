// Command webprobe scans one web target for missing security headers, weak
// TLS, SQL injection and reflected XSS, and prints the result as JSON.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/webprobe/webprobe/pkg/config"
	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/finding"
	"github.com/webprobe/webprobe/pkg/jsonutil"
	"github.com/webprobe/webprobe/pkg/metrics"
	"github.com/webprobe/webprobe/pkg/target"
	"github.com/webprobe/webprobe/pkg/telemetry"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.ParseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return defaults.ExitSuccess
		}
		fmt.Fprintf(stderr, "%s: %v\n", defaults.ToolName, err)
		return defaults.ExitUserError
	}
	logger := newLogger(stderr, cfg.Verbose)

	// Malformed targets are rejected before anything touches the network.
	tgt, err := target.Parse(cfg.Target)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", defaults.ToolName, err)
		return defaults.ExitUserError
	}
	set, err := cfg.Payloads()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", defaults.ToolName, err)
		return defaults.ExitUserError
	}

	var collector *metrics.Collector
	if cfg.Telemetry.MetricsAddr != "" {
		if collector, err = metrics.New(); err != nil {
			logger.Error("metrics disabled", slog.String("error", err.Error()))
		} else {
			go func() {
				if err := collector.Serve(ctx, cfg.Telemetry.MetricsAddr, logger); err != nil {
					logger.Error("metrics server stopped", slog.String("error", err.Error()))
				}
			}()
		}
	}

	provider, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint: cfg.Telemetry.OTLPEndpoint,
		Insecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		logger.Warn("tracing disabled", slog.String("error", err.Error()))
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("tracing shutdown", slog.String("error", err.Error()))
		}
	}()

	orch, err := buildOrchestrator(cfg, tgt, set, collector, provider, logger)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", defaults.ToolName, err)
		return defaults.ExitUserError
	}

	result, err := orch.Run(ctx)
	if err != nil {
		logger.Error("scan failed", slog.String("error", err.Error()))
		return defaults.ExitInternalError
	}

	if err := writeResult(cfg.OutputFile, stdout, result); err != nil {
		logger.Error("writing result", slog.String("error", err.Error()))
		return defaults.ExitInternalError
	}
	if len(result.Vulnerabilities) > 0 {
		return defaults.ExitFindings
	}
	return defaults.ExitSuccess
}

func writeResult(path string, stdout io.Writer, result *finding.ScanResult) error {
	if path == "" {
		return jsonutil.Write(stdout, result, "  ")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := jsonutil.Write(f, result, "  "); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
