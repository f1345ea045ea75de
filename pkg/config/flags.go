package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/webprobe/webprobe/pkg/defaults"
)

// ParseFlags parses args (without the program name) over the YAML file named
// by -config. Flags given explicitly win over the file; the first positional
// argument is accepted as the target.
func ParseFlags(args []string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet(defaults.ToolName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath      string
		target          string
		scanType        string
		userAgent       string
		verifyTLS       bool
		noRedirects     bool
		proxy           string
		rateLimit       float64
		concurrency     int
		maxParams       int
		parallelModules bool
		scanTimeout     time.Duration
		payloadFile     string
		metricsAddr     string
		otlpEndpoint    string
		otlpInsecure    bool
		outputFile      string
		verbose         bool
	)

	// === INPUT ===
	fs.StringVar(&configPath, "config", "", "YAML configuration file")
	fs.StringVar(&target, "u", "", "Target URL (http or https)")
	fs.StringVar(&target, "target", "", "Target URL (alias)")
	fs.StringVar(&scanType, "type", "full", "Scan type: basic or full")

	// === NETWORK ===
	fs.StringVar(&userAgent, "user-agent", defaults.UserAgent("scan"), "User-Agent sent on every probe")
	fs.BoolVar(&verifyTLS, "verify-tls", false, "Verify certificates on probes (the TLS check always verifies)")
	fs.BoolVar(&noRedirects, "no-redirects", false, "Do not follow redirects")
	fs.StringVar(&proxy, "proxy", "", "HTTP or SOCKS5 proxy URL")
	fs.StringVar(&proxy, "x", "", "Proxy (alias)")
	fs.Float64Var(&rateLimit, "rate-limit", 0, "Max probes per second (0 = unlimited)")
	fs.Float64Var(&rateLimit, "rl", 0, "Rate limit (alias)")

	// === EXECUTION ===
	fs.IntVar(&concurrency, "concurrency", defaults.ConcurrencyMinimal, "Parameters probed in parallel")
	fs.IntVar(&concurrency, "c", defaults.ConcurrencyMinimal, "Concurrency (alias)")
	fs.IntVar(&maxParams, "max-params", 0, "Max query parameters tested (0 = all)")
	fs.BoolVar(&parallelModules, "parallel-modules", false, "Run detection modules concurrently")
	fs.DurationVar(&scanTimeout, "scan-timeout", 0, "Global scan deadline (0 = none)")
	fs.StringVar(&payloadFile, "payloads", "", "YAML payload catalogue replacing the built-ins")

	// === TELEMETRY ===
	fs.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP/gRPC collector for traces")
	fs.BoolVar(&otlpInsecure, "otlp-insecure", false, "Disable TLS to the OTLP collector")

	// === OUTPUT ===
	fs.StringVar(&outputFile, "output", "", "Write the JSON result here instead of stdout")
	fs.StringVar(&outputFile, "o", "", "Output file (alias)")
	fs.BoolVar(&verbose, "verbose", false, "Debug logging")
	fs.BoolVar(&verbose, "v", false, "Verbose (alias)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg, err := Load(configPath)
	if err != nil {
		return cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "u", "target":
			cfg.Target = target
		case "type":
			cfg.ScanType = scanType
		case "user-agent":
			cfg.UserAgent = userAgent
		case "verify-tls":
			cfg.VerifyTLS = verifyTLS
		case "no-redirects":
			cfg.FollowRedirects = !noRedirects
		case "proxy", "x":
			cfg.Proxy = proxy
		case "rate-limit", "rl":
			cfg.RateLimit = rateLimit
		case "concurrency", "c":
			cfg.Concurrency = concurrency
		case "max-params":
			cfg.MaxParams = maxParams
		case "parallel-modules":
			cfg.ParallelModules = parallelModules
		case "scan-timeout":
			cfg.ScanTimeout = scanTimeout
		case "payloads":
			cfg.PayloadFile = payloadFile
		case "metrics-addr":
			cfg.Telemetry.MetricsAddr = metricsAddr
		case "otlp-endpoint":
			cfg.Telemetry.OTLPEndpoint = otlpEndpoint
		case "otlp-insecure":
			cfg.Telemetry.OTLPInsecure = otlpInsecure
		case "output", "o":
			cfg.OutputFile = outputFile
		case "verbose", "v":
			cfg.Verbose = verbose
		}
	})

	if cfg.Target == "" && fs.NArg() > 0 {
		cfg.Target = fs.Arg(0)
	}
	if cfg.Target == "" {
		return cfg, fmt.Errorf("%w: target (use -u or a positional URL)", ErrMissingRequired)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
