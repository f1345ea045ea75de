// Package injection implements the probe loop shared by the SQL and XSS
// detectors: substitute one payload into one query parameter, fetch, and let
// a Detector judge the response. Testing of a parameter stops at its first
// positive verdict.
package injection

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/webprobe/webprobe/pkg/attackconfig"
	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/finding"
	"github.com/webprobe/webprobe/pkg/httpclient"
	"github.com/webprobe/webprobe/pkg/payloads"
	"github.com/webprobe/webprobe/pkg/target"
	"github.com/webprobe/webprobe/pkg/workerpool"
)

// Probe is everything a Detector sees about one request.
type Probe struct {
	Parameter string
	Payload   payloads.Payload
	URL       string
	// Response is nil when Err is set.
	Response *httpclient.Response
	Err      error
	// Baseline is the unmodified target's response, nil when the detector
	// did not ask for one or it could not be fetched.
	Baseline *httpclient.Response
}

// Verdict is a detector's judgement of a probe. Note, when set, is recorded
// as an info finding whether or not the probe was a hit.
type Verdict struct {
	Hit    bool
	Reason string
	Note   string
}

// Detector judges probe responses for one vulnerability class.
type Detector interface {
	// Name is the module name used on findings.
	Name() string
	Evaluate(p Probe) Verdict
	// Finding builds the vulnerability reported for a positive verdict.
	Finding(p Probe, v Verdict) finding.Finding
}

// Engine drives the per-parameter probe loop.
type Engine struct {
	fetcher httpclient.Fetcher
	cfg     attackconfig.Base
	logger  *slog.Logger
	tracer  trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// NewEngine returns an engine issuing probes through fetcher.
func NewEngine(fetcher httpclient.Fetcher, cfg attackconfig.Base, opts ...Option) *Engine {
	cfg.Validate()
	e := &Engine{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  slog.Default(),
		tracer:  otel.Tracer(defaults.ToolName + "/injection"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProbeParameters tests every query parameter of tgt with plan, in plan
// order, stopping per parameter at the first hit. Results are merged in
// order of first appearance of the parameter, regardless of concurrency.
//
// A target without query parameters yields an empty result. The only error
// returned is the context's, together with whatever was found before it was
// cancelled.
func (e *Engine) ProbeParameters(ctx context.Context, tgt target.Target, plan []payloads.Payload, det Detector, baseline *httpclient.Response) (finding.ModuleResult, error) {
	out := finding.NewModuleResult(det.Name())
	params := tgt.Params()
	if len(params) == 0 || len(plan) == 0 {
		return out, nil
	}
	if e.cfg.MaxParams > 0 && len(params) > e.cfg.MaxParams {
		params = params[:e.cfg.MaxParams]
	}

	type outcome struct {
		result finding.ModuleResult
		err    error
	}
	outcomes, panics := workerpool.Map(e.cfg.Concurrency, params, func(_ int, p target.Param) outcome {
		r, err := e.probeParameter(ctx, tgt, p.Name, plan, det, baseline)
		return outcome{result: r, err: err}
	})

	var firstErr error
	for i, o := range outcomes {
		if panics[i] != nil {
			out.Add(finding.NewWarning(det.Name(), finding.TypeModuleFailure,
				fmt.Sprintf("Testing parameter %q failed", params[i].Name)).
				WithParameter(params[i].Name).
				WithDetails(panics[i].Error()))
			continue
		}
		out.Merge(o.result)
		if o.err != nil && firstErr == nil {
			firstErr = o.err
		}
	}
	return out, firstErr
}

func (e *Engine) probeParameter(ctx context.Context, tgt target.Target, param string, plan []payloads.Payload, det Detector, baseline *httpclient.Response) (finding.ModuleResult, error) {
	out := finding.NewModuleResult(det.Name())

	ctx, span := e.tracer.Start(ctx, "injection.parameter", trace.WithAttributes(
		attribute.String("module", det.Name()),
		attribute.String("parameter", param),
	))
	defer span.End()

	for i, pl := range plan {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return out, err
		}

		probeURL := tgt.WithParam(param, pl.Value)
		resp, err := e.fetcher.Fetch(ctx, probeURL, e.cfg.Timeout, e.headers())
		if ctxErr := ctx.Err(); ctxErr != nil {
			// cancelled scans are never judged: a cancelled probe looks
			// exactly like a timeout
			span.SetStatus(codes.Error, ctxErr.Error())
			return out, ctxErr
		}

		probe := Probe{
			Parameter: param,
			Payload:   pl,
			URL:       probeURL,
			Response:  resp,
			Err:       err,
			Baseline:  baseline,
		}
		v := det.Evaluate(probe)
		e.logger.Debug("probe evaluated",
			slog.String("module", det.Name()),
			slog.String("parameter", param),
			slog.String("payload_category", pl.Category),
			slog.Bool("hit", v.Hit))

		if v.Note != "" {
			out.Add(finding.NewInfo(det.Name(), v.Note).WithParameter(param))
		}
		if v.Hit {
			f := det.Finding(probe, v)
			if f.Parameter == "" {
				f = f.WithParameter(param)
			}
			out.Add(f)
			e.cfg.Notify(f)
			span.SetAttributes(
				attribute.Int("probes", i+1),
				attribute.String("payload_category", pl.Category))
			return out, nil
		}
	}
	span.SetAttributes(attribute.Int("probes", len(plan)))
	return out, nil
}

// headers carries the configured User-Agent on every request.
func (e *Engine) headers() http.Header {
	return http.Header{"User-Agent": {e.cfg.UserAgent}}
}

// FetchBaseline fetches the unmodified target once. A failure is logged and
// returned as nil so detectors fall back to signals that need no baseline.
func (e *Engine) FetchBaseline(ctx context.Context, tgt target.Target, timeout time.Duration) *httpclient.Response {
	resp, err := e.fetcher.Fetch(ctx, tgt.String(), timeout, e.headers())
	if err != nil {
		e.logger.Debug("baseline fetch failed", slog.String("error", err.Error()))
		return nil
	}
	return resp
}
