package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/finding"
	"github.com/webprobe/webprobe/pkg/target"
	"github.com/webprobe/webprobe/pkg/workerpool"
)

// ModuleName tags findings the orchestrator itself records.
const ModuleName = "orchestrator"

// Orchestrator owns the ordered module list and is the only writer to the
// ScanResult. It runs exactly once.
type Orchestrator struct {
	target   target.Target
	scanType ScanType

	before  []Module
	modules []Module
	after   []Module

	scanTimeout     time.Duration
	parallelModules bool

	state    atomic.Int32
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder Recorder
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithTracer sets the tracer for scan and module spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// WithRecorder registers a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil && !isNilPointer(r) {
			o.recorder = r
		}
	}
}

// WithScanTimeout bounds the whole scan. Zero means no global deadline.
func WithScanTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.scanTimeout = d }
}

// WithParallelModules runs the registered modules concurrently. Results are
// still appended in registration order.
func WithParallelModules(on bool) Option {
	return func(o *Orchestrator) { o.parallelModules = on }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New returns an idle orchestrator for tgt.
func New(tgt target.Target, scanType ScanType, opts ...Option) *Orchestrator {
	if scanType == "" {
		scanType = ScanFull
	}
	o := &Orchestrator{
		target:   tgt,
		scanType: scanType,
		logger:   slog.Default(),
		tracer:   otel.Tracer(defaults.ToolName + "/scanner"),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register appends m to the module loop. Nil modules are ignored.
func (o *Orchestrator) Register(m Module) { o.modules = appendModule(o.modules, m) }

// Before adds a baseline check that runs ahead of the module loop.
func (o *Orchestrator) Before(m Module) { o.before = appendModule(o.before, m) }

// After adds a baseline check that runs behind the module loop.
func (o *Orchestrator) After(m Module) { o.after = appendModule(o.after, m) }

// Modules lists module names in execution order.
func (o *Orchestrator) Modules() []string {
	names := make([]string, 0, len(o.before)+len(o.modules)+len(o.after))
	for _, group := range [][]Module{o.before, o.modules, o.after} {
		for _, m := range group {
			names = append(names, m.Name())
		}
	}
	return names
}

// State reports the lifecycle state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Run executes every module and returns the frozen result. The only error
// is ErrScanStarted; module failures are findings.
func (o *Orchestrator) Run(ctx context.Context) (*finding.ScanResult, error) {
	if !o.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, ErrScanStarted
	}

	start := o.now()
	result := finding.NewScanResult(o.target.String(), string(o.scanType), start)

	ctx, span := o.tracer.Start(ctx, "scan", trace.WithAttributes(
		attribute.String("scan.target", o.target.String()),
		attribute.String("scan.type", string(o.scanType)),
		attribute.String("scan.id", result.ScanID.String()),
	))
	defer span.End()

	if o.scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.scanTimeout)
		defer cancel()
	}

	o.logger.Info("scan started",
		slog.String("target", o.target.String()),
		slog.String("scan_type", string(o.scanType)),
		slog.Int("modules", len(o.before)+len(o.modules)+len(o.after)))

	for _, m := range o.before {
		result.Append(o.runModule(ctx, m))
	}
	for _, r := range o.runLoop(ctx) {
		result.Append(r)
	}
	for _, m := range o.after {
		result.Append(o.runModule(ctx, m))
	}

	result.Freeze(o.now())
	o.state.Store(int32(StateCompleted))
	o.recorder.ScanCompleted(string(o.scanType))

	span.SetAttributes(
		attribute.Int("scan.vulnerabilities", len(result.Vulnerabilities)),
		attribute.Int("scan.warnings", len(result.Warnings)),
	)
	bySeverity := result.CountBySeverity()
	o.logger.Info("scan completed",
		slog.String("target", o.target.String()),
		slog.Int("vulnerabilities", len(result.Vulnerabilities)),
		slog.Group("severity",
			slog.Int(string(finding.Critical), bySeverity[finding.Critical]),
			slog.Int(string(finding.High), bySeverity[finding.High]),
			slog.Int(string(finding.Medium), bySeverity[finding.Medium]),
			slog.Int(string(finding.Low), bySeverity[finding.Low])),
		slog.Int("warnings", len(result.Warnings)),
		slog.Int("info", len(result.Info)),
		slog.Float64("duration_seconds", result.DurationSeconds))
	return result, nil
}

func (o *Orchestrator) runLoop(ctx context.Context) []finding.ModuleResult {
	if !o.parallelModules || len(o.modules) < 2 {
		out := make([]finding.ModuleResult, 0, len(o.modules))
		for _, m := range o.modules {
			out = append(out, o.runModule(ctx, m))
		}
		return out
	}
	// runModule recovers its own panics, so Map never reports errors here.
	out, _ := workerpool.Map(len(o.modules), o.modules, func(_ int, m Module) finding.ModuleResult {
		return o.runModule(ctx, m)
	})
	return out
}

// runModule isolates one module: a returned error or a panic becomes a
// MODULE_FAILURE warning, and a module cut off by the scan deadline gets a
// SCAN_TIMEOUT warning next to whatever it produced.
func (o *Orchestrator) runModule(ctx context.Context, m Module) (out finding.ModuleResult) {
	name := m.Name()
	out = finding.NewModuleResult(name)

	if err := ctx.Err(); err != nil {
		o.recorder.ModuleFailed(name, "timeout")
		out.Add(timeoutWarning(name, err, false))
		return out
	}

	ctx, span := o.tracer.Start(ctx, "module "+name, trace.WithAttributes(attribute.String("module", name)))
	defer span.End()
	start := o.now()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			o.logger.Warn("module panicked", slog.String("module", name), slog.String("error", err.Error()))
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			o.recorder.ModuleFailed(name, "panic")
			out = finding.NewModuleResult(name)
			out.Add(failureWarning(name, err))
		}
		o.recorder.ObserveModule(name, o.now().Sub(start), out)
	}()

	res, err := m.Scan(ctx, o.target)
	out.Merge(res)

	// A module cut off by the deadline usually returns the context error;
	// that is a timeout, not a module failure.
	if ctxErr := ctx.Err(); ctxErr != nil {
		o.logger.Warn("module interrupted", slog.String("module", name), slog.String("error", ctxErr.Error()))
		span.SetStatus(codes.Error, ctxErr.Error())
		o.recorder.ModuleFailed(name, "timeout")
		out.Add(timeoutWarning(name, ctxErr, true))
		return out
	}
	if err != nil {
		o.logger.Warn("module failed", slog.String("module", name), slog.String("error", err.Error()))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.recorder.ModuleFailed(name, "error")
		out.Add(failureWarning(name, err))
		return out
	}

	span.SetAttributes(attribute.Int("module.findings", out.Len()))
	o.logger.Debug("module finished",
		slog.String("module", name),
		slog.Int("findings", out.Len()))
	return out
}

func failureWarning(module string, err error) finding.Finding {
	return finding.NewWarning(module, finding.TypeModuleFailure,
		fmt.Sprintf("Module %s failed: %v", module, err)).
		WithDetails(err.Error())
}

func timeoutWarning(module string, err error, partial bool) finding.Finding {
	verb := "timed out"
	if !errors.Is(err, context.DeadlineExceeded) {
		verb = "was cancelled"
	}
	desc := fmt.Sprintf("Module %s %s before it started", module, verb)
	if partial {
		desc = fmt.Sprintf("Module %s %s, results are partial", module, verb)
	}
	return finding.NewWarning(module, finding.TypeScanTimeout, desc).WithDetails(err.Error())
}

func appendModule(list []Module, m Module) []Module {
	if m == nil || isNilPointer(m) {
		return list
	}
	return append(list, m)
}

// isNilPointer catches typed nil pointers stored in an interface, such as a
// disabled *metrics.Collector.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
