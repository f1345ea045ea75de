package tls

import (
	"context"
	"time"

	"github.com/webprobe/webprobe/pkg/finding"
	"github.com/webprobe/webprobe/pkg/target"
)

// Check adapts an Inspector to the orchestrator's module contract. Plain
// http targets yield an empty result without a handshake.
type Check struct {
	inspector *Inspector
	now       func() time.Time
}

// NewCheck wraps inspector. A nil inspector uses the defaults.
func NewCheck(inspector *Inspector) *Check {
	if inspector == nil {
		inspector = NewInspector()
	}
	return &Check{inspector: inspector, now: time.Now}
}

// Name returns the module name.
func (c *Check) Name() string { return ModuleName }

// Scan inspects the target's certificate and grades it.
func (c *Check) Scan(ctx context.Context, tgt target.Target) (finding.ModuleResult, error) {
	if !tgt.IsHTTPS() {
		return finding.NewModuleResult(ModuleName), nil
	}
	res := c.inspector.Inspect(ctx, tgt.Hostname(), tgt.Port())
	return Assess(res, c.now()), nil
}
