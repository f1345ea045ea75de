package attackconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/webprobe/webprobe/pkg/defaults"
	"github.com/webprobe/webprobe/pkg/duration"
	"github.com/webprobe/webprobe/pkg/finding"
)

func TestValidateFillsZeroValues(t *testing.T) {
	t.Parallel()

	var b Base
	b.Validate()
	assert.Equal(t, duration.InjectionProbe, b.Timeout)
	assert.Equal(t, defaults.ConcurrencyMinimal, b.Concurrency)
	assert.Contains(t, b.UserAgent, defaults.ToolName)
}

func TestValidateClamps(t *testing.T) {
	t.Parallel()

	b := Base{Concurrency: 10_000, MaxParams: -3}
	b.Validate()
	assert.Equal(t, defaults.ConcurrencyMax, b.Concurrency)
	assert.Zero(t, b.MaxParams)
}

func TestValidateKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	b := Base{Timeout: duration.CSPProbe, UserAgent: "custom", Concurrency: 3}
	b.Validate()
	assert.Equal(t, duration.CSPProbe, b.Timeout)
	assert.Equal(t, "custom", b.UserAgent)
	assert.Equal(t, 3, b.Concurrency)
}

func TestNotify(t *testing.T) {
	t.Parallel()

	var b Base
	b.Notify(finding.NewInfo("m", "no callback set"))

	var got []finding.Finding
	b.OnFinding = func(f finding.Finding) { got = append(got, f) }
	b.Notify(finding.NewInfo("m", "seen"))
	assert.Len(t, got, 1)
}
