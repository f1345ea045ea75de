package finding

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    Severity
		want bool
	}{
		{Critical, true},
		{High, true},
		{Medium, true},
		{Low, true},
		{"info", false},
		{"", false},
		{"Critical", false}, // must be lowercase
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.s.IsValid(), "severity %q", tt.s)
	}
}

func TestSeverityScoreOrdering(t *testing.T) {
	t.Parallel()

	assert.Greater(t, Critical.Score(), High.Score())
	assert.Greater(t, High.Score(), Medium.Score())
	assert.Greater(t, Medium.Score(), Low.Score())
	assert.Zero(t, Severity("bogus").Score())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		f       Finding
		wantErr bool
	}{
		{"valid vulnerability", NewVulnerability("m", TypeSQLInjection, Critical, "sqli"), false},
		{"missing type", NewVulnerability("m", "", Critical, "sqli"), true},
		{"bad severity", NewVulnerability("m", TypeSQLInjection, "info", "sqli"), true},
		{"empty description", NewVulnerability("m", TypeSQLInjection, High, "  "), true},
		{"warning without type", NewWarning("m", "", "careful"), false},
		{"info", NewInfo("m", "note"), false},
		{"empty info", NewInfo("m", ""), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.f.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidFinding))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFingerprintStable(t *testing.T) {
	t.Parallel()

	a := NewVulnerability("sql_injection", TypeSQLInjection, Critical, "SQL injection").WithParameter("id")
	b := NewVulnerability("sql_injection", TypeSQLInjection, Critical, "SQL injection").WithParameter("id")
	c := NewVulnerability("sql_injection", TypeSQLInjection, Critical, "SQL injection").WithParameter("q")

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Equal(t, a.Fingerprint(), a.ID)

	// details and payload do not change identity
	d := a.WithDetails("payload: '").WithPayload("'", "error_based")
	assert.Equal(t, a.ID, d.ID)
}

func TestModuleResultAdd(t *testing.T) {
	t.Parallel()

	r := NewModuleResult("security_headers")
	r.Add(NewVulnerability("", TypeMissingSecurityHeader, Medium, "missing HSTS"))
	r.Add(NewWarning("", TypeInsecureCookie, "cookie without HttpOnly"))
	r.Add(NewInfo("", "X-Frame-Options: DENY"))
	r.Add(Finding{Kind: "odd", Description: "kept"})

	require.Len(t, r.Vulnerabilities, 1)
	require.Len(t, r.Warnings, 1)
	require.Len(t, r.Info, 2)
	assert.Equal(t, "security_headers", r.Vulnerabilities[0].Module)
	assert.Equal(t, 4, r.Len())

	all := r.All()
	assert.Equal(t, KindVulnerability, all[0].Kind)
	assert.Equal(t, KindWarning, all[1].Kind)
}

func TestModuleResultAddRejectsMalformedVulnerability(t *testing.T) {
	t.Parallel()

	tests := map[string]Finding{
		"empty description": NewVulnerability("", TypeSQLInjection, High, " "),
		"missing type":      NewVulnerability("", "", High, "error leaked"),
		"unknown severity":  NewVulnerability("", TypeSQLInjection, "urgent", "error leaked"),
	}
	for name, f := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := NewModuleResult("sql_injection")
			r.Add(f.WithParameter("id"))
			assert.Empty(t, r.Vulnerabilities)
			require.Len(t, r.Warnings, 1)
			w := r.Warnings[0]
			assert.Equal(t, TypeModuleFailure, w.Type)
			assert.Equal(t, "sql_injection", w.Module)
			assert.Equal(t, "id", w.Parameter)
			assert.Contains(t, w.Details, ErrInvalidFinding.Error())
			assert.NotEmpty(t, w.ID)
		})
	}
}

func TestModuleResultMergePreservesOrder(t *testing.T) {
	t.Parallel()

	a := NewModuleResult("a")
	a.Add(NewInfo("a", "first"))
	b := NewModuleResult("b")
	b.Add(NewInfo("b", "second"))
	b.Add(NewInfo("b", "third"))

	a.Merge(b)
	require.Len(t, a.Info, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{a.Info[0].Description, a.Info[1].Description, a.Info[2].Description})
}

func TestScanResultFreeze(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewScanResult("https://example.com", "full", start)
	assert.Equal(t, "2024-05-01T12:00:00Z", s.Timestamp)
	assert.NotEqual(t, [16]byte{}, [16]byte(s.ScanID))

	r := NewModuleResult("m")
	r.Add(NewVulnerability("m", TypeReflectedXSS, High, "xss"))
	s.Append(r)
	s.Freeze(start.Add(1500 * time.Millisecond))

	assert.True(t, s.Frozen())
	assert.InDelta(t, 1.5, s.DurationSeconds, 0.001)

	s.Append(r)
	assert.Len(t, s.Vulnerabilities, 1, "frozen result must not grow")
	assert.Equal(t, map[Severity]int{High: 1}, s.CountBySeverity())
}
