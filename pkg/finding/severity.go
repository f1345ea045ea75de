package finding

// Severity represents the severity level of a vulnerability finding.
// All values are lowercase strings.
type Severity string

const (
	// Critical represents likely backend compromise (SQL injection).
	Critical Severity = "critical"

	// High represents significant impact requiring prompt fix (reflected XSS).
	High Severity = "high"

	// Medium represents moderate impact (missing security headers, weak TLS).
	Medium Severity = "medium"

	// Low represents limited impact.
	Low Severity = "low"
)

// IsValid reports whether s is a recognized severity level.
func (s Severity) IsValid() bool {
	switch s {
	case Critical, High, Medium, Low:
		return true
	}
	return false
}

// Score returns a numeric score for sorting and comparison.
// Critical=4, High=3, Medium=2, Low=1, Unknown=0.
func (s Severity) Score() int {
	switch s {
	case Critical:
		return 4
	case High:
		return 3
	case Medium:
		return 2
	case Low:
		return 1
	default:
		return 0
	}
}

// String returns the severity as a string.
func (s Severity) String() string {
	return string(s)
}
