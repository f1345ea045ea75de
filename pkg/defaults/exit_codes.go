package defaults

// Exit codes for the CLI.
const (
	ExitSuccess       = 0 // Scan completed, no vulnerabilities
	ExitFindings      = 1 // Scan completed with at least one vulnerability
	ExitUserError     = 2 // Invalid arguments, configuration, or target URL
	ExitInternalError = 4 // Unexpected internal error
)
