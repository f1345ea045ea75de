package finding

import "errors"

// ErrInvalidFinding is returned by Finding.Validate when a vulnerability
// finding is missing its type, severity or description.
var ErrInvalidFinding = errors.New("finding: invalid finding")
