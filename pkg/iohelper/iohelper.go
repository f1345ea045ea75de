// Package iohelper reads HTTP response bodies with a size ceiling so a
// hostile target cannot exhaust memory.
package iohelper

import (
	"io"
)

const (
	// DefaultMaxBodySize bounds probe bodies (1MB).
	DefaultMaxBodySize int64 = 1024 * 1024

	// drainLimit caps how much is discarded before closing a body.
	drainLimit int64 = 64 * 1024
)

// ReadBody reads at most maxSize bytes from r. A nil reader yields an empty
// slice.
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadBodyString reads a body with the default limit and returns it as text.
// Whatever was read before an error is still returned.
func ReadBodyString(r io.Reader) (string, error) {
	data, err := ReadBody(r, DefaultMaxBodySize)
	return string(data), err
}

// DrainAndClose discards the remainder of r and closes it so the underlying
// connection can be reused. It always returns nil for use in defer.
func DrainAndClose(r io.Reader) error {
	if r == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(r, drainLimit))
	if rc, ok := r.(io.ReadCloser); ok {
		_ = rc.Close()
	}
	return nil
}
