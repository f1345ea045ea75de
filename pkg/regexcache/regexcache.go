// Package regexcache keeps compiled regular expressions process-wide so
// detectors can look patterns up by source text without recompiling.
package regexcache

import (
	"regexp"
	"sync"
)

var cache sync.Map // pattern -> *regexp.Regexp

// Get returns the compiled form of pattern, compiling it on first use.
func Get(pattern string) (*regexp.Regexp, error) {
	if cached, ok := cache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	actual, _ := cache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}

// MustGet is like Get but panics on an invalid pattern. Use it only for
// patterns that are compile-time constants.
func MustGet(pattern string) *regexp.Regexp {
	re, err := Get(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// MustGetFold returns a case-insensitive version of pattern.
func MustGetFold(pattern string) *regexp.Regexp {
	return MustGet("(?i)" + pattern)
}

// Size returns the number of cached expressions.
func Size() int {
	n := 0
	cache.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
