package payloads

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a payload override file:
//
//	sql:
//	  - category: boolean_based
//	    payloads: ["' OR '1'='1"]
//	xss:
//	  - category: basic
//	    payloads: ["<script>alert(1)</script>"]
//
// A missing section keeps the built-in catalogue.
type File struct {
	SQL []Group `yaml:"sql"`
	XSS []Group `yaml:"xss"`
}

// Set is the pair of catalogues a scan uses.
type Set struct {
	SQL *Catalogue
	XSS *Catalogue
}

// Defaults returns the built-in catalogues.
func Defaults() Set {
	return Set{SQL: DefaultSQL(), XSS: DefaultXSS()}
}

// LoadFile reads a YAML override file. An empty path returns the defaults.
func LoadFile(path string) (Set, error) {
	if path == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("reading payload file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a payload override document.
func Parse(data []byte) (Set, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Set{}, fmt.Errorf("%w: %v", ErrInvalidCatalogue, err)
	}

	set := Defaults()
	if len(f.SQL) > 0 {
		c, err := NewCatalogue("sql", f.SQL)
		if err != nil {
			return Set{}, err
		}
		set.SQL = c
	}
	if len(f.XSS) > 0 {
		c, err := NewCatalogue("xss", f.XSS)
		if err != nil {
			return Set{}, err
		}
		set.XSS = c
	}
	return set, nil
}
