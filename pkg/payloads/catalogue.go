// Package payloads holds the injection payload catalogues. A catalogue is
// built once at startup and is read-only afterwards, so detectors can share
// it across concurrent scans.
package payloads

import (
	"fmt"
	"slices"
	"strings"
)

// Payload is one injection string and the category it belongs to.
type Payload struct {
	Value    string
	Category string
}

// Group is the serialized form of one category.
type Group struct {
	Category string   `yaml:"category"`
	Payloads []string `yaml:"payloads"`
}

// Catalogue is an ordered, immutable set of payload categories.
type Catalogue struct {
	name       string
	order      []string
	byCategory map[string][]Payload
}

// NewCatalogue validates groups and builds a catalogue preserving their order.
func NewCatalogue(name string, groups []Group) (*Catalogue, error) {
	c := &Catalogue{
		name:       name,
		byCategory: make(map[string][]Payload, len(groups)),
	}
	for _, g := range groups {
		cat := strings.TrimSpace(g.Category)
		if cat == "" {
			return nil, fmt.Errorf("%w: %s: category without a name", ErrInvalidCatalogue, name)
		}
		if _, dup := c.byCategory[cat]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate category %q", ErrInvalidCatalogue, name, cat)
		}
		if len(g.Payloads) == 0 {
			return nil, fmt.Errorf("%w: %s: category %q has no payloads", ErrInvalidCatalogue, name, cat)
		}
		list := make([]Payload, 0, len(g.Payloads))
		for _, v := range g.Payloads {
			if v == "" {
				return nil, fmt.Errorf("%w: %s: empty payload in %q", ErrInvalidCatalogue, name, cat)
			}
			list = append(list, Payload{Value: v, Category: cat})
		}
		c.order = append(c.order, cat)
		c.byCategory[cat] = list
	}
	if len(c.order) == 0 {
		return nil, fmt.Errorf("%w: %s: no categories", ErrInvalidCatalogue, name)
	}
	return c, nil
}

func mustCatalogue(name string, groups []Group) *Catalogue {
	c, err := NewCatalogue(name, groups)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the catalogue name ("sql", "xss").
func (c *Catalogue) Name() string { return c.name }

// Categories returns the category names in catalogue order.
func (c *Catalogue) Categories() []string {
	return slices.Clone(c.order)
}

// Category returns a copy of the payloads in one category.
func (c *Catalogue) Category(name string) ([]Payload, error) {
	list, ok := c.byCategory[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownCategory, c.name, name)
	}
	return slices.Clone(list), nil
}

// All returns every payload in catalogue order.
func (c *Catalogue) All() []Payload {
	var out []Payload
	for _, cat := range c.order {
		out = append(out, c.byCategory[cat]...)
	}
	return out
}

// Count returns the total number of payloads.
func (c *Catalogue) Count() int {
	n := 0
	for _, list := range c.byCategory {
		n += len(list)
	}
	return n
}

// PerCategory returns up to n payloads from each listed category, categories
// in the order given. With no categories, catalogue order is used. n <= 0
// takes whole categories.
func (c *Catalogue) PerCategory(n int, categories ...string) ([]Payload, error) {
	if len(categories) == 0 {
		categories = c.order
	}
	var out []Payload
	for _, cat := range categories {
		list, ok := c.byCategory[cat]
		if !ok {
			return nil, fmt.Errorf("%w: %s/%s", ErrUnknownCategory, c.name, cat)
		}
		if n > 0 && len(list) > n {
			list = list[:n]
		}
		out = append(out, list...)
	}
	return out, nil
}

// First returns the first n payloads in catalogue order; n <= 0 returns all.
func (c *Catalogue) First(n int) []Payload {
	all := c.All()
	if n > 0 && len(all) > n {
		return all[:n]
	}
	return all
}
