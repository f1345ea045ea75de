package payloads

import "errors"

var (
	// ErrUnknownCategory is returned when a category is not in the catalogue.
	ErrUnknownCategory = errors.New("payloads: unknown category")

	// ErrInvalidCatalogue indicates an empty category, an empty payload or a
	// duplicated category name.
	ErrInvalidCatalogue = errors.New("payloads: invalid catalogue")
)
