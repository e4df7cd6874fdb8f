package memory

import "errors"

// Sentinel errors for memory operations.
var (
	// ErrConceptNotFound is returned when an operation names an unknown
	// concept id. Query paths recover by returning neutral results instead
	// of surfacing this error.
	ErrConceptNotFound = errors.New("concept not found")

	// ErrConceptExists is returned when adopting a concept under an id
	// that is already taken.
	ErrConceptExists = errors.New("concept already exists")

	// ErrMalformedComposition is returned for a composition with fewer
	// than two constituents.
	ErrMalformedComposition = errors.New("composition requires at least two constituents")

	// ErrCircularConstituents is returned when a composition would make a
	// concept its own direct or transitive constituent.
	ErrCircularConstituents = errors.New("circular constituent reference")

	// ErrEmptyContent is returned when learning or adopting empty content.
	ErrEmptyContent = errors.New("content cannot be empty")
)
