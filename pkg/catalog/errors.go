package catalog

import "errors"

var (
	// ErrCatalogError wraps any persistence-layer failure. Catalog errors
	// are always fatal to the operation in progress.
	ErrCatalogError = errors.New("catalog: operation failed")

	// ErrUnknownGeneration is returned when a requested profile generation
	// number has no matching row.
	ErrUnknownGeneration = errors.New("catalog: unknown generation")
)
