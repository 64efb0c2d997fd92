package store

import "errors"

// Sentinel errors for the persistence layer. Callers match with errors.Is;
// the store wraps them with operation context.
var (
	// ErrNotFound is returned when an update, delete or lookup targets an
	// id that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrReferential is returned when a write names a parent record that
	// does not exist (e.g. a project referencing an unknown team).
	ErrReferential = errors.New("referenced record does not exist")

	// ErrValidation is returned when a record fails structural validation
	// before any mutation occurs.
	ErrValidation = errors.New("validation failed")

	// ErrPartialImport is returned when a bulk restore fails. The restore
	// runs in a single transaction, so the store is rolled back to its
	// pre-import state.
	ErrPartialImport = errors.New("import failed")

	// ErrStoreUnavailable is returned when the underlying database cannot
	// be opened. Fatal for all persistence-dependent features.
	ErrStoreUnavailable = errors.New("store unavailable")
)
