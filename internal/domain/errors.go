// internal/domain/errors.go
package domain

import "errors"

// Errors raised by the action layer before anything reaches the ledger.
var (
	ErrUnauthenticated  = errors.New("missing identity")
	ErrForbidden        = errors.New("role not permitted")
	ErrUnknownEntity    = errors.New("unknown master data reference")
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("action not valid in current state")
	ErrCuringIncomplete = errors.New("curing not complete")
)
