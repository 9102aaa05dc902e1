// File: internal/domain/errors.go
package domain

import "errors"

// Sentinel errors shared across ports and the engine. Repositories and the
// remote client return these; the engine classifies failures with
// errors.Is per the taxonomy in spec.md §7.
var (
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrForbidden          = errors.New("forbidden: access lost")
	ErrAccessLost         = errors.New("chat no longer accessible")
	ErrTransport          = errors.New("remote transport error")
	ErrIntegrityViolation = errors.New("data-model integrity violation")
)
