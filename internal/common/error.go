// Package common defines shared constants and sentinel errors used across
// the vaultbox core. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Validation / configuration errors, raised before any I/O.
	ErrValidation = errors.New("validation error")
	ErrConfig     = errors.New("configuration error")

	// Lookup errors. ErrNotFound also covers records owned by someone
	// else, so existence is never leaked to the caller.
	ErrNotFound = errors.New("not found")
	ErrExpired  = errors.New("expired")

	// Share access errors.
	ErrForbidden           = errors.New("forbidden")
	ErrAccessLimitExceeded = errors.New("access limit exceeded")

	// Cipher errors (truncated or tampered blob).
	ErrCorruptData = errors.New("corrupt data")

	// Object-store errors. Sub-categories below wrap ErrUpstreamStorage
	// so a single errors.Is check covers all of them.
	ErrUpstreamStorage = errors.New("upstream storage error")
)

// Storage sub-categories. These are the only storage diagnostics surfaced
// to callers; backend-specific error strings stay inside the adapter.
var (
	ErrStorageAccessDenied = fmt.Errorf("%w: access denied", ErrUpstreamStorage)
	ErrStorageConfig       = fmt.Errorf("%w: configuration", ErrUpstreamStorage)
	ErrStorageNetwork      = fmt.Errorf("%w: network", ErrUpstreamStorage)
	ErrStorageTimeout      = fmt.Errorf("%w: timeout", ErrUpstreamStorage)
)
