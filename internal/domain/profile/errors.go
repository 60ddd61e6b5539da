package profile

import "errors"

// Profile domain errors
var (
	ErrProfileNotFound = errors.New("profile not found in local store")
	ErrUnknownField    = errors.New("unknown profile field")
)
