package settings

import "errors"

// Settings domain errors
var (
	ErrSettingNotFound = errors.New("setting not found")
	ErrPinNotSet       = errors.New("device pin has not been set")
	ErrPinMismatch     = errors.New("incorrect pin")
)
