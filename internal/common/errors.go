package common

import "errors"

var (
	// ErrValidation marks input rejected locally, before any network call.
	ErrValidation = errors.New("validation error")

	// ErrNotLoggedIn is returned by operations that need a current identity.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrSessionExpired is reported when the stored session can no longer be used.
	ErrSessionExpired = errors.New("session expired")

	// ErrBusy is returned when an affordance is already running its own request.
	ErrBusy = errors.New("operation already in progress")
)
