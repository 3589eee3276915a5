package domain

import "errors"

// Sentinel errors for registration operations.
var (
	ErrEventNotFound       = errors.New("event not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInscriptionNotFound = errors.New("inscription not found")

	ErrEventClosed           = errors.New("event is not published")
	ErrEventExpired          = errors.New("event has already started")
	ErrRegistrationClosed    = errors.New("registration is closed for this event")
	ErrDuplicateRegistration = errors.New("user already registered for this event")
	ErrAlreadyCancelled      = errors.New("inscription already cancelled")
	ErrNotOwner              = errors.New("inscription belongs to another user")

	// ErrInvalidTransition is returned when an inscription is asked to move
	// between two states the lifecycle does not connect.
	ErrInvalidTransition = errors.New("invalid inscription status transition")

	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

// IsNotFound reports whether err means the requested event, user or inscription is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrInscriptionNotFound)
}

// IsConflict reports whether err is a business-rule rejection that retrying will not fix.
func IsConflict(err error) bool {
	return errors.Is(err, ErrEventClosed) ||
		errors.Is(err, ErrEventExpired) ||
		errors.Is(err, ErrRegistrationClosed) ||
		errors.Is(err, ErrDuplicateRegistration) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrNotOwner)
}
