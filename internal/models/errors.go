package models

import "errors"

// Sentinel errors for the service layer. Handlers map these onto HTTP
// statuses; everything else is treated as an internal error.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrAlreadyRegistered  = errors.New("already registered for this event")
	ErrAlreadySubscribed  = errors.New("already subscribed to this calendar")
	ErrAtCapacity         = errors.New("event is at full capacity")
	ErrAlreadyCheckedIn   = errors.New("guest is already checked in")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrSlugTaken          = errors.New("slug is already taken")
	ErrBackendUnavailable = errors.New("backend is not configured")
	ErrTimeout            = errors.New("request timed out")
)

// IsRetryable reports whether a caller may safely retry the operation.
// Only transient timeouts qualify; a capacity rejection or conflict is
// definitive and must not be retried automatically.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout)
}
