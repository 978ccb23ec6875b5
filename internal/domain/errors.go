package domain

import "errors"

// Kind classifies a rejected action. Adapters use it to pick a reply tone;
// the precise reason is carried by the error code.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindCapacity      Kind = "capacity_exceeded"
	KindConflict      Kind = "conflict"
)

// Error is a precondition failure. Returning one guarantees that no state was mutated.
type Error struct {
	Kind Kind
	Code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, msg: msg}
}

// Not found.
var (
	ErrEventNotFound       = newError(KindNotFound, "event_not_found", "event not found")
	ErrParticipantNotFound = newError(KindNotFound, "participant_not_found", "participant not found")
)

// Conflicts.
var (
	ErrEventExists      = newError(KindConflict, "event_exists", "an event with this title already exists")
	ErrAlreadyAttending = newError(KindConflict, "already_attending", "already participating")
	ErrNotAttending     = newError(KindConflict, "not_attending", "not participating in this event")
	ErrHostCannotLeave  = newError(KindConflict, "host_cannot_leave", "the host cannot leave the event")
	ErrAlreadyCompleted = newError(KindConflict, "already_completed", "event already completed")
	ErrAlreadyHost      = newError(KindConflict, "already_host", "this member is already the host")
)

// Capacity.
var (
	ErrEventFull = newError(KindCapacity, "event_full", "this event is full")
)

// Authorization.
var (
	ErrNotHostOrAdmin = newError(KindAuthorization, "not_host_or_admin", "only the event host or an admin can do this")
	ErrNotAdmin       = newError(KindAuthorization, "not_admin", "only an admin can do this")
)

// Validation.
var (
	ErrInvalidTitle       = newError(KindValidation, "invalid_title", "title is required")
	ErrTitleTooLong       = newError(KindValidation, "title_too_long", "title is too long")
	ErrInvalidDate        = newError(KindValidation, "invalid_date", "invalid date, expected DD-MM-YYYY")
	ErrInvalidTime        = newError(KindValidation, "invalid_time", "invalid time, expected HH:MM (24h)")
	ErrDescriptionShort   = newError(KindValidation, "description_too_short", "description too short")
	ErrNegativeCapacity   = newError(KindValidation, "negative_capacity", "max attendees cannot be negative")
	ErrInvalidCapacity    = newError(KindValidation, "invalid_capacity", "max attendees must be a number")
	ErrUnknownField       = newError(KindValidation, "unknown_field", "unknown field")
	ErrInvalidDescription = newError(KindValidation, "invalid_description", "description is required")
)

// KindOf returns the kind of the first *Error in err's chain, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// Code returns the stable code of the first *Error in err's chain, or "".
func Code(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
