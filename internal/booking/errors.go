package booking

import (
	"errors"
	"fmt"
)

// Kind classifies a business rejection so that the transport layer can
// map it to a status code without parsing messages.
type Kind string

const (
	KindInvalidRange        Kind = "INVALID_RANGE"
	KindDurationOutOfBounds Kind = "DURATION_OUT_OF_BOUNDS"
	KindTooFarAhead         Kind = "TOO_FAR_AHEAD"
	KindAlreadyEnded        Kind = "ALREADY_ENDED"
	KindSlotConflict        Kind = "SLOT_CONFLICT"
	KindWeeklyLimitExceeded Kind = "WEEKLY_LIMIT_EXCEEDED"
	KindRoomNotFound        Kind = "ROOM_NOT_FOUND"
	KindUserNotFound        Kind = "USER_NOT_FOUND"
	KindReservationNotFound Kind = "RESERVATION_NOT_FOUND"
	KindForbidden           Kind = "FORBIDDEN"
	KindLockTimeout         Kind = "LOCK_TIMEOUT"
)

// Error is a business-rule rejection. Storage faults and other
// unexpected failures are returned as ordinary wrapped errors and
// carry no Kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func reject(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the business kind from err. The second return is
// false for internal faults.
func KindOf(err error) (Kind, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return "", false
}
