package booking

import (
	"context"
	"errors"
	"time"

	"roombook/internal/model"
)

// Sentinel errors a Store implementation must return so the engine can
// translate them into business kinds. Anything else is treated as an
// internal fault and propagated opaquely.
var (
	ErrRoomNotFound        = errors.New("booking: room not found")
	ErrUserNotFound        = errors.New("booking: user not found")
	ErrReservationNotFound = errors.New("booking: reservation not found")
	ErrLockTimeout         = errors.New("booking: room lock wait timed out")
)

// Store is the persistence contract of the booking engine. The SQL
// implementation lives in internal/repository; tests use an in-memory
// fake that preserves the per-room locking discipline.
type Store interface {
	// InTx runs fn inside a transaction. When fn returns an error the
	// transaction is rolled back and the error returned as-is.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetReservation(ctx context.Context, id uint64) (*model.Reservation, error)

	// ListUserReservations returns the user's reservations ordered by
	// start ascending.
	ListUserReservations(ctx context.Context, email string) ([]model.Reservation, error)
	// ListRoomReservations returns a room's reservations ordered by
	// start ascending.
	ListRoomReservations(ctx context.Context, roomID uint64) ([]model.Reservation, error)

	DeleteReservation(ctx context.Context, id uint64) error
	// SetCalendarEventID attaches the external calendar event token to
	// an already-committed reservation.
	SetCalendarEventID(ctx context.Context, id uint64, eventID string) error
}

// Tx is the transactional slice of the store. LockRoom must acquire an
// exclusive lock on the room row that is held until the transaction
// ends, so that conflicting bookings for the same room are strictly
// serialized. Bookings against different rooms never block each other.
type Tx interface {
	LockRoom(ctx context.Context, roomID uint64) (*model.Room, error)
	// ListConflicting returns reservations for the room whose window
	// overlaps [start, end) half-open.
	ListConflicting(ctx context.Context, roomID uint64, start, end time.Time) ([]model.Reservation, error)
	// CountUserReservationsBetween counts the user's reservations whose
	// start falls within [from, to] inclusive.
	CountUserReservationsBetween(ctx context.Context, email string, from, to time.Time) (int64, error)
	// InsertReservation persists r and fills in its assigned ID.
	InsertReservation(ctx context.Context, r *model.Reservation) error
}

// CalendarEvent is what the engine hands to the external calendar
// collaborator for a synced booking.
type CalendarEvent struct {
	Summary  string
	Location string
	Start    time.Time
	End      time.Time
}

// Calendar is the external calendar collaborator. Every call is
// best-effort from the engine's point of view: failures are logged and
// swallowed, never surfaced to the booking or cancellation caller.
type Calendar interface {
	CreateEvent(ctx context.Context, ev CalendarEvent, accessToken string) (string, error)
	DeleteEvent(ctx context.Context, eventID, accessToken string) error
}

// Credential is an access token usable against the calendar API.
type Credential struct {
	AccessToken string
}

// CredentialSource resolves a valid calendar credential for a user,
// refreshing expired tokens as needed. Failures follow the same
// best-effort policy as Calendar calls.
type CredentialSource interface {
	GetCredential(ctx context.Context, user *model.User) (Credential, error)
}
