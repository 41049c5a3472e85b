// Package booking implements the reservation scheduling core: the
// validation pipeline, the pessimistic per-room serialization of
// bookings, the weekly fairness quota and the cancellation rules.
package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"roombook/internal/clock"
	"roombook/internal/model"
)

// Rules are the configurable booking-window bounds. Durations are
// inclusive on both ends; MaxAdvance is measured in calendar months.
type Rules struct {
	MinDuration      time.Duration
	MaxDuration      time.Duration
	MaxAdvanceMonths int
}

// DefaultRules matches the product defaults: 15–60 minute bookings, at
// most 3 months ahead.
func DefaultRules() Rules {
	return Rules{
		MinDuration:      15 * time.Minute,
		MaxDuration:      60 * time.Minute,
		MaxAdvanceMonths: 3,
	}
}

// Engine validates and persists reservations. It is safe for
// concurrent use; all serialization happens through the store's room
// lock, never through engine state.
type Engine struct {
	store    Store
	clock    clock.Clock
	rules    Rules
	calendar Calendar
	creds    CredentialSource
}

// NewEngine wires an engine. calendar and creds may be nil, in which
// case calendar sync is disabled and bookings proceed without it.
func NewEngine(store Store, clk clock.Clock, rules Rules, cal Calendar, creds CredentialSource) *Engine {
	return &Engine{store: store, clock: clk, rules: rules, calendar: cal, creds: creds}
}

// CreateRequest carries a booking request into the engine. Start and
// End must both be set; WantsCalendarSync asks for a best-effort event
// in the owner's external calendar after the booking commits.
type CreateRequest struct {
	RoomID            uint64
	Start             time.Time
	End               time.Time
	WantsCalendarSync bool
}

// CreateReservation books a room for the requesting user. Validations
// run in a fixed order and the first violation wins; the overlap check
// and the weekly quota are evaluated only while the room's exclusive
// row lock is held, so two concurrent requests for the same room are
// strictly serialized and at most one can commit an overlapping
// window.
func (e *Engine) CreateReservation(ctx context.Context, requesterEmail string, req CreateRequest) (uint64, error) {
	now := e.clock.Now()
	if err := e.validateWindow(req.Start, req.End, now); err != nil {
		return 0, err
	}

	user, err := e.store.GetUserByEmail(ctx, requesterEmail)
	if err != nil {
		return 0, asKind(err, KindUserNotFound, "user not found: "+requesterEmail)
	}

	res := &model.Reservation{RoomID: req.RoomID, UserID: user.ID, UserEmail: user.Email, StartAt: req.Start, EndAt: req.End}
	var room *model.Room
	err = e.store.InTx(ctx, func(tx Tx) error {
		room, err = tx.LockRoom(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if err := e.checkConflicts(ctx, tx, req.RoomID, req.Start, req.End); err != nil {
			return err
		}
		// ADMIN bypasses the weekly quota entirely.
		switch user.Role {
		case model.RoleAdmin:
		default:
			if err := e.checkWeeklyLimit(ctx, tx, user.Email, req.Start); err != nil {
				return err
			}
		}
		return tx.InsertReservation(ctx, res)
	})
	if err != nil {
		return 0, translateStoreErr(err, req.RoomID)
	}
	res.RoomName = room.Name
	log.Printf("booking: reservation %d created for %s (room %d, %s–%s)",
		res.ID, user.Email, room.ID, req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339))

	// The room lock is already released here: calendar sync must never
	// hold up, or be able to roll back, a committed booking.
	if req.WantsCalendarSync {
		e.syncCalendar(ctx, user, room, res)
	}
	return res.ID, nil
}

// CreateReservationOnBehalf books a room owned by beneficiaryEmail.
// The beneficiary must exist; the requester is not resolved at all.
// The weekly quota is skipped unconditionally and the booking is never
// synced to an external calendar. Restricting this operation to admins
// is the transport layer's job.
func (e *Engine) CreateReservationOnBehalf(ctx context.Context, requesterEmail, beneficiaryEmail string, req CreateRequest) (uint64, error) {
	now := e.clock.Now()
	if err := e.validateWindow(req.Start, req.End, now); err != nil {
		return 0, err
	}

	beneficiary, err := e.store.GetUserByEmail(ctx, beneficiaryEmail)
	if err != nil {
		return 0, asKind(err, KindUserNotFound, "user not found: "+beneficiaryEmail)
	}

	res := &model.Reservation{RoomID: req.RoomID, UserID: beneficiary.ID, UserEmail: beneficiary.Email, StartAt: req.Start, EndAt: req.End}
	err = e.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.LockRoom(ctx, req.RoomID); err != nil {
			return err
		}
		if err := e.checkConflicts(ctx, tx, req.RoomID, req.Start, req.End); err != nil {
			return err
		}
		return tx.InsertReservation(ctx, res)
	})
	if err != nil {
		return 0, translateStoreErr(err, req.RoomID)
	}
	log.Printf("booking: reservation %d created by %s on behalf of %s", res.ID, requesterEmail, beneficiary.Email)
	return res.ID, nil
}

// validateWindow applies the pure booking-window rules in order:
// presence, start<end, not already ended, duration bounds, advance
// bound. A window that has started but not ended is still bookable.
func (e *Engine) validateWindow(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return reject(KindInvalidRange, "start and end are required")
	}
	if !start.Before(end) {
		return reject(KindInvalidRange, "start must be before end")
	}
	if end.Before(now) {
		return reject(KindAlreadyEnded, "the requested window has already ended")
	}
	if d := end.Sub(start); d < e.rules.MinDuration || d > e.rules.MaxDuration {
		return reject(KindDurationOutOfBounds, "duration must be between %s and %s", e.rules.MinDuration, e.rules.MaxDuration)
	}
	if start.After(now.AddDate(0, e.rules.MaxAdvanceMonths, 0)) {
		return reject(KindTooFarAhead, "bookings cannot start more than %d months ahead", e.rules.MaxAdvanceMonths)
	}
	return nil
}

func (e *Engine) checkConflicts(ctx context.Context, tx Tx, roomID uint64, start, end time.Time) error {
	conflicts, err := tx.ListConflicting(ctx, roomID, start, end)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		log.Printf("booking: conflict detected for room %d between %s and %s", roomID, start.Format(time.RFC3339), end.Format(time.RFC3339))
		return reject(KindSlotConflict, "the room is already booked for that window")
	}
	return nil
}

func (e *Engine) checkWeeklyLimit(ctx context.Context, tx Tx, email string, start time.Time) error {
	from, to := WorkWeek(start, e.clock.Zone())
	n, err := tx.CountUserReservationsBetween(ctx, email, from, to)
	if err != nil {
		return err
	}
	if n >= 1 {
		log.Printf("booking: %s already holds a reservation in the work week of %s", email, from.Format("2006-01-02"))
		return reject(KindWeeklyLimitExceeded, "only one reservation per work week (Mon-Fri) is allowed")
	}
	return nil
}

// WorkWeek returns the Monday 00:00:00 through Friday
// 23:59:59.999999999 window, in loc, that bounds the weekly quota for
// a reservation starting at t. Monday is previous-or-same and Friday
// next-or-same, so a Saturday start spans into the following week's
// Friday.
func WorkWeek(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	sinceMonday := (int(t.Weekday()) + 6) % 7
	untilFriday := (int(time.Friday) - int(t.Weekday()) + 7) % 7
	monday := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -sinceMonday)
	friday := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, loc).AddDate(0, 0, untilFriday)
	return monday, friday
}

// syncCalendar creates the external calendar event for a committed
// reservation and stores the resulting event token. Every failure is
// logged and deliberately discarded: calendar sync is a convenience,
// never a correctness requirement.
func (e *Engine) syncCalendar(ctx context.Context, user *model.User, room *model.Room, res *model.Reservation) {
	if e.calendar == nil || e.creds == nil {
		log.Printf("booking: calendar sync disabled, skipping reservation %d", res.ID)
		return
	}
	cred, err := e.creds.GetCredential(ctx, user)
	if err != nil {
		log.Printf("booking: could not obtain calendar credential for %s: %v", user.Email, err)
		return
	}
	eventID, err := e.calendar.CreateEvent(ctx, CalendarEvent{
		Summary:  "Reserva de sala: " + room.Name,
		Location: room.Name,
		Start:    res.StartAt,
		End:      res.EndAt,
	}, cred.AccessToken)
	if err != nil {
		log.Printf("booking: calendar event creation failed for reservation %d: %v", res.ID, err)
		return
	}
	if err := e.store.SetCalendarEventID(ctx, res.ID, eventID); err != nil {
		log.Printf("booking: could not store calendar event id for reservation %d: %v", res.ID, err)
		return
	}
	res.CalendarEventID = &eventID
	log.Printf("booking: reservation %d synced to calendar event %s", res.ID, eventID)
}

// asKind converts a store sentinel into a business rejection, leaving
// internal faults untouched.
func asKind(err error, kind Kind, msg string) error {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrReservationNotFound):
		return &Error{Kind: kind, Message: msg}
	default:
		return err
	}
}

func translateStoreErr(err error, roomID uint64) error {
	if _, ok := KindOf(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return reject(KindRoomNotFound, "room not found: %d", roomID)
	case errors.Is(err, ErrLockTimeout):
		return reject(KindLockTimeout, "timed out waiting for the room lock")
	default:
		return err
	}
}
