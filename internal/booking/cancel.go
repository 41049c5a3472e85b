package booking

import (
	"context"
	"log"

	"roombook/internal/model"
)

// Cancel removes a reservation. The requester must be the owner or an
// admin. When the reservation carries an external calendar event, its
// deletion is attempted best-effort first; any failure (including the
// event being gone already) is logged and the local row is deleted
// regardless.
func (e *Engine) Cancel(ctx context.Context, reservationID uint64, requesterEmail string) error {
	res, err := e.store.GetReservation(ctx, reservationID)
	if err != nil {
		return asKind(err, KindReservationNotFound, "reservation not found")
	}
	requester, err := e.store.GetUserByEmail(ctx, requesterEmail)
	if err != nil {
		return asKind(err, KindUserNotFound, "user not found: "+requesterEmail)
	}

	isOwner := res.UserEmail == requester.Email
	allowed := isOwner
	switch requester.Role {
	case model.RoleAdmin:
		allowed = true
	case model.RoleStudent:
		// students may only cancel their own reservations
	}
	if !allowed {
		log.Printf("booking: %s denied cancelling reservation %d owned by %s", requesterEmail, reservationID, res.UserEmail)
		return reject(KindForbidden, "only the owner or an admin can cancel this reservation")
	}

	if res.CalendarEventID != nil {
		e.deleteCalendarEvent(ctx, res.UserEmail, *res.CalendarEventID)
	}

	if err := e.store.DeleteReservation(ctx, reservationID); err != nil {
		return asKind(err, KindReservationNotFound, "reservation not found")
	}
	log.Printf("booking: reservation %d cancelled by %s", reservationID, requesterEmail)
	return nil
}

// deleteCalendarEvent removes the external event using the reservation
// owner's credentials. Best-effort: errors are logged and swallowed so
// a broken calendar link can never block a cancellation.
func (e *Engine) deleteCalendarEvent(ctx context.Context, ownerEmail, eventID string) {
	if e.calendar == nil || e.creds == nil {
		return
	}
	owner, err := e.store.GetUserByEmail(ctx, ownerEmail)
	if err != nil {
		log.Printf("booking: cannot load owner %s for calendar cleanup: %v", ownerEmail, err)
		return
	}
	cred, err := e.creds.GetCredential(ctx, owner)
	if err != nil {
		log.Printf("booking: could not obtain calendar credential for %s: %v", ownerEmail, err)
		return
	}
	if err := e.calendar.DeleteEvent(ctx, eventID, cred.AccessToken); err != nil {
		log.Printf("booking: calendar event %s deletion failed, deleting reservation anyway: %v", eventID, err)
	}
}
