package booking

import (
	"context"

	"roombook/internal/model"
)

// MyReservations partitions a user's reservations relative to "now".
// Every reservation lands in exactly one bucket: Future holds windows
// that have not started, Past holds windows that have ended, and
// Current is the reservation (if any) whose window contains now. When
// a user somehow holds overlapping windows across different rooms, the
// latest-starting one wins the Current slot.
type MyReservations struct {
	Current *model.Reservation  `json:"current"`
	Future  []model.Reservation `json:"future"`
	Past    []model.Reservation `json:"past"`
}

// GetByID returns a reservation's detail regardless of ownership.
func (e *Engine) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := e.store.GetReservation(ctx, id)
	if err != nil {
		return nil, asKind(err, KindReservationNotFound, "reservation not found")
	}
	return res, nil
}

// GetMyReservations classifies the caller's reservations into
// current/future/past. The source list is ordered by start ascending,
// so Future and Past keep that order.
func (e *Engine) GetMyReservations(ctx context.Context, userEmail string) (*MyReservations, error) {
	all, err := e.store.ListUserReservations(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()
	out := &MyReservations{Future: []model.Reservation{}, Past: []model.Reservation{}}
	for i := range all {
		res := all[i]
		switch {
		case res.StartAt.After(now):
			out.Future = append(out.Future, res)
		case res.EndAt.Before(now):
			out.Past = append(out.Past, res)
		default:
			r := res
			out.Current = &r
		}
	}
	return out, nil
}

// GetByRoom lists a room's reservations ordered by start ascending.
// Admin only: the engine re-checks the requester's role at the data
// level rather than trusting the caller.
func (e *Engine) GetByRoom(ctx context.Context, roomID uint64, requesterEmail string) ([]model.Reservation, error) {
	requester, err := e.store.GetUserByEmail(ctx, requesterEmail)
	if err != nil {
		return nil, asKind(err, KindUserNotFound, "user not found: "+requesterEmail)
	}
	switch requester.Role {
	case model.RoleAdmin:
	default:
		return nil, reject(KindForbidden, "room reservation listings are admin only")
	}
	return e.store.ListRoomReservations(ctx, roomID)
}
