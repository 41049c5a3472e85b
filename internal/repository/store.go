package repository

import (
	"context"
	"database/sql"
	"time"

	"roombook/internal/availability"
	"roombook/internal/booking"
	"roombook/internal/model"
)

// Store aggregates the per-table repositories behind the contracts the
// booking engine and the availability calculator consume. It owns the
// transaction plumbing: the engine describes the critical section, the
// store begins, commits and rolls back.
type Store struct {
	db           *sql.DB
	Rooms        *RoomRepo
	Reservations *ReservationRepo
	Users        *UserRepo
}

var (
	_ booking.Store       = (*Store)(nil)
	_ availability.Source = (*Store)(nil)
)

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		Rooms:        NewRoomRepo(db),
		Reservations: NewReservationRepo(db),
		Users:        NewUserRepo(db),
	}
}

// InTx runs fn inside a transaction and commits iff fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&storeTx{tx: tx, s: s}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.Users.GetByEmail(ctx, email)
}

func (s *Store) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.Reservations.GetByID(ctx, id)
}

func (s *Store) ListUserReservations(ctx context.Context, email string) ([]model.Reservation, error) {
	return s.Reservations.ListByUser(ctx, email)
}

func (s *Store) ListRoomReservations(ctx context.Context, roomID uint64) ([]model.Reservation, error) {
	return s.Reservations.ListByRoom(ctx, roomID)
}

func (s *Store) DeleteReservation(ctx context.Context, id uint64) error {
	return s.Reservations.Delete(ctx, id)
}

func (s *Store) SetCalendarEventID(ctx context.Context, id uint64, eventID string) error {
	return s.Reservations.SetCalendarEventID(ctx, id, eventID)
}

func (s *Store) ListRooms(ctx context.Context) ([]model.Room, error) {
	return s.Rooms.List(ctx)
}

func (s *Store) ListReservationsOverlapping(ctx context.Context, start, end time.Time) ([]model.Reservation, error) {
	return s.Reservations.ListOverlapping(ctx, start, end)
}

// storeTx adapts one *sql.Tx to the engine's transactional contract.
type storeTx struct {
	tx *sql.Tx
	s  *Store
}

func (t *storeTx) LockRoom(ctx context.Context, roomID uint64) (*model.Room, error) {
	return t.s.Rooms.LockTx(ctx, t.tx, roomID)
}

func (t *storeTx) ListConflicting(ctx context.Context, roomID uint64, start, end time.Time) ([]model.Reservation, error) {
	return t.s.Reservations.ListConflictingTx(ctx, t.tx, roomID, start, end)
}

func (t *storeTx) CountUserReservationsBetween(ctx context.Context, email string, from, to time.Time) (int64, error) {
	return t.s.Reservations.CountByUserBetweenTx(ctx, t.tx, email, from, to)
}

func (t *storeTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	return t.s.Reservations.InsertTx(ctx, t.tx, r)
}
