package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roombook/internal/booking"
	"roombook/internal/model"
)

// ReservationRepo provides access to the `reservations` table. All
// timestamps are stored in UTC (the DSN uses loc=UTC); overlap queries
// use the half-open test `start_at < ? AND end_at > ?` so back-to-back
// bookings never conflict.
type ReservationRepo struct {
	db *sql.DB
}

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationSelect = `SELECT r.id, r.room_id, rm.name, r.user_id, u.email, r.start_at, r.end_at, r.calendar_event_id, r.created_at
	FROM reservations r
	JOIN rooms rm ON rm.id = r.room_id
	JOIN users u ON u.id = r.user_id`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	var eventID sql.NullString
	if err := row.Scan(&res.ID, &res.RoomID, &res.RoomName, &res.UserID, &res.UserEmail,
		&res.StartAt, &res.EndAt, &eventID, &res.CreatedAt); err != nil {
		return nil, err
	}
	if eventID.Valid {
		id := eventID.String
		res.CalendarEventID = &id
	}
	return &res, nil
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// InsertTx persists a reservation inside the booking transaction and
// fills in its auto-assigned ID. The caller must already hold the room
// lock.
func (r *ReservationRepo) InsertTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (room_id, user_id, start_at, end_at) VALUES (?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.RoomID, res.UserID, res.StartAt.UTC(), res.EndAt.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// ListConflictingTx returns the room's reservations overlapping
// [start, end). It runs inside the transaction that holds the room
// lock, so it sees a consistent snapshot.
func (r *ReservationRepo) ListConflictingTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time) ([]model.Reservation, error) {
	const q = reservationSelect + ` WHERE r.room_id = ? AND r.start_at < ? AND r.end_at > ?`
	rows, err := tx.QueryContext(ctx, q, roomID, end.UTC(), start.UTC())
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// CountByUserBetweenTx counts a user's reservations whose start falls
// within [from, to] inclusive. Backs the weekly quota check.
func (r *ReservationRepo) CountByUserBetweenTx(ctx context.Context, tx *sql.Tx, email string, from, to time.Time) (int64, error) {
	const q = `SELECT COUNT(*) FROM reservations r JOIN users u ON u.id = r.user_id
		WHERE u.email = ? AND r.start_at BETWEEN ? AND ?`
	var n int64
	err := tx.QueryRowContext(ctx, q, email, from.UTC(), to.UTC()).Scan(&n)
	return n, err
}

// GetByID loads one reservation with its room and owner detail.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = reservationSelect + ` WHERE r.id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// ListOverlapping returns every reservation, across all rooms, whose
// window overlaps [start, end). Feeds the availability matrix; runs
// without any locking by design.
func (r *ReservationRepo) ListOverlapping(ctx context.Context, start, end time.Time) ([]model.Reservation, error) {
	const q = reservationSelect + ` WHERE r.start_at < ? AND r.end_at > ?`
	rows, err := r.db.QueryContext(ctx, q, end.UTC(), start.UTC())
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListByUser returns a user's reservations ordered by start ascending.
func (r *ReservationRepo) ListByUser(ctx context.Context, email string) ([]model.Reservation, error) {
	const q = reservationSelect + ` WHERE u.email = ? ORDER BY r.start_at ASC`
	rows, err := r.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListByRoom returns a room's reservations ordered by start ascending.
func (r *ReservationRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Reservation, error) {
	const q = reservationSelect + ` WHERE r.room_id = ? ORDER BY r.start_at ASC`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// Delete removes a reservation row.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrReservationNotFound
	}
	return nil
}

// SetCalendarEventID attaches the external calendar event token after
// the booking has committed. This is the only mutation a reservation
// row ever sees.
func (r *ReservationRepo) SetCalendarEventID(ctx context.Context, id uint64, eventID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE reservations SET calendar_event_id = ? WHERE id = ?`, eventID, id)
	return err
}
