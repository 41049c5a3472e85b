package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"roombook/internal/booking"
	"roombook/internal/model"
)

// RoomRepo provides CRUD access to the `rooms` table plus the
// exclusive row lock the booking engine relies on. Equipment lists are
// stored as a JSON array in a TEXT column.
type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomCols = `id, name, capacity, floor, equipment, image_url`

func scanRoom(row interface{ Scan(...any) error }) (*model.Room, error) {
	var r model.Room
	var equipment []byte
	var imageURL sql.NullString
	if err := row.Scan(&r.ID, &r.Name, &r.Capacity, &r.Floor, &equipment, &imageURL); err != nil {
		return nil, err
	}
	if len(equipment) > 0 {
		if err := json.Unmarshal(equipment, &r.Equipment); err != nil {
			return nil, err
		}
	}
	if r.Equipment == nil {
		r.Equipment = []string{}
	}
	if imageURL.Valid {
		u := imageURL.String
		r.ImageURL = &u
	}
	return &r, nil
}

// LockTx reads a room with an exclusive row lock (SELECT ... FOR
// UPDATE) that the database holds until the surrounding transaction
// commits or rolls back. Concurrent booking transactions against the
// same room block here; different rooms never contend. A lock wait
// timeout surfaces as booking.ErrLockTimeout.
func (r *RoomRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms WHERE id = ? FOR UPDATE`
	room, err := scanRoom(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrRoomNotFound
		}
		return nil, lockErr(err)
	}
	return room, nil
}

// GetByID reads a room without locking.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms WHERE id = ?`
	room, err := scanRoom(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// List returns all rooms ordered by id.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	return out, rows.Err()
}

// Create inserts a room and fills in its assigned ID.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	equipment, err := json.Marshal(room.Equipment)
	if err != nil {
		return err
	}
	const q = `INSERT INTO rooms (name, capacity, floor, equipment, image_url) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, room.Name, room.Capacity, room.Floor, equipment, room.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	return nil
}

// Update replaces every mutable field of the room (PUT semantics).
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	equipment, err := json.Marshal(room.Equipment)
	if err != nil {
		return err
	}
	const q = `UPDATE rooms SET name = ?, capacity = ?, floor = ?, equipment = ?, image_url = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, room.Name, room.Capacity, room.Floor, equipment, room.ImageURL, room.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		// UPDATE with identical values also reports 0; verify existence.
		if _, err := r.GetByID(ctx, room.ID); err != nil {
			return err
		}
	}
	return err
}

// Delete removes a room. Reservations referencing it are removed by
// the ON DELETE CASCADE foreign key.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrRoomNotFound
	}
	return nil
}
