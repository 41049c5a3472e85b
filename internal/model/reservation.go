package model

import "time"

// Reservation records a booking of one room by one user for the
// half-open window [StartAt, EndAt). The row is never mutated after
// creation except to attach CalendarEventID once the external calendar
// sync has succeeded.
//
// RoomName and UserEmail are denormalized by the repository joins so
// that callers do not have to issue follow-up lookups; they are not
// columns of the reservations table itself.
type Reservation struct {
	ID              uint64    `json:"id"`
	RoomID          uint64    `json:"roomId"`
	RoomName        string    `json:"roomName,omitempty"`
	UserID          uint64    `json:"-"`
	UserEmail       string    `json:"userEmail"`
	StartAt         time.Time `json:"startAt"`
	EndAt           time.Time `json:"endAt"`
	CalendarEventID *string   `json:"-"`
	CreatedAt       time.Time `json:"-"`
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant. Back-to-back intervals do not
// overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
