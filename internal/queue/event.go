// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationBookedEvent is published when a reservation commits. It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.
type ReservationBookedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	UserEmail     string `json:"user_email"`
	RoomID        uint64 `json:"room_id"`
	RoomName      string `json:"room_name"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	BookedAt      string `json:"booked_at"`
}
