package model

// Room represents a bookable room as stored in the `rooms` table.
// Equipment is persisted as a JSON array in a TEXT column and decoded
// by the repository layer. ImageURL is nil when no photo has been
// attached to the room.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name (e.g. "Sala 301").
//  Capacity  – maximum number of people.
//  Floor     – floor number the room is on.
//  Equipment – ordered equipment tags ("TV", "Proyector", ...).
//  ImageURL  – optional photo reference.
type Room struct {
	ID        uint64   `json:"id"`
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Floor     int      `json:"floor"`
	Equipment []string `json:"equipment"`
	ImageURL  *string  `json:"imageUrl,omitempty"`
}
