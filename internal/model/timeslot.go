package model

// TimeSlot is one block of the static availability grid. The ID is the
// `HH:MM-HH:MM` string itself; the fixed zero-padded format makes slot
// IDs sort correctly as plain text, which the frontend relies on.
// Start and End are times of day in `HH:MM` form, interpreted in the
// configured application zone for a concrete date.
type TimeSlot struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilityCell marks a single (room, slot) pair as free or taken
// for the requested day. Cells are derived values and never persisted.
type AvailabilityCell struct {
	RoomID    string `json:"roomId"`
	SlotID    string `json:"slotId"`
	Available bool   `json:"available"`
}
