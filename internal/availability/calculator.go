package availability

import (
	"context"
	"log"
	"strconv"
	"time"

	"roombook/internal/clock"
	"roombook/internal/model"
)

// Source is the read-only slice of the store the calculator needs. No
// method takes a lock; a booking committed while the matrix is being
// computed may or may not be reflected.
type Source interface {
	ListRooms(ctx context.Context) ([]model.Room, error)
	// ListReservationsOverlapping returns every reservation, across all
	// rooms, whose window overlaps [start, end) half-open.
	ListReservationsOverlapping(ctx context.Context, start, end time.Time) ([]model.Reservation, error)
}

// Daily is the full availability picture for one day: every room,
// every catalog slot, and one cell per (room, slot) pair. The matrix
// always has exactly len(Rooms) × len(Slots) entries.
type Daily struct {
	Rooms        []model.Room             `json:"rooms"`
	Slots        []model.TimeSlot         `json:"slots"`
	Availability []model.AvailabilityCell `json:"availability"`
}

// Calculator computes daily availability matrices.
type Calculator struct {
	src   Source
	clock clock.Clock
}

func NewCalculator(src Source, clk clock.Clock) *Calculator {
	return &Calculator{src: src, clock: clk}
}

// Daily computes the availability matrix for the calendar day
// containing date, midnight to midnight in the configured zone. A slot
// is unavailable iff any reservation of that room overlaps the slot's
// absolute window, using the same half-open overlap test as the
// booking engine. A reservation strictly inside the gap between two
// slots occupies neither.
func (c *Calculator) Daily(ctx context.Context, date time.Time) (*Daily, error) {
	loc := c.clock.Zone()
	rooms, err := c.src.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	slots := Slots()

	y, m, d := date.In(loc).Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	reservations, err := c.src.ListReservationsOverlapping(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	byRoom := make(map[uint64][]model.Reservation, len(rooms))
	for _, r := range reservations {
		byRoom[r.RoomID] = append(byRoom[r.RoomID], r)
	}
	log.Printf("availability: %d rooms, %d reservations on %s", len(rooms), len(reservations), dayStart.Format("2006-01-02"))

	cells := make([]model.AvailabilityCell, 0, len(rooms)*len(slots))
	for _, room := range rooms {
		roomRes := byRoom[room.ID]
		for _, slot := range slots {
			slotStart, slotEnd := slotWindow(slot, dayStart, loc)
			occupied := false
			for _, r := range roomRes {
				if model.Overlaps(r.StartAt, r.EndAt, slotStart, slotEnd) {
					occupied = true
					break
				}
			}
			cells = append(cells, model.AvailabilityCell{
				RoomID:    strconv.FormatUint(room.ID, 10),
				SlotID:    slot.ID,
				Available: !occupied,
			})
		}
	}
	return &Daily{Rooms: rooms, Slots: slots, Availability: cells}, nil
}
