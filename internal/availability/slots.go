// Package availability projects a day's reservations onto the static
// grid of class-period blocks and reports which (room, slot) pairs are
// still free. The read path is deliberately lock-free: availability is
// advisory, the authoritative conflict check happens inside the locked
// booking transaction.
package availability

import (
	"fmt"
	"time"

	"roombook/internal/model"
)

// slotDef is one catalog entry before ID/label derivation. Times are
// `HH:MM` in the application zone.
type slotDef struct {
	start, end, period string
}

// The eleven intranet class blocks, in grid order. The 13:10 block is
// the lunch break and stays bookable like any other slot.
var catalog = []slotDef{
	{"08:30", "09:30", "1°"},
	{"09:40", "10:40", "2°"},
	{"10:50", "11:50", "3°"},
	{"12:00", "13:00", "4°"},
	{"13:10", "14:10", "Alm."},
	{"14:30", "15:30", "5°"},
	{"15:40", "16:40", "6°"},
	{"16:50", "17:50", "7°"},
	{"18:00", "19:00", "8°"},
	{"19:10", "20:10", "9°"},
	{"20:20", "21:20", "10°"},
}

// Slots returns the static slot catalog. The slot ID is the
// `HH:MM-HH:MM` string, which sorts correctly as text thanks to the
// zero padding; callers key the availability matrix against it.
func Slots() []model.TimeSlot {
	out := make([]model.TimeSlot, 0, len(catalog))
	for _, d := range catalog {
		out = append(out, model.TimeSlot{
			ID:    fmt.Sprintf("%s-%s", d.start, d.end),
			Label: fmt.Sprintf("%s (%s-%s)", d.period, d.start, d.end),
			Start: d.start,
			End:   d.end,
		})
	}
	return out
}

// slotWindow resolves a slot's absolute [start, end) window for a
// concrete date in loc. The catalog strings are fixed and valid, so a
// parse failure is a programming error.
func slotWindow(slot model.TimeSlot, date time.Time, loc *time.Location) (time.Time, time.Time) {
	s, err := time.Parse("15:04", slot.Start)
	if err != nil {
		panic("availability: bad slot start " + slot.Start)
	}
	e, err := time.Parse("15:04", slot.End)
	if err != nil {
		panic("availability: bad slot end " + slot.End)
	}
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, s.Hour(), s.Minute(), 0, 0, loc)
	end := time.Date(y, m, d, e.Hour(), e.Minute(), 0, 0, loc)
	return start, end
}
