package booking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/booking"
	"roombook/internal/clock"
	"roombook/internal/model"
)

// Wednesday, 10:00. Weekly-quota tests hang concrete weekdays off it.
var testNow = time.Date(2026, time.January, 14, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store  *fakeStore
	clock  *clock.Fake
	cal    *fakeCalendar
	engine *booking.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeStore()
	clk := clock.NewFake(testNow)
	cal := &fakeCalendar{}
	engine := booking.NewEngine(store, clk, booking.DefaultRules(), cal, &fakeCreds{})
	store.addRoom(1, "Sala A")
	store.addRoom(2, "Sala B")
	store.addUser("student@uni.edu", model.RoleStudent)
	store.addUser("admin@uni.edu", model.RoleAdmin)
	return &fixture{store: store, clock: clk, cal: cal, engine: engine}
}

// window returns a valid one-hour window starting at the given offset
// from the frozen test clock.
func window(offset time.Duration) (time.Time, time.Time) {
	start := testNow.Add(offset)
	return start, start.Add(time.Hour)
}

func TestCreateReservation(t *testing.T) {
	f := newFixture(t)
	start, end := window(24 * time.Hour)

	id, err := f.engine.CreateReservation(context.Background(), "student@uni.edu", booking.CreateRequest{
		RoomID: 1, Start: start, End: end,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	res, err := f.engine.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.RoomID)
	assert.Equal(t, "student@uni.edu", res.UserEmail)
	assert.True(t, res.StartAt.Equal(start))
	assert.True(t, res.EndAt.Equal(end))
}

func TestCreateReservationWindowValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		kind  booking.Kind
	}{
		{"missing start", time.Time{}, testNow.Add(time.Hour), booking.KindInvalidRange},
		{"missing end", testNow.Add(time.Hour), time.Time{}, booking.KindInvalidRange},
		{"start equals end", testNow.Add(time.Hour), testNow.Add(time.Hour), booking.KindInvalidRange},
		{"start after end", testNow.Add(2 * time.Hour), testNow.Add(time.Hour), booking.KindInvalidRange},
		{"already ended", testNow.Add(-2 * time.Hour), testNow.Add(-90 * time.Minute), booking.KindAlreadyEnded},
		{"too short", testNow.Add(time.Hour), testNow.Add(time.Hour + 14*time.Minute), booking.KindDurationOutOfBounds},
		{"too long", testNow.Add(time.Hour), testNow.Add(2*time.Hour + time.Minute), booking.KindDurationOutOfBounds},
		{"too far ahead", testNow.AddDate(0, 3, 1), testNow.AddDate(0, 3, 1).Add(time.Hour), booking.KindTooFarAhead},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.CreateReservation(context.Background(), "student@uni.edu", booking.CreateRequest{
				RoomID: 1, Start: tc.start, End: tc.end,
			})
			kind, ok := booking.KindOf(err)
			require.True(t, ok, "expected business rejection, got %v", err)
			assert.Equal(t, tc.kind, kind)
		})
	}
}

func TestCreateReservationDurationBoundsInclusive(t *testing.T) {
	f := newFixture(t)

	start := testNow.Add(24 * time.Hour)
	_, err := f.engine.CreateReservation(context.Background(), "student@uni.edu", booking.CreateRequest{
		RoomID: 1, Start: start, End: start.Add(15 * time.Minute),
	})
	assert.NoError(t, err, "15 minutes is the inclusive lower bound")

	start = testNow.AddDate(0, 0, 7)
	_, err = f.engine.CreateReservation(context.Background(), "admin@uni.edu", booking.CreateRequest{
		RoomID: 2, Start: start, End: start.Add(60 * time.Minute),
	})
	assert.NoError(t, err, "60 minutes is the inclusive upper bound")
}

func TestCreateReservationInProgressWindow(t *testing.T) {
	f := newFixture(t)

	// Started 30 minutes ago, ends 15 minutes from now: bookable.
	start := testNow.Add(-30 * time.Minute)
	_, err := f.engine.CreateReservation(context.Background(), "student@uni.edu", booking.CreateRequest{
		RoomID: 1, Start: start, End: start.Add(45 * time.Minute),
	})
	assert.NoError(t, err)
}

func TestCreateReservationUnknownUser(t *testing.T) {
	f := newFixture(t)
	start, end := window(24 * time.Hour)

	_, err := f.engine.CreateReservation(context.Background(), "nobody@uni.edu", booking.CreateRequest{
		RoomID: 1, Start: start, End: end,
	})
	kind, ok := booking.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, booking.KindUserNotFound, kind)
}

func TestCreateReservationUnknownRoom(t *testing.T) {
	f := newFixture(t)
	start, end := window(24 * time.Hour)

	_, err := f.engine.CreateReservation(context.Background(), "student@uni.edu", booking.CreateRequest{
		RoomID: 99, Start: start, End: end,
	})
	kind, ok := booking.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, booking.KindRoomNotFound, kind)
}

func TestCreateReservationUserCheckedBeforeRoom(t *testing.T) {
	f := newFixture(t)
	start, end := window(24 * time.Hour)

	// Both the user and the room are unknown; the user lookup runs
	// first, so that rejection wins.
	_, err := f.engine.CreateReservation(context.Background(), "nobody@uni.edu", booking.CreateRequest{
		RoomID: 99, Start: start, End: end,
	})
	kind, ok := booking.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, booking.KindUserNotFound, kind)
}

func TestCreateReservationSlotConflict(t *testing.T) {
	f := newFixture(t)
	admin := f.store.users["admin@uni.edu"]
	start, end := window(24 * time.Hour)
	f.store.addReservation(1, admin, start, end)

	cases := []struct {
		name       string
		start, end time.Time
		conflict   bool
	}{
		{"identical window", start, end, true},
		{"overlaps head", start.Add(-30 * time.Minute), start.Add(15 * time.Minute), true},
		{"overlaps tail", end.Add(-15 * time.Minute), end.Add(30 * time.Minute), true},
		{"back-to-back before", start.Add(-time.Hour), start, false},
		{"back-to-back after", end, end.Add(time.Hour), false},
		{"other room", start, end, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			roomID := uint64(1)
			if tc.name == "other room" {
				roomID = 2
			}
			_, err := f.engine.CreateReservation(context.Background(), "admin@uni.edu", booking.CreateRequest{
				RoomID: roomID, Start: tc.start, End: tc.end,
			})
			if tc.conflict {
				kind, ok := booking.KindOf(err)
				require.True(t, ok, "expected rejection, got %v", err)
				assert.Equal(t, booking.KindSlotConflict, kind)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWeeklyLimitStudent(t *testing.T) {
	f := newFixture(t)
	student := f.store.users["student@uni.edu"]

	// Existing booking on Thursday of the current week.
	thuStart := time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)
	f.store.addReservation(1, student, thuStart, thuStart.Add(time.Hour))

	// Friday same week, different room: still over quota.
	friStart := time.Date(2026, time.January, 16, 9, 0, 0, 0, time.UTC)
	_, err := f.engine.CreateReservation(context.Background(), "student@uni.edu", booking.CreateRequest{
		RoomID: 2, Start: friStart, End: friStart.Add(time.Hour),
	})
	kind, ok := booking.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, booking.KindWeeklyLimitExceeded, kind)

	// Monday of the next week: fresh quota.
	monStart := time.Date(2026, time.January, 19, 9, 0, 0, 0, time.UTC)
	_, err = f.engine.CreateReservation(context.Background(), "student@uni.edu", booking.CreateRequest{
		RoomID: 2, Start: monStart, End: monStart.Add(time.Hour),
	})
	assert.NoError(t, err)
}

func TestWeeklyLimitAdminBypass(t *testing.T) {
	f := newFixture(t)
	admin := f.store.users["admin@uni.edu"]

	thuStart := time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)
	f.store.addReservation(1, admin, thuStart, thuStart.Add(time.Hour))

	friStart := time.Date(2026, time.January, 16, 9, 0, 0, 0, time.UTC)
	_, err := f.engine.CreateReservation(context.Background(), "admin@uni.edu", booking.CreateRequest{
		RoomID: 2, Start: friStart, End: friStart.Add(time.Hour),
	})
	assert.NoError(t, err, "admins are not subject to the weekly quota")
}

func TestWeeklyLimitSaturdaySpansNextWeek(t *testing.T) {
	f := newFixture(t)
	student := f.store.users["student@uni.edu"]

	// A Saturday start counts against the window ending the FOLLOWING
	// Friday, so a booking next Wednesday exhausts it.
	wedStart := time.Date(2026, time.January, 21, 9, 0, 0, 0, time.UTC)
	f.store.addReservation(1, student, wedStart, wedStart.Add(time.Hour))

	satStart := time.Date(2026, time.January, 17, 9, 0, 0, 0, time.UTC)
	_, err := f.engine.CreateReservation(context.Background(), "student@uni.edu", booking.CreateRequest{
		RoomID: 2, Start: satStart, End: satStart.Add(time.Hour),
	})
	kind, ok := booking.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, booking.KindWeeklyLimitExceeded, kind)
}

func TestWorkWeek(t *testing.T) {
	cases := []struct {
		name   string
		t      time.Time
		monday time.Time
		friday time.Time
	}{
		{
			"wednesday",
			time.Date(2026, time.January, 14, 10, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 16, 23, 59, 59, 999999999, time.UTC),
		},
		{
			"monday maps to itself",
			time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 16, 23, 59, 59, 999999999, time.UTC),
		},
		{
			"friday maps to itself",
			time.Date(2026, time.January, 16, 21, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 16, 23, 59, 59, 999999999, time.UTC),
		},
		{
			"saturday spans into the next week",
			time.Date(2026, time.January, 17, 9, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 23, 23, 59, 59, 999999999, time.UTC),
		},
		{
			"sunday spans into the next week",
			time.Date(2026, time.January, 18, 9, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 23, 23, 59, 59, 999999999, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			from, to := booking.WorkWeek(tc.t, time.UTC)
			assert.True(t, from.Equal(tc.monday), "monday: got %s", from)
			assert.True(t, to.Equal(tc.friday), "friday: got %s", to)
		})
	}
}

func TestCreateReservationOnBehalf(t *testing.T) {
	f := newFixture(t)
	student := f.store.users["student@uni.edu"]

	// The beneficiary already holds a booking this week; on-behalf
	// bookings skip the quota.
	thuStart := time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)
	f.store.addReservation(1, student, thuStart, thuStart.Add(time.Hour))

	friStart := time.Date(2026, time.January, 16, 9, 0, 0, 0, time.UTC)
	id, err := f.engine.CreateReservationOnBehalf(context.Background(), "admin@uni.edu", "student@uni.edu", booking.CreateRequest{
		RoomID: 2, Start: friStart, End: friStart.Add(time.Hour),
	})
	require.NoError(t, err)

	res, err := f.engine.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "student@uni.edu", res.UserEmail, "the beneficiary owns the booking")
}

func TestCreateReservationOnBehalfUnknownBeneficiary(t *testing.T) {
	f := newFixture(t)
	start, end := window(24 * time.Hour)

	_, err := f.engine.CreateReservationOnBehalf(context.Background(), "admin@uni.edu", "ghost@uni.edu", booking.CreateRequest{
		RoomID: 1, Start: start, End: end,
	})
	kind, ok := booking.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, booking.KindUserNotFound, kind)
}

func TestCalendarSyncSuccess(t *testing.T) {
	f := newFixture(t)
	start, end := window(24 * time.Hour)

	id, err := f.engine.CreateReservation(context.Background(), "student@uni.edu", booking.CreateRequest{
		RoomID: 1, Start: start, End: end, WantsCalendarSync: true,
	})
	require.NoError(t, err)

	res, err := f.engine.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, res.CalendarEventID)
	require.Len(t, f.cal.created, 1)
	assert.Equal(t, "Sala A", f.cal.created[0].Location)
}

func TestCalendarSyncFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t)
	f.cal.createErr = errCalendarDown
	start, end := window(24 * time.Hour)

	id, err := f.engine.CreateReservation(context.Background(), "student@uni.edu", booking.CreateRequest{
		RoomID: 1, Start: start, End: end, WantsCalendarSync: true,
	})
	require.NoError(t, err, "calendar failures must never fail the booking")

	res, err := f.engine.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, res.CalendarEventID)
}

func TestCalendarSyncNotRequested(t *testing.T) {
	f := newFixture(t)
	start, end := window(24 * time.Hour)

	_, err := f.engine.CreateReservation(context.Background(), "student@uni.edu", booking.CreateRequest{
		RoomID: 1, Start: start, End: end,
	})
	require.NoError(t, err)
	assert.Empty(t, f.cal.created)
}

func TestConcurrentBookingsSameWindow(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 16; i++ {
		f.store.addUser(string(rune('a'+i))+"@uni.edu", model.RoleStudent)
	}
	start, end := window(24 * time.Hour)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.CreateReservation(context.Background(), string(rune('a'+i))+"@uni.edu", booking.CreateRequest{
				RoomID: 1, Start: start, End: end,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		kind, ok := booking.KindOf(err)
		require.True(t, ok, "unexpected internal error: %v", err)
		assert.Equal(t, booking.KindSlotConflict, kind)
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent booking may win")
}

func TestConcurrentBookingsDifferentRoomsAllSucceed(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 8; i++ {
		f.store.addRoom(uint64(10+i), "Sala X")
		f.store.addUser(string(rune('a'+i))+"@uni.edu", model.RoleStudent)
	}
	start, end := window(24 * time.Hour)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.CreateReservation(context.Background(), string(rune('a'+i))+"@uni.edu", booking.CreateRequest{
				RoomID: uint64(10 + i), Start: start, End: end,
			})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		assert.NoError(t, err, "room %d", 10+i)
	}
}
