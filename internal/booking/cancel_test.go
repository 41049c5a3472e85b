package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/booking"
	"roombook/internal/model"
)

func TestCancelByOwner(t *testing.T) {
	f := newFixture(t)
	student := f.store.users["student@uni.edu"]
	start, end := window(24 * time.Hour)
	res := f.store.addReservation(1, student, start, end)

	require.NoError(t, f.engine.Cancel(context.Background(), res.ID, "student@uni.edu"))

	_, err := f.engine.GetByID(context.Background(), res.ID)
	kind, ok := booking.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, booking.KindReservationNotFound, kind)
}

func TestCancelByOtherStudentForbidden(t *testing.T) {
	f := newFixture(t)
	student := f.store.users["student@uni.edu"]
	f.store.addUser("other@uni.edu", model.RoleStudent)
	start, end := window(24 * time.Hour)
	res := f.store.addReservation(1, student, start, end)

	err := f.engine.Cancel(context.Background(), res.ID, "other@uni.edu")
	kind, ok := booking.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, booking.KindForbidden, kind)

	// The reservation must survive a denied cancellation.
	_, err = f.engine.GetByID(context.Background(), res.ID)
	assert.NoError(t, err)
}

func TestCancelByAdmin(t *testing.T) {
	f := newFixture(t)
	student := f.store.users["student@uni.edu"]
	start, end := window(24 * time.Hour)
	res := f.store.addReservation(1, student, start, end)

	assert.NoError(t, f.engine.Cancel(context.Background(), res.ID, "admin@uni.edu"))
}

func TestCancelUnknownReservation(t *testing.T) {
	f := newFixture(t)

	err := f.engine.Cancel(context.Background(), 999, "student@uni.edu")
	kind, ok := booking.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, booking.KindReservationNotFound, kind)
}

func TestCancelDeletesCalendarEvent(t *testing.T) {
	f := newFixture(t)
	student := f.store.users["student@uni.edu"]
	start, end := window(24 * time.Hour)
	res := f.store.addReservation(1, student, start, end)
	eventID := "evt-123"
	res.CalendarEventID = &eventID

	require.NoError(t, f.engine.Cancel(context.Background(), res.ID, "student@uni.edu"))
	assert.Equal(t, []string{"evt-123"}, f.cal.deleted)
}

func TestCancelSucceedsWhenCalendarDeleteFails(t *testing.T) {
	f := newFixture(t)
	f.cal.deleteErr = errCalendarDown
	student := f.store.users["student@uni.edu"]
	start, end := window(24 * time.Hour)
	res := f.store.addReservation(1, student, start, end)
	eventID := "evt-123"
	res.CalendarEventID = &eventID

	require.NoError(t, f.engine.Cancel(context.Background(), res.ID, "student@uni.edu"),
		"a broken calendar link must not block cancellation")

	_, err := f.engine.GetByID(context.Background(), res.ID)
	kind, ok := booking.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, booking.KindReservationNotFound, kind)
}
