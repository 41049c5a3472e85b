package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"roombook/internal/booking"
)

// requesterEmail pulls the authenticated email out of the context. The
// JWT middleware stores the raw claim value, so the type assertion can
// fail on a token minted before the email claim existed.
func requesterEmail(c echo.Context) (string, bool) {
	v, ok := c.Get("email").(string)
	return v, ok && v != ""
}

// statusOf maps a business rejection kind to an HTTP status.
// Validation failures are 400, contention 409, missing entities 404,
// authorization 403 and lock starvation 503.
func statusOf(kind booking.Kind) int {
	switch kind {
	case booking.KindInvalidRange,
		booking.KindDurationOutOfBounds,
		booking.KindTooFarAhead,
		booking.KindAlreadyEnded:
		return http.StatusBadRequest
	case booking.KindSlotConflict,
		booking.KindWeeklyLimitExceeded:
		return http.StatusConflict
	case booking.KindRoomNotFound,
		booking.KindUserNotFound,
		booking.KindReservationNotFound:
		return http.StatusNotFound
	case booking.KindForbidden:
		return http.StatusForbidden
	case booking.KindLockTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// bookingError renders a booking engine error. Business rejections
// carry their kind as a machine-readable code; internal faults are
// reported opaquely so storage details never leak to clients.
func bookingError(c echo.Context, err error) error {
	if kind, ok := booking.KindOf(err); ok {
		return c.JSON(statusOf(kind), echo.Map{"error": string(kind), "message": err.Error()})
	}
	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
