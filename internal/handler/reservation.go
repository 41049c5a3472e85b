package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"roombook/internal/booking"
	"roombook/internal/clock"
	q "roombook/internal/queue"
	queuepub "roombook/internal/service"
)

// ReservationHandler exposes the booking engine over HTTP. All methods
// assume JWT authentication already ran; the requester's identity is
// taken from the email claim, never from the request body.
type ReservationHandler struct {
	Engine *booking.Engine
	Clock  clock.Clock
}

func NewReservationHandler(engine *booking.Engine, clk clock.Clock) *ReservationHandler {
	return &ReservationHandler{Engine: engine, Clock: clk}
}

type createReservationReq struct {
	RoomID       uint64    `json:"roomId"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	SyncCalendar bool      `json:"syncCalendar"`
}

type createOnBehalfReq struct {
	createReservationReq
	UserEmail string `json:"userEmail"`
}

// Create handles POST /v1/reservations. On success it returns 201 with
// the new reservation and publishes a booked event to the broker;
// publish failures are ignored because the booking already committed.
func (h *ReservationHandler) Create(c echo.Context) error {
	email, ok := requesterEmail(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	id, err := h.Engine.CreateReservation(ctx, email, booking.CreateRequest{
		RoomID:            req.RoomID,
		Start:             req.Start,
		End:               req.End,
		WantsCalendarSync: req.SyncCalendar,
	})
	if err != nil {
		return bookingError(c, err)
	}

	res, err := h.Engine.GetByID(ctx, id)
	if err != nil {
		// Committed but unreadable; return the id alone.
		return c.JSON(http.StatusCreated, echo.Map{"id": id})
	}

	_ = queuepub.PublishReservationBooked(ctx, q.ReservationBookedEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		UserEmail:     res.UserEmail,
		RoomID:        res.RoomID,
		RoomName:      res.RoomName,
		StartsAt:      res.StartAt.Format(time.RFC3339),
		EndsAt:        res.EndAt.Format(time.RFC3339),
		BookedAt:      h.Clock.Now().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, res)
}

// CreateOnBehalf handles POST /v1/admin/reservations. The route is
// admin-gated by middleware; the booking is owned by the user named in
// the body and skips the weekly quota.
func (h *ReservationHandler) CreateOnBehalf(c echo.Context) error {
	adminEmail, ok := requesterEmail(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createOnBehalfReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.UserEmail == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userEmail is required"})
	}

	ctx := c.Request().Context()
	id, err := h.Engine.CreateReservationOnBehalf(ctx, adminEmail, req.UserEmail, booking.CreateRequest{
		RoomID: req.RoomID,
		Start:  req.Start,
		End:    req.End,
	})
	if err != nil {
		return bookingError(c, err)
	}
	res, err := h.Engine.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusCreated, echo.Map{"id": id})
	}
	return c.JSON(http.StatusCreated, res)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Engine.GetByID(c.Request().Context(), id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel handles DELETE /v1/reservations/:id. Only the owner or an
// admin may cancel; the engine enforces that.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	email, ok := requesterEmail(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Engine.Cancel(c.Request().Context(), id, email); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MyReservations handles GET /v1/my-reservations, partitioning the
// caller's bookings into current/future/past.
func (h *ReservationHandler) MyReservations(c echo.Context) error {
	email, ok := requesterEmail(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	out, err := h.Engine.GetMyReservations(c.Request().Context(), email)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ByRoom handles GET /v1/admin/rooms/:id/reservations.
func (h *ReservationHandler) ByRoom(c echo.Context) error {
	email, ok := requesterEmail(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || roomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	list, err := h.Engine.GetByRoom(c.Request().Context(), roomID, email)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
