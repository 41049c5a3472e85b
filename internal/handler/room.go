package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"roombook/internal/booking"
	"roombook/internal/model"
	"roombook/internal/repository"
)

// RoomHandler exposes the room catalog. Listing is public; mutations
// are admin-gated by route middleware.
type RoomHandler struct {
	Rooms *repository.RoomRepo
}

func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
	return &RoomHandler{Rooms: rooms}
}

type roomReq struct {
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Floor     int      `json:"floor"`
	Equipment []string `json:"equipment"`
	ImageURL  *string  `json:"imageUrl"`
}

func (r roomReq) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name is required"
	}
	if r.Capacity < 0 {
		return "capacity cannot be negative"
	}
	return ""
}

// List handles GET /v1/rooms. No auth required so the booking UI can
// render the catalog before login.
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.Rooms.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, room)
}

// Create handles POST /v1/admin/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	room := &model.Room{
		Name:      strings.TrimSpace(req.Name),
		Capacity:  req.Capacity,
		Floor:     req.Floor,
		Equipment: req.Equipment,
		ImageURL:  req.ImageURL,
	}
	if room.Equipment == nil {
		room.Equipment = []string{}
	}
	if err := h.Rooms.Create(c.Request().Context(), room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	return c.JSON(http.StatusCreated, room)
}

// Update handles PUT /v1/admin/rooms/:id with full-replace semantics.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	room := &model.Room{
		ID:        id,
		Name:      strings.TrimSpace(req.Name),
		Capacity:  req.Capacity,
		Floor:     req.Floor,
		Equipment: req.Equipment,
		ImageURL:  req.ImageURL,
	}
	if room.Equipment == nil {
		room.Equipment = []string{}
	}
	if err := h.Rooms.Update(c.Request().Context(), room); err != nil {
		if errors.Is(err, booking.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
	}
	return c.JSON(http.StatusOK, room)
}

// Delete handles DELETE /v1/admin/rooms/:id. The room's reservations
// go with it via the cascading foreign key.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if err := h.Rooms.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, booking.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete room failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
