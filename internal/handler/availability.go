package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"roombook/internal/availability"
	"roombook/internal/clock"
)

// AvailabilityHandler serves the daily room/slot availability matrix.
// The endpoint is public and read-only, which is why the router fronts
// it with the response cache.
type AvailabilityHandler struct {
	Calc  *availability.Calculator
	Clock clock.Clock
}

func NewAvailabilityHandler(calc *availability.Calculator, clk clock.Clock) *AvailabilityHandler {
	return &AvailabilityHandler{Calc: calc, Clock: clk}
}

// Daily handles GET /v1/availability?date=YYYY-MM-DD. Without a date
// parameter it serves today in the configured zone.
func (h *AvailabilityHandler) Daily(c echo.Context) error {
	date := h.Clock.Now()
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.Clock.Zone())
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		date = parsed
	}
	out, err := h.Calc.Daily(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability computation failed"})
	}
	return c.JSON(http.StatusOK, out)
}
