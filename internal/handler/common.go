package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/venuebook/venue-booking-api/internal/booking"
	"github.com/venuebook/venue-booking-api/internal/repository"
)

// getUserID extracts the authenticated user's id from the context.
// JWT numeric claims arrive as float64; string subjects are parsed
// for robustness.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), nil
	case uint64:
		return v, nil
	case string:
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			return id, nil
		}
	}
	return 0, errors.New("no user in context")
}

// getRole returns the role claim stored by the JWT middleware.
func getRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// engineError maps the booking engine's typed errors and the
// repository sentinels to HTTP responses in one place. Every
// rejected command carries its stable kind next to the reason.
func engineError(c echo.Context, err error) error {
	var e *booking.Error
	if errors.As(err, &e) {
		status := http.StatusInternalServerError
		switch e.Kind {
		case booking.KindValidation:
			status = http.StatusBadRequest
		case booking.KindNotFound:
			status = http.StatusNotFound
		case booking.KindSlotConflict, booking.KindInvalidTransition, booking.KindAlreadyCancelled, booking.KindStillActive:
			status = http.StatusConflict
		case booking.KindForbidden:
			status = http.StatusForbidden
		case booking.KindDependency:
			status = http.StatusInternalServerError
		}
		return c.JSON(status, echo.Map{"error": e.Message, "kind": string(e.Kind)})
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
