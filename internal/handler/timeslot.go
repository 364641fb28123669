package handler

import (
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"github.com/venuebook/venue-booking-api/internal/model"
	"github.com/venuebook/venue-booking-api/internal/repository"
)

// TimeSlotHandler serves the fixed daily booking windows.
type TimeSlotHandler struct {
	Repo *repository.TimeSlotRepo
}

func NewTimeSlotHandler(repo *repository.TimeSlotRepo) *TimeSlotHandler {
	return &TimeSlotHandler{Repo: repo}
}

var wallClockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d:[0-5]\d$`)

type timeSlotReq struct {
	DisplayOrder uint32 `json:"display_order"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	IsActive     *bool  `json:"is_active"`
}

type timeSlotDTO struct {
	ID           uint64 `json:"id"`
	DisplayOrder uint32 `json:"display_order"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	IsActive     bool   `json:"is_active"`
}

func toTimeSlotDTO(s *model.TimeSlot) timeSlotDTO {
	return timeSlotDTO{
		ID:           s.ID,
		DisplayOrder: s.DisplayOrder,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		IsActive:     s.IsActive,
	}
}

func (req *timeSlotReq) validate() string {
	if !wallClockRe.MatchString(req.StartTime) || !wallClockRe.MatchString(req.EndTime) {
		return "start_time and end_time must be HH:MM:SS"
	}
	if req.EndTime <= req.StartTime {
		return "end_time must be after start_time"
	}
	return ""
}

// List handles GET /v1/time-slots, ordered by display_order.
func (h *TimeSlotHandler) List(c echo.Context) error {
	includeInactive := c.QueryParam("all") == "true" && getRole(c) != model.RoleCustomer
	slots, err := h.Repo.List(c.Request().Context(), includeInactive)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load time slots"})
	}
	items := make([]timeSlotDTO, 0, len(slots))
	for i := range slots {
		items = append(items, toTimeSlotDTO(&slots[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /v1/time-slots.
func (h *TimeSlotHandler) Create(c echo.Context) error {
	var req timeSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	s := model.TimeSlot{
		DisplayOrder: req.DisplayOrder,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	}
	if err := h.Repo.Create(c.Request().Context(), &s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create time slot"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toTimeSlotDTO(&s)})
}

// Update handles PUT /v1/time-slots/:id.
func (h *TimeSlotHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time slot id"})
	}
	var req timeSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	s, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	s.DisplayOrder = req.DisplayOrder
	s.StartTime = req.StartTime
	s.EndTime = req.EndTime
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	if err := h.Repo.Update(c.Request().Context(), s); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toTimeSlotDTO(s)})
}

// Delete handles DELETE /v1/time-slots/:id. Refused while any
// reservation references the slot.
func (h *TimeSlotHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time slot id"})
	}
	if err := h.Repo.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "time slot is referenced by reservations"})
		}
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
