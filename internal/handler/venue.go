package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/venuebook/venue-booking-api/internal/model"
	"github.com/venuebook/venue-booking-api/internal/repository"
)

// VenueHandler serves the venue catalog. Reads are open to every
// authenticated user; writes are restricted to admins by the
// router.
type VenueHandler struct {
	Repo *repository.VenueRepo
}

func NewVenueHandler(repo *repository.VenueRepo) *VenueHandler {
	return &VenueHandler{Repo: repo}
}

type venueReq struct {
	Title      string `json:"title"`
	Address    string `json:"address"`
	Capacity   uint32 `json:"capacity"`
	PriceCents int64  `json:"price_cents"`
	IsActive   *bool  `json:"is_active"`
}

type venueDTO struct {
	ID         uint64 `json:"id"`
	Title      string `json:"title"`
	Address    string `json:"address"`
	Capacity   uint32 `json:"capacity"`
	PriceCents int64  `json:"price_cents"`
	IsActive   bool   `json:"is_active"`
}

func toVenueDTO(v *model.Venue) venueDTO {
	return venueDTO{
		ID:         v.ID,
		Title:      v.Title,
		Address:    v.Address,
		Capacity:   v.Capacity,
		PriceCents: v.PriceCents,
		IsActive:   v.IsActive,
	}
}

func (req *venueReq) validate() string {
	if strings.TrimSpace(req.Title) == "" {
		return "title is required"
	}
	if strings.TrimSpace(req.Address) == "" {
		return "address is required"
	}
	if req.Capacity == 0 {
		return "capacity must be positive"
	}
	if req.PriceCents < 0 {
		return "price_cents must not be negative"
	}
	return ""
}

// List handles GET /v1/venues. Staff and admins may pass all=true
// to include deactivated venues.
func (h *VenueHandler) List(c echo.Context) error {
	includeInactive := c.QueryParam("all") == "true" && getRole(c) != model.RoleCustomer
	venues, err := h.Repo.List(c.Request().Context(), includeInactive)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load venues"})
	}
	items := make([]venueDTO, 0, len(venues))
	for i := range venues {
		items = append(items, toVenueDTO(&venues[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/venues/:id.
func (h *VenueHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	v, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toVenueDTO(v)})
}

// Create handles POST /v1/venues.
func (h *VenueHandler) Create(c echo.Context) error {
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	v := model.Venue{
		Title:      strings.TrimSpace(req.Title),
		Address:    strings.TrimSpace(req.Address),
		Capacity:   req.Capacity,
		PriceCents: req.PriceCents,
	}
	if err := h.Repo.Create(c.Request().Context(), &v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create venue"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toVenueDTO(&v)})
}

// Update handles PUT /v1/venues/:id. The full venue is rewritten;
// price changes affect future bookings only since reservations
// snapshot prices at creation.
func (h *VenueHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	v, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	v.Title = strings.TrimSpace(req.Title)
	v.Address = strings.TrimSpace(req.Address)
	v.Capacity = req.Capacity
	v.PriceCents = req.PriceCents
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}
	if err := h.Repo.Update(c.Request().Context(), v); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toVenueDTO(v)})
}

// Delete handles DELETE /v1/venues/:id. Refused while the venue
// still has active reservations.
func (h *VenueHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	if err := h.Repo.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "venue still has active reservations"})
		}
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
