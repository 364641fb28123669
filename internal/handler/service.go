package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/venuebook/venue-booking-api/internal/model"
	"github.com/venuebook/venue-booking-api/internal/repository"
)

// ServiceHandler serves the add-on service catalog.
type ServiceHandler struct {
	Repo *repository.ServiceRepo
}

func NewServiceHandler(repo *repository.ServiceRepo) *ServiceHandler {
	return &ServiceHandler{Repo: repo}
}

type serviceReq struct {
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	IsActive    *bool  `json:"is_active"`
}

type serviceDTO struct {
	ID          uint64 `json:"id"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	IsActive    bool   `json:"is_active"`
}

func toServiceDTO(s *model.Service) serviceDTO {
	return serviceDTO{ID: s.ID, Description: s.Description, PriceCents: s.PriceCents, IsActive: s.IsActive}
}

// List handles GET /v1/services. Staff and admins may pass
// all=true to include deactivated services.
func (h *ServiceHandler) List(c echo.Context) error {
	includeInactive := c.QueryParam("all") == "true" && getRole(c) != model.RoleCustomer
	services, err := h.Repo.List(c.Request().Context(), includeInactive)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load services"})
	}
	items := make([]serviceDTO, 0, len(services))
	for i := range services {
		items = append(items, toServiceDTO(&services[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/services/:id.
func (h *ServiceHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}
	s, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toServiceDTO(s)})
}

// Create handles POST /v1/services.
func (h *ServiceHandler) Create(c echo.Context) error {
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Description) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description is required"})
	}
	if req.PriceCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents must not be negative"})
	}
	s := model.Service{Description: strings.TrimSpace(req.Description), PriceCents: req.PriceCents}
	if err := h.Repo.Create(c.Request().Context(), &s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create service"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toServiceDTO(&s)})
}

// Update handles PUT /v1/services/:id. Existing reservations keep
// the price they were booked at.
func (h *ServiceHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Description) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description is required"})
	}
	if req.PriceCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents must not be negative"})
	}
	s, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	s.Description = strings.TrimSpace(req.Description)
	s.PriceCents = req.PriceCents
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	if err := h.Repo.Update(c.Request().Context(), s); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toServiceDTO(s)})
}

// Delete handles DELETE /v1/services/:id. Soft delete; the service
// simply stops being selectable for new bookings.
func (h *ServiceHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}
	if err := h.Repo.Delete(c.Request().Context(), id); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
