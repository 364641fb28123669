package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/venuebook/venue-booking-api/internal/booking"
	"github.com/venuebook/venue-booking-api/internal/model"
	"github.com/venuebook/venue-booking-api/internal/repository"
)

// ReservationHandler exposes the booking engine over HTTP. All
// mutations go through the orchestrator; list and read queries go
// straight to the repository. Role checks beyond what the router
// middleware enforces (ownership, admin-only customer override)
// live here.
type ReservationHandler struct {
	Orch *booking.BookingOrchestrator
	Repo *repository.ReservationRepo
}

// NewReservationHandler constructs a ReservationHandler. Both
// dependencies must be non-nil.
func NewReservationHandler(orch *booking.BookingOrchestrator, repo *repository.ReservationRepo) *ReservationHandler {
	if orch == nil || repo == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Orch: orch, Repo: repo}
}

type createReservationReq struct {
	VenueID    uint64   `json:"venue_id"`
	TimeSlotID uint64   `json:"time_slot_id"`
	Date       string   `json:"date"`
	Theme      *string  `json:"theme"`
	PhotoURL   *string  `json:"photo_url"`
	ServiceIDs []uint64 `json:"service_ids"`
	CustomerID uint64   `json:"customer_id"` // admin only: book on behalf of a customer
}

type updateReservationReq struct {
	Reactivate bool      `json:"reactivate"`
	VenueID    *uint64   `json:"venue_id"`
	TimeSlotID *uint64   `json:"time_slot_id"`
	Date       *string   `json:"date"`
	Theme      *string   `json:"theme"`
	PhotoURL   *string   `json:"photo_url"`
	ServiceIDs *[]uint64 `json:"service_ids"`
}

type cancelReservationReq struct {
	Reason string `json:"reason"`
}

// reservationDTO is the mutation response shape: the committed
// reservation with its service lines.
type reservationDTO struct {
	ID              uint64           `json:"id"`
	CustomerID      uint64           `json:"customer_id"`
	VenueID         uint64           `json:"venue_id"`
	TimeSlotID      uint64           `json:"time_slot_id"`
	Date            string           `json:"date"`
	Theme           *string          `json:"theme,omitempty"`
	PhotoURL        *string          `json:"photo_url,omitempty"`
	CancelReason    *string          `json:"cancel_reason,omitempty"`
	VenuePriceCents int64            `json:"venue_price_cents"`
	TotalPriceCents int64            `json:"total_price_cents"`
	Status          string           `json:"status"`
	IsActive        bool             `json:"is_active"`
	Services        []serviceLineDTO `json:"services"`
}

type serviceLineDTO struct {
	ServiceID  uint64 `json:"service_id"`
	PriceCents int64  `json:"price_cents"`
}

func toReservationDTO(res *model.Reservation, lines []model.ReservationService) reservationDTO {
	dto := reservationDTO{
		ID:              res.ID,
		CustomerID:      res.CustomerID,
		VenueID:         res.VenueID,
		TimeSlotID:      res.TimeSlotID,
		Date:            res.Date,
		Theme:           res.Theme,
		PhotoURL:        res.PhotoURL,
		CancelReason:    res.CancelReason,
		VenuePriceCents: res.VenuePriceCents,
		TotalPriceCents: res.TotalPriceCents,
		Status:          res.Status,
		IsActive:        res.IsActive,
		Services:        make([]serviceLineDTO, 0, len(lines)),
	}
	for _, line := range lines {
		dto.Services = append(dto.Services, serviceLineDTO{ServiceID: line.ServiceID, PriceCents: line.PriceCents})
	}
	return dto
}

func mutationResponse(c echo.Context, status int, result *booking.BookingResult) error {
	return c.JSON(status, echo.Map{
		"item":         toReservationDTO(result.Reservation, result.Services),
		"side_effects": result.Advisory,
	})
}

// Create handles POST /v1/reservations. Customers book for
// themselves; admins may pass customer_id to book on behalf of
// someone else.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	customerID := userID
	if req.CustomerID != 0 && req.CustomerID != userID {
		if getRole(c) != model.RoleAdmin {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only admins may book for another customer"})
		}
		customerID = req.CustomerID
	}

	result, err := h.Orch.Create(c.Request().Context(), booking.CreateCommand{
		CustomerID: customerID,
		VenueID:    req.VenueID,
		TimeSlotID: req.TimeSlotID,
		Date:       req.Date,
		Theme:      req.Theme,
		PhotoURL:   req.PhotoURL,
		ServiceIDs: req.ServiceIDs,
	})
	if err != nil {
		return engineError(c, err)
	}
	return mutationResponse(c, http.StatusCreated, result)
}

// List handles GET /v1/reservations for staff and admins. Supports
// paging, filtering by status/venue/customer/date range, sorting,
// and all=true to include soft-deleted rows.
func (h *ReservationHandler) List(c echo.Context) error {
	q := repository.ListQuery{
		Page:            atoiDefault(c.QueryParam("page"), 1),
		PageSize:        atoiDefault(c.QueryParam("page_size"), 20),
		Status:          c.QueryParam("status"),
		DateFrom:        c.QueryParam("from"),
		DateTo:          c.QueryParam("to"),
		IncludeInactive: c.QueryParam("all") == "true",
		SortBy:          c.QueryParam("sort"),
		SortDesc:        c.QueryParam("desc") == "true",
	}
	if q.Status != "" && !booking.ValidStatus(q.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}
	if v := c.QueryParam("venue_id"); v != "" {
		q.VenueID = parseIDParam(v)
	}
	if v := c.QueryParam("customer_id"); v != "" {
		q.CustomerID = parseIDParam(v)
	}
	items, total, err := h.Repo.List(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"total": total,
		"page":  q.Page,
	})
}

// ListMine handles GET /v1/my-reservations. Customers see their
// whole history including cancelled bookings.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, _, err := h.Repo.List(c.Request().Context(), repository.ListQuery{
		CustomerID:      userID,
		IncludeInactive: true,
		PageSize:        200,
		SortBy:          "date",
		SortDesc:        true,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/reservations/:id. Customers may only read
// their own reservations; staff and admins read any, including
// soft-deleted ones.
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, lines, err := h.Repo.FindByID(c.Request().Context(), id, true)
	if err != nil {
		return engineError(c, err)
	}
	if getRole(c) == model.RoleCustomer && res.CustomerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationDTO(res, lines)})
}

// Update handles PATCH /v1/reservations/:id. Admin only (enforced
// by the router).
func (h *ReservationHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req updateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	result, err := h.Orch.Update(c.Request().Context(), booking.UpdateCommand{
		ReservationID: id,
		Reactivate:    req.Reactivate,
		VenueID:       req.VenueID,
		TimeSlotID:    req.TimeSlotID,
		Date:          req.Date,
		Theme:         req.Theme,
		PhotoURL:      req.PhotoURL,
		ServiceIDs:    req.ServiceIDs,
	})
	if err != nil {
		return engineError(c, err)
	}
	return mutationResponse(c, http.StatusOK, result)
}

// Confirm handles POST /v1/reservations/:id/confirm for staff and
// admins.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	result, err := h.Orch.Confirm(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return mutationResponse(c, http.StatusOK, result)
}

// Complete handles POST /v1/reservations/:id/complete. Admin only.
func (h *ReservationHandler) Complete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	result, err := h.Orch.Complete(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return mutationResponse(c, http.StatusOK, result)
}

// Cancel handles POST /v1/reservations/:id/cancel. The calling
// customer must own the reservation and provide a reason.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req cancelReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	result, err := h.Orch.CancelByOwner(c.Request().Context(), id, userID, req.Reason)
	if err != nil {
		return engineError(c, err)
	}
	return mutationResponse(c, http.StatusOK, result)
}

// Delete handles DELETE /v1/reservations/:id: an admin soft
// delete, no reason required.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	result, err := h.Orch.AdminDelete(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return mutationResponse(c, http.StatusOK, result)
}

// Purge handles DELETE /v1/reservations/:id/permanent. Admin only;
// the reservation must already be soft-deleted.
func (h *ReservationHandler) Purge(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Orch.Purge(c.Request().Context(), id); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}

func parseIDParam(s string) uint64 {
	id, _ := strconv.ParseUint(s, 10, 64)
	return id
}
