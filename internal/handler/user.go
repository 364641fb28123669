package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/venuebook/venue-booking-api/internal/config"
	"github.com/venuebook/venue-booking-api/internal/model"
	"github.com/venuebook/venue-booking-api/internal/repository"
)

// UserHandler serves account administration. Reading a single user
// is open to staff; everything else is admin only. An admin can
// never deactivate or delete their own account, so there is always
// another admin left to undo a mistake.
type UserHandler struct {
	Cfg  config.Config
	Repo *repository.UserRepo
}

func NewUserHandler(cfg config.Config, repo *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Repo: repo}
}

type updateUserReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"` // optional: set a new password
	IsActive *bool  `json:"is_active"`
}

type userDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserDTO(u *repository.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func validRole(role string) bool {
	return role == model.RoleCustomer || role == model.RoleStaff || role == model.RoleAdmin
}

// List handles GET /v1/users. Supports paging, a role filter and
// all=true to include deactivated accounts.
func (h *UserHandler) List(c echo.Context) error {
	role := strings.ToUpper(strings.TrimSpace(c.QueryParam("role")))
	if role != "" && !validRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role filter"})
	}
	page := atoiDefault(c.QueryParam("page"), 1)
	users, total, err := h.Repo.List(c.Request().Context(),
		c.QueryParam("all") == "true", role, page, atoiDefault(c.QueryParam("page_size"), 20))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load users"})
	}
	items := make([]userDTO, 0, len(users))
	for i := range users {
		items = append(items, toUserDTO(&users[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total, "page": page})
}

// Get handles GET /v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	u, err := h.Repo.GetByID(c.Request().Context(), id)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toUserDTO(&u)})
}

// Update handles PUT /v1/users/:id. The profile is rewritten in
// full; password is only changed when provided.
func (h *UserHandler) Update(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if req.Name == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and email are required"})
	}
	if !validRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	if id == callerID && req.IsActive != nil && !*req.IsActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "you cannot deactivate your own account"})
	}

	ctx := c.Request().Context()
	u, err := h.Repo.GetByID(ctx, id)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load user"})
	}
	u.Name = req.Name
	u.Email = req.Email
	u.Role = req.Role
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if err := h.Repo.Update(ctx, &u); err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return engineError(c, err)
	}
	if req.Password != "" {
		if err := h.Repo.SetPassword(ctx, id, req.Password, h.Cfg.BcryptCost); err != nil {
			return engineError(c, err)
		}
	}
	u, err = h.Repo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toUserDTO(&u)})
}

// Delete handles DELETE /v1/users/:id: a soft delete that blocks
// future logins.
func (h *UserHandler) Delete(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if id == callerID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "you cannot deactivate your own account"})
	}
	if err := h.Repo.Deactivate(c.Request().Context(), id); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Purge handles DELETE /v1/users/:id/permanent. The account must
// already be deactivated and must not be referenced by
// reservations or comments.
func (h *UserHandler) Purge(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if id == callerID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "you cannot delete your own account"})
	}
	if err := h.Repo.HardDelete(c.Request().Context(), id); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user must be deactivated and unreferenced before permanent deletion"})
		}
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
