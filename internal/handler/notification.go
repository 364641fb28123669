package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/venuebook/venue-booking-api/internal/model"
	"github.com/venuebook/venue-booking-api/internal/repository"
)

// NotificationHandler lets users read the in-app notifications the
// booking engine leaves for them. Everything is scoped to the
// authenticated user; there is no cross-user access.
type NotificationHandler struct {
	Repo *repository.NotificationRepo
}

func NewNotificationHandler(repo *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Repo: repo}
}

type notificationDTO struct {
	ID        uint64    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationDTO(n *model.Notification) notificationDTO {
	return notificationDTO{
		ID:        n.ID,
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// List handles GET /v1/notifications. Supports unread=true and a
// limit query parameter.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	unreadOnly := c.QueryParam("unread") == "true"
	limit := atoiDefault(c.QueryParam("limit"), 0)
	notes, err := h.Repo.ListByUser(c.Request().Context(), userID, unreadOnly, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load notifications"})
	}
	items := make([]notificationDTO, 0, len(notes))
	for i := range notes {
		items = append(items, toNotificationDTO(&notes[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UnreadCount handles GET /v1/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	count, err := h.Repo.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count notifications"})
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

// MarkRead handles POST /v1/notifications/:id/read. Marking a
// notification that belongs to someone else reports not found
// rather than leaking its existence.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	if err := h.Repo.MarkRead(c.Request().Context(), id, userID); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles POST /v1/notifications/read-all and returns
// how many notifications were affected.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	updated, err := h.Repo.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update notifications"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": updated})
}
