package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/venuebook/venue-booking-api/internal/repository"
)

// maxCommentLen caps the body of a reservation comment.
const maxCommentLen = 1000

// CommentHandler serves the internal notes staff leave on
// reservations. Reads are open to staff and admins; writes are
// admin only, and a comment can only be edited or deleted by its
// author.
type CommentHandler struct {
	Repo *repository.CommentRepo
}

func NewCommentHandler(repo *repository.CommentRepo) *CommentHandler {
	return &CommentHandler{Repo: repo}
}

type commentReq struct {
	Body string `json:"body"`
}

// validate trims the body and reports the cleaned text or a
// rejection message.
func (req *commentReq) validate() (string, string) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return "", "body is required"
	}
	if len([]rune(body)) > maxCommentLen {
		return "", "body must not exceed 1000 characters"
	}
	return body, ""
}

type commentDTO struct {
	ID            uint64    `json:"id"`
	ReservationID uint64    `json:"reservation_id"`
	AuthorID      uint64    `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toCommentDTO(v *repository.CommentView) commentDTO {
	return commentDTO{
		ID:            v.ID,
		ReservationID: v.ReservationID,
		AuthorID:      v.AuthorID,
		AuthorName:    v.AuthorName,
		Body:          v.Body,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

// List handles GET /v1/reservations/:id/comments.
func (h *CommentHandler) List(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	comments, err := h.Repo.ListByReservation(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	items := make([]commentDTO, 0, len(comments))
	for i := range comments {
		items = append(items, toCommentDTO(&comments[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /v1/reservations/:id/comments.
func (h *CommentHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	comment, err := h.Repo.Create(c.Request().Context(), id, userID, body)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toCommentDTO(comment)})
}

// Update handles PUT /v1/comments/:id. Only the author may edit.
func (h *CommentHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid comment id"})
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	comment, err := h.Repo.Update(c.Request().Context(), id, userID, body)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toCommentDTO(comment)})
}

// Delete handles DELETE /v1/comments/:id. Only the author may
// delete.
func (h *CommentHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid comment id"})
	}
	if err := h.Repo.Delete(c.Request().Context(), id, userID); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
