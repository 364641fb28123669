package repository

import (
	"context"
	"database/sql"

	"github.com/venuebook/venue-booking-api/internal/model"
)

// NotificationRepo stores and reads in-app notifications. Record
// implements the sink the dispatcher writes through; the remaining
// methods serve the notification endpoints.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a NotificationRepo bound to the
// given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Record inserts one notification row.
func (r *NotificationRepo) Record(ctx context.Context, userID uint64, kind, title, message string) error {
	const q = `INSERT INTO notifications (user_id, kind, title, message) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, userID, kind, title, message)
	return err
}

// ListByUser returns the user's notifications, newest first,
// capped at limit. unreadOnly restricts the list to unseen rows.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT id, user_id, kind, title, message, is_read, created_at FROM notifications WHERE user_id = ?`
	if unreadOnly {
		q += ` AND is_read = 0`
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UnreadCount returns how many notifications the user has not
// read yet.
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	const q = `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`
	var n int64
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&n)
	return n, err
}

// MarkRead flags one notification as read. The user filter
// enforces ownership; marking someone else's notification reports
// ErrNotFound.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	const q = `UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either absent or already read; distinguish for the caller.
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM notifications WHERE id = ? AND user_id = ?`, id, userID).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// MarkAllRead flags every unread notification of the user as read
// and returns how many were affected.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	const q = `UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`
	result, err := r.db.ExecContext(ctx, q, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
