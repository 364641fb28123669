package repository

import (
	"context"
	"database/sql"

	"github.com/venuebook/venue-booking-api/internal/model"
)

// CommentRepo stores the internal notes staff leave on
// reservations. Edits and deletions are restricted to the comment's
// author; the filter lives in the SQL so the check and the write
// are one statement.
type CommentRepo struct {
	db *sql.DB
}

// NewCommentRepo returns a CommentRepo bound to the given database.
func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{db: db} }

const commentColumns = `c.id, c.reservation_id, c.author_id, c.body, c.created_at, c.updated_at`

// CommentView is a comment joined with its author's display name
// for listing.
type CommentView struct {
	model.ReservationComment
	AuthorName string
}

func scanComment(row interface{ Scan(...any) error }) (*CommentView, error) {
	var v CommentView
	err := row.Scan(&v.ID, &v.ReservationID, &v.AuthorID, &v.Body, &v.CreatedAt, &v.UpdatedAt, &v.AuthorName)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListByReservation returns all comments on a reservation, oldest
// first. Returns ErrNotFound when the reservation does not exist.
func (r *CommentRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]CommentView, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM reservations WHERE id = ?`, reservationID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	const q = `SELECT ` + commentColumns + `, u.name
	           FROM reservation_comments c
	           JOIN users u ON u.id = c.author_id
	           WHERE c.reservation_id = ?
	           ORDER BY c.created_at, c.id`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CommentView, 0)
	for rows.Next() {
		v, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// Create inserts a comment and reads it back with the author name.
// Returns ErrNotFound when the reservation does not exist.
func (r *CommentRepo) Create(ctx context.Context, reservationID, authorID uint64, body string) (*CommentView, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM reservations WHERE id = ?`, reservationID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO reservation_comments (reservation_id, author_id, body) VALUES (?, ?, ?)`,
		reservationID, authorID, body)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.findByID(ctx, uint64(id))
}

func (r *CommentRepo) findByID(ctx context.Context, id uint64) (*CommentView, error) {
	const q = `SELECT ` + commentColumns + `, u.name
	           FROM reservation_comments c
	           JOIN users u ON u.id = c.author_id
	           WHERE c.id = ?`
	v, err := scanComment(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Update rewrites the body of a comment owned by authorID. Returns
// ErrNotFound when the comment does not exist and ErrForbidden when
// it belongs to another author.
func (r *CommentRepo) Update(ctx context.Context, id, authorID uint64, body string) (*CommentView, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservation_comments SET body = ? WHERE id = ? AND author_id = ?`,
		body, id, authorID)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if err := r.authorCheck(ctx, id, authorID); err != nil {
			return nil, err
		}
	}
	return r.findByID(ctx, id)
}

// Delete removes a comment owned by authorID, with the same error
// contract as Update.
func (r *CommentRepo) Delete(ctx context.Context, id, authorID uint64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM reservation_comments WHERE id = ? AND author_id = ?`,
		id, authorID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return r.authorCheck(ctx, id, authorID)
	}
	return nil
}

// authorCheck distinguishes a missing comment from one owned by
// another author. An unchanged body also lands here; that is fine.
func (r *CommentRepo) authorCheck(ctx context.Context, id, authorID uint64) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx, `SELECT author_id FROM reservation_comments WHERE id = ?`, id).Scan(&owner)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != authorID {
		return ErrForbidden
	}
	return nil
}
