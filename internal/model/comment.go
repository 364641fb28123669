package model

import "time"

// ReservationComment is an internal note left on a reservation by
// a staff member, for example the outcome of a phone call or a
// special request to pass on to the venue crew. Comments are never
// shown to customers.
//
// Fields:
//  ID            – primary key identifier of the comment.
//  ReservationID – reservation the comment belongs to.
//  AuthorID      – user who wrote the comment.
//  Body          – comment text, at most 1000 characters.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last edit.
type ReservationComment struct {
	ID            uint64    // reservation_comments.id
	ReservationID uint64    // reservation_comments.reservation_id
	AuthorID      uint64    // reservation_comments.author_id
	Body          string    // reservation_comments.body
	CreatedAt     time.Time // reservation_comments.created_at
	UpdatedAt     time.Time // reservation_comments.updated_at
}
