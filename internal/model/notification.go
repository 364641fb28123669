package model

import "time"

// Notification is an in-app message shown to a user, created as a
// side effect of booking mutations (new reservation, confirmation,
// cancellation).  Corresponds to a row in the `notifications`
// table.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – recipient of the notification.
//  Kind      – event kind that produced it (e.g. reservation.created).
//  Title     – short headline.
//  Message   – body text.
//  IsRead    – whether the recipient has seen it.
//  CreatedAt – creation timestamp.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	Kind      string    // notifications.kind
	Title     string    // notifications.title
	Message   string    // notifications.message
	IsRead    bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
