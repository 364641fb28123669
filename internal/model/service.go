package model

import "time"

// Service represents an optional add-on that can be bundled with a
// reservation (catering, sound, decoration and so on).  Each
// service carries its own price which is snapshotted onto the
// reservation at booking time.  Corresponds to a row in the
// `services` table.
//
// Fields:
//  ID          – primary key identifier.
//  Description – human readable description of the add-on.
//  PriceCents  – current catalog price in cents.
//  IsActive    – whether the service may be selected for new bookings.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Service struct {
	ID          uint64    // services.id
	Description string    // services.description
	PriceCents  int64     // services.price_cents
	IsActive    bool      // services.is_active
	CreatedAt   time.Time // services.created_at
	UpdatedAt   time.Time // services.updated_at
}
