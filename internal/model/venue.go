package model

import "time"

// Venue represents a bookable event hall.  A venue has a base
// price charged per reservation regardless of the time slot, a
// maximum guest capacity and an active flag used for soft
// deletion.  This struct corresponds to a row in the `venues`
// table.
//
// Fields:
//  ID         – primary key identifier.
//  Title      – display name of the venue.
//  Address    – street address shown to customers.
//  Capacity   – maximum number of guests.
//  PriceCents – base price in cents charged per reservation.
//  IsActive   – whether the venue can be booked.
//  CreatedAt  – timestamp when the venue was created.
//  UpdatedAt  – timestamp of last update.
type Venue struct {
	ID         uint64    // venues.id
	Title      string    // venues.title
	Address    string    // venues.address
	Capacity   uint32    // venues.capacity
	PriceCents int64     // venues.price_cents
	IsActive   bool      // venues.is_active
	CreatedAt  time.Time // venues.created_at
	UpdatedAt  time.Time // venues.updated_at
}
