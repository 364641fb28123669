package model

import "time"

// TimeSlot represents a fixed window of the day that reservations
// are booked against (for example 12:00–16:00).  Slots carry a
// display order used when listing them and do not affect pricing.
// Once referenced by a reservation a slot is treated as immutable.
// Corresponds to a row in the `time_slots` table.
//
// Fields:
//  ID           – primary key identifier.
//  DisplayOrder – position of the slot when listed.
//  StartTime    – start of the window, "HH:MM:SS" wall-clock time.
//  EndTime      – end of the window, "HH:MM:SS" wall-clock time.
//  IsActive     – whether the slot can be selected for new bookings.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type TimeSlot struct {
	ID           uint64    // time_slots.id
	DisplayOrder uint32    // time_slots.display_order
	StartTime    string    // time_slots.start_time
	EndTime      string    // time_slots.end_time
	IsActive     bool      // time_slots.is_active
	CreatedAt    time.Time // time_slots.created_at
	UpdatedAt    time.Time // time_slots.updated_at
}
