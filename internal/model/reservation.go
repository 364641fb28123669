package model

import "time"

// Reservation status values. A reservation moves from pending to
// confirmed or cancelled; confirmed reservations may later be
// marked completed. Cancelled is terminal.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// Reservation records a customer's booking of a venue for one
// date and time slot, together with the add-on services chosen
// and price snapshots taken at booking time.  The status enum and
// the IsActive soft-delete flag are always written together by
// the booking engine; the legal pairs are (PENDING..COMPLETED,
// active) and (CANCELLED, active or inactive).
//
// Fields:
//  ID              – primary key identifier.
//  CustomerID      – user who owns the booking.
//  VenueID         – venue being booked.
//  TimeSlotID      – slot of the day being booked.
//  Date            – calendar date of the event, "YYYY-MM-DD".
//  Theme           – optional party theme supplied by the customer.
//  PhotoURL        – optional reference image for the event.
//  CancelReason    – reason given when the owner cancels.
//  VenuePriceCents – venue base price captured at booking time.
//  TotalPriceCents – venue price plus all service line prices.
//  Status          – reservation state (see Status constants).
//  IsActive        – false once soft deleted.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64    // reservations.id
	CustomerID      uint64    // reservations.customer_id
	VenueID         uint64    // reservations.venue_id
	TimeSlotID      uint64    // reservations.time_slot_id
	Date            string    // reservations.reservation_date
	Theme           *string   // reservations.theme (nullable)
	PhotoURL        *string   // reservations.photo_url (nullable)
	CancelReason    *string   // reservations.cancel_reason (nullable)
	VenuePriceCents int64     // reservations.venue_price_cents
	TotalPriceCents int64     // reservations.total_price_cents
	Status          string    // reservations.status
	IsActive        bool      // reservations.is_active
	CreatedAt       time.Time // reservations.created_at
	UpdatedAt       time.Time // reservations.updated_at
}

// ReservationService is one add-on line attached to a reservation.
// The price is a snapshot of the service's catalog price at the
// moment the line was written, so later catalog edits never change
// what an existing booking costs.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reference to the reservation.
//  ServiceID     – service that was added.
//  PriceCents    – service price captured at booking time.
type ReservationService struct {
	ID            uint64 // reservation_services.id
	ReservationID uint64 // reservation_services.reservation_id
	ServiceID     uint64 // reservation_services.service_id
	PriceCents    int64  // reservation_services.price_cents
}
