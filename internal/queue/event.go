// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationEvent is published after every committed booking
// mutation. It carries enough information for downstream
// consumers to log, notify, or trigger analytics without querying
// the primary database.
type ReservationEvent struct {
	Kind            string `json:"kind"`
	ReservationID   uint64 `json:"reservation_id"`
	CustomerID      uint64 `json:"customer_id"`
	VenueID         uint64 `json:"venue_id"`
	TimeSlotID      uint64 `json:"time_slot_id"`
	Date            string `json:"date"`
	Status          string `json:"status"`
	TotalPriceCents int64  `json:"total_price_cents"`
	OccurredAt      string `json:"occurred_at"`
}
