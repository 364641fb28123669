package booking

import (
	"github.com/venuebook/venue-booking-api/internal/model"
)

// EventKind names the class of side effect a committed mutation
// schedules. The state machine decides which kind applies; the
// dispatcher decides how it is delivered.
type EventKind string

const (
	EventCreated   EventKind = "reservation.created"
	EventUpdated   EventKind = "reservation.updated"
	EventConfirmed EventKind = "reservation.confirmed"
	EventCancelled EventKind = "reservation.cancelled"
	EventPurged    EventKind = "reservation.purged"
)

// Transition is the outcome of a state machine decision: the
// status and active flag to persist together with the side effect
// class to schedule after commit.
type Transition struct {
	Status   string
	IsActive bool
	Effect   EventKind
}

// ReservationStateMachine validates and applies status changes.
// Status and the soft-delete flag are written together through it
// so no other code path can produce an illegal pair. The legal
// pairs are (PENDING|CONFIRMED|COMPLETED, active) and
// (CANCELLED, inactive); cancellation is the only inactivating
// transition and reactivation always lands on PENDING.
type ReservationStateMachine struct{}

// Confirm validates pending → confirmed. Re-confirming a
// reservation in any other status fails with InvalidTransition
// naming the current status, and no transition is valid on a
// soft-deleted reservation.
func (ReservationStateMachine) Confirm(res *model.Reservation) (Transition, error) {
	if !res.IsActive {
		return Transition{}, NewError(KindAlreadyCancelled, "reservation %d is no longer active", res.ID)
	}
	if res.Status != model.StatusPending {
		return Transition{}, NewError(KindInvalidTransition, "cannot confirm reservation %d in status %s", res.ID, res.Status)
	}
	return Transition{Status: model.StatusConfirmed, IsActive: true, Effect: EventConfirmed}, nil
}

// Cancel validates pending|confirmed → cancelled and pairs it with
// soft deletion. Cancelling an already-inactive reservation fails
// with AlreadyCancelled; a completed event can no longer be
// cancelled.
func (ReservationStateMachine) Cancel(res *model.Reservation) (Transition, error) {
	if !res.IsActive || res.Status == model.StatusCancelled {
		return Transition{}, NewError(KindAlreadyCancelled, "reservation %d is already cancelled", res.ID)
	}
	if res.Status == model.StatusCompleted {
		return Transition{}, NewError(KindInvalidTransition, "cannot cancel reservation %d in status %s", res.ID, res.Status)
	}
	return Transition{Status: model.StatusCancelled, IsActive: false, Effect: EventCancelled}, nil
}

// Complete is the administrative post-event override. Any active
// reservation may be completed; no further validation applies.
func (ReservationStateMachine) Complete(res *model.Reservation) (Transition, error) {
	if !res.IsActive {
		return Transition{}, NewError(KindAlreadyCancelled, "reservation %d is no longer active", res.ID)
	}
	return Transition{Status: model.StatusCompleted, IsActive: true, Effect: EventUpdated}, nil
}

// Reactivate restores a soft-deleted reservation. The result is
// always pending/active; history is not reconstructed.
func (ReservationStateMachine) Reactivate(res *model.Reservation) (Transition, error) {
	if res.IsActive {
		return Transition{}, NewError(KindValidation, "reservation %d is already active", res.ID)
	}
	return Transition{Status: model.StatusPending, IsActive: true, Effect: EventUpdated}, nil
}

// ValidStatus reports whether s is one of the known reservation
// statuses. Used when validating list filters and update input.
func ValidStatus(s string) bool {
	switch s {
	case model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted:
		return true
	}
	return false
}
