package booking

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/venuebook/venue-booking-api/internal/model"
)

// dateLayout is the wire format for reservation dates.
const dateLayout = "2006-01-02"

// CreateCommand is the input to BookingOrchestrator.Create.
type CreateCommand struct {
	CustomerID uint64
	VenueID    uint64
	TimeSlotID uint64
	Date       string
	Theme      *string
	PhotoURL   *string
	ServiceIDs []uint64
}

// UpdateCommand is the input to BookingOrchestrator.Update. Nil
// pointers mean "leave unchanged". Reactivate restores a
// soft-deleted reservation and must be the only change requested.
type UpdateCommand struct {
	ReservationID uint64
	Reactivate    bool
	VenueID       *uint64
	TimeSlotID    *uint64
	Date          *string
	Theme         *string
	PhotoURL      *string
	ServiceIDs    *[]uint64
}

// BookingResult is what every orchestrator operation returns on
// success: the committed reservation with its service lines plus
// advisory notes about the side effects that were scheduled.
// Side effect outcomes are unknowable at response time; the
// advisory reports scheduling only.
type BookingResult struct {
	Reservation *model.Reservation
	Services    []model.ReservationService
	Advisory    []string
}

// BookingOrchestrator is the engine façade. Each operation
// validates its input, composes the pricing calculator, the
// availability guard and the state machine inside one atomic unit
// of work, and hands the committed reservation to the dispatcher.
// Every validation failure aborts before any write; side effect
// failures never fail the operation.
type BookingOrchestrator struct {
	store      ReservationStore
	catalog    CatalogReader
	directory  RecipientDirectory
	pricing    *PricingCalculator
	guard      AvailabilityGuard
	machine    ReservationStateMachine
	dispatcher *SideEffectDispatcher
	log        zerolog.Logger

	// now is swappable so date validation is testable.
	now func() time.Time
}

// NewBookingOrchestrator wires the engine together. All
// collaborators must be non-nil.
func NewBookingOrchestrator(store ReservationStore, catalog CatalogReader, directory RecipientDirectory, dispatcher *SideEffectDispatcher, log zerolog.Logger) *BookingOrchestrator {
	if store == nil || catalog == nil || directory == nil || dispatcher == nil {
		panic("nil collaborator passed to NewBookingOrchestrator")
	}
	return &BookingOrchestrator{
		store:      store,
		catalog:    catalog,
		directory:  directory,
		pricing:    NewPricingCalculator(catalog),
		dispatcher: dispatcher,
		log:        log.With().Str("component", "orchestrator").Logger(),
		now:        time.Now,
	}
}

// Create books a venue for a customer. The date must be today or
// later, the venue and time slot must be active, every service id
// must resolve, and no other active reservation may hold the same
// (venue, date, slot) triple. The reservation starts in PENDING
// and a created notice goes to the customer and to all staff and
// admin accounts.
func (o *BookingOrchestrator) Create(ctx context.Context, cmd CreateCommand) (*BookingResult, error) {
	if cmd.CustomerID == 0 || cmd.VenueID == 0 || cmd.TimeSlotID == 0 {
		return nil, NewError(KindValidation, "customer, venue and time slot are required")
	}
	if err := o.validateDate(cmd.Date); err != nil {
		return nil, err
	}
	if _, err := o.catalog.ActiveTimeSlot(ctx, cmd.TimeSlotID); err != nil {
		return nil, err
	}
	quote, err := o.pricing.Quote(ctx, cmd.VenueID, cmd.ServiceIDs)
	if err != nil {
		return nil, err
	}

	res := &model.Reservation{
		CustomerID:      cmd.CustomerID,
		VenueID:         cmd.VenueID,
		TimeSlotID:      cmd.TimeSlotID,
		Date:            cmd.Date,
		Theme:           cmd.Theme,
		PhotoURL:        cmd.PhotoURL,
		VenuePriceCents: quote.VenuePriceCents,
		TotalPriceCents: quote.TotalCents,
		Status:          model.StatusPending,
		IsActive:        true,
	}
	err = o.withUnit(ctx, func(u ReservationUnit) error {
		if err := o.guard.Ensure(ctx, u, cmd.VenueID, cmd.Date, cmd.TimeSlotID, 0); err != nil {
			return err
		}
		return u.Insert(ctx, res, quote.Lines)
	})
	if err != nil {
		return nil, err
	}

	advisory := o.dispatcher.Dispatch(res, o.buildSummary(ctx, res, quote.Lines), EventCreated)
	return &BookingResult{Reservation: res, Services: quote.Lines, Advisory: advisory}, nil
}

// Update modifies an existing reservation. Administrative
// operation; role enforcement happens at the transport layer.
// Price snapshots are recomputed only when the venue or service
// selection changes, and the slot conflict check re-runs whenever
// the (venue, date, slot) triple changes. A soft-deleted
// reservation is reported as not found unless the only requested
// change is reactivation.
func (o *BookingOrchestrator) Update(ctx context.Context, cmd UpdateCommand) (*BookingResult, error) {
	if cmd.ReservationID == 0 {
		return nil, NewError(KindValidation, "reservation id is required")
	}
	res, lines, err := o.store.FindByID(ctx, cmd.ReservationID, true)
	if err != nil {
		return nil, err
	}

	if cmd.Reactivate {
		if cmd.VenueID != nil || cmd.TimeSlotID != nil || cmd.Date != nil || cmd.Theme != nil || cmd.PhotoURL != nil || cmd.ServiceIDs != nil {
			return nil, NewError(KindValidation, "reactivation cannot be combined with other changes")
		}
		return o.reactivate(ctx, res, lines)
	}
	if !res.IsActive {
		return nil, NewError(KindNotFound, "reservation %d not found", cmd.ReservationID)
	}

	venueChanged := cmd.VenueID != nil && *cmd.VenueID != res.VenueID
	slotChanged := cmd.TimeSlotID != nil && *cmd.TimeSlotID != res.TimeSlotID
	dateChanged := cmd.Date != nil && *cmd.Date != res.Date
	servicesChanged := cmd.ServiceIDs != nil

	if dateChanged {
		if err := o.validateDate(*cmd.Date); err != nil {
			return nil, err
		}
		res.Date = *cmd.Date
	}
	if slotChanged {
		if _, err := o.catalog.ActiveTimeSlot(ctx, *cmd.TimeSlotID); err != nil {
			return nil, err
		}
		res.TimeSlotID = *cmd.TimeSlotID
	}
	if venueChanged {
		res.VenueID = *cmd.VenueID
	}
	if cmd.Theme != nil {
		res.Theme = cmd.Theme
	}
	if cmd.PhotoURL != nil {
		res.PhotoURL = cmd.PhotoURL
	}

	var newLines []model.ReservationService
	if venueChanged || servicesChanged {
		serviceIDs := lineServiceIDs(lines)
		if servicesChanged {
			serviceIDs = *cmd.ServiceIDs
		}
		quote, err := o.pricing.Quote(ctx, res.VenueID, serviceIDs)
		if err != nil {
			return nil, err
		}
		res.VenuePriceCents = quote.VenuePriceCents
		res.TotalPriceCents = quote.TotalCents
		// An empty selection quotes nil lines, but the unit only
		// replaces stored lines when the slice is non-nil.
		newLines = quote.Lines
		if newLines == nil {
			newLines = []model.ReservationService{}
		}
		lines = newLines
	}

	err = o.withUnit(ctx, func(u ReservationUnit) error {
		if venueChanged || slotChanged || dateChanged {
			if err := o.guard.Ensure(ctx, u, res.VenueID, res.Date, res.TimeSlotID, res.ID); err != nil {
				return err
			}
		}
		return u.Update(ctx, res, newLines)
	})
	if err != nil {
		return nil, err
	}

	advisory := o.dispatcher.Dispatch(res, o.buildSummary(ctx, res, lines), EventUpdated)
	return &BookingResult{Reservation: res, Services: lines, Advisory: advisory}, nil
}

// reactivate restores a soft-deleted reservation to
// pending/active, re-checking only that its slot is still free.
func (o *BookingOrchestrator) reactivate(ctx context.Context, res *model.Reservation, lines []model.ReservationService) (*BookingResult, error) {
	tr, err := o.machine.Reactivate(res)
	if err != nil {
		return nil, err
	}
	err = o.withUnit(ctx, func(u ReservationUnit) error {
		if err := o.guard.Ensure(ctx, u, res.VenueID, res.Date, res.TimeSlotID, res.ID); err != nil {
			return err
		}
		return u.Reactivate(ctx, res.ID)
	})
	if err != nil {
		return nil, err
	}
	res.Status = tr.Status
	res.IsActive = tr.IsActive
	res.CancelReason = nil

	advisory := o.dispatcher.Dispatch(res, o.buildSummary(ctx, res, lines), tr.Effect)
	return &BookingResult{Reservation: res, Services: lines, Advisory: advisory}, nil
}

// Confirm moves a pending reservation to confirmed. Staff and
// admin operation. Schedules an in-app confirmation notice and a
// confirmation email, both best-effort.
func (o *BookingOrchestrator) Confirm(ctx context.Context, reservationID uint64) (*BookingResult, error) {
	return o.transition(ctx, reservationID, o.machine.Confirm, "")
}

// Complete marks an active reservation completed after the event
// took place. Administrative override with no further validation.
func (o *BookingOrchestrator) Complete(ctx context.Context, reservationID uint64) (*BookingResult, error) {
	return o.transition(ctx, reservationID, o.machine.Complete, "")
}

// transition applies a pure status change decided by the state
// machine and dispatches its effect.
func (o *BookingOrchestrator) transition(ctx context.Context, reservationID uint64, decide func(*model.Reservation) (Transition, error), reason string) (*BookingResult, error) {
	if reservationID == 0 {
		return nil, NewError(KindValidation, "reservation id is required")
	}
	res, lines, err := o.store.FindByID(ctx, reservationID, true)
	if err != nil {
		return nil, err
	}
	tr, err := decide(res)
	if err != nil {
		return nil, err
	}
	err = o.withUnit(ctx, func(u ReservationUnit) error {
		return u.SetStatus(ctx, res.ID, tr.Status)
	})
	if err != nil {
		return nil, err
	}
	res.Status = tr.Status
	res.IsActive = tr.IsActive

	summary := o.buildSummary(ctx, res, lines)
	summary.CancelReason = reason
	advisory := o.dispatcher.Dispatch(res, summary, tr.Effect)
	return &BookingResult{Reservation: res, Services: lines, Advisory: advisory}, nil
}

// CancelByOwner cancels a reservation on behalf of the customer
// who owns it. A non-empty reason is required and recorded as an
// audit note. Ownership is checked before anything else, so a
// foreign caller gets Forbidden regardless of reservation status.
func (o *BookingOrchestrator) CancelByOwner(ctx context.Context, reservationID, customerID uint64, reason string) (*BookingResult, error) {
	if reservationID == 0 || customerID == 0 {
		return nil, NewError(KindValidation, "reservation id and customer id are required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, NewError(KindValidation, "a cancellation reason is required")
	}
	res, lines, err := o.store.FindByID(ctx, reservationID, true)
	if err != nil {
		return nil, err
	}
	if res.CustomerID != customerID {
		return nil, NewError(KindForbidden, "reservation %d does not belong to the caller", reservationID)
	}
	return o.cancel(ctx, res, lines, reason)
}

// AdminDelete soft-deletes a reservation without requiring a
// reason or ownership. Admin operation.
func (o *BookingOrchestrator) AdminDelete(ctx context.Context, reservationID uint64) (*BookingResult, error) {
	if reservationID == 0 {
		return nil, NewError(KindValidation, "reservation id is required")
	}
	res, lines, err := o.store.FindByID(ctx, reservationID, true)
	if err != nil {
		return nil, err
	}
	return o.cancel(ctx, res, lines, "")
}

// cancel runs the shared soft-delete path: state machine, write,
// cancellation side effects.
func (o *BookingOrchestrator) cancel(ctx context.Context, res *model.Reservation, lines []model.ReservationService, reason string) (*BookingResult, error) {
	tr, err := o.machine.Cancel(res)
	if err != nil {
		return nil, err
	}
	err = o.withUnit(ctx, func(u ReservationUnit) error {
		return u.SoftDelete(ctx, res.ID, reason)
	})
	if err != nil {
		return nil, err
	}
	res.Status = tr.Status
	res.IsActive = tr.IsActive
	if reason != "" {
		res.CancelReason = &reason
	}

	summary := o.buildSummary(ctx, res, lines)
	summary.CancelReason = reason
	advisory := o.dispatcher.Dispatch(res, summary, tr.Effect)
	return &BookingResult{Reservation: res, Services: lines, Advisory: advisory}, nil
}

// Purge permanently removes a soft-deleted reservation together
// with its service lines. Fails with StillActive while the
// reservation has not been soft-deleted first.
func (o *BookingOrchestrator) Purge(ctx context.Context, reservationID uint64) error {
	if reservationID == 0 {
		return NewError(KindValidation, "reservation id is required")
	}
	res, _, err := o.store.FindByID(ctx, reservationID, true)
	if err != nil {
		return err
	}
	if res.IsActive {
		return NewError(KindStillActive, "reservation %d must be cancelled before permanent deletion", reservationID)
	}
	err = o.withUnit(ctx, func(u ReservationUnit) error {
		return u.HardDelete(ctx, res.ID)
	})
	if err != nil {
		return err
	}
	o.dispatcher.Dispatch(res, MailSummary{ReservationID: res.ID}, EventPurged)
	return nil
}

// withUnit runs fn inside one atomic unit of work, rolling back on
// any error.
func (o *BookingOrchestrator) withUnit(ctx context.Context, fn func(u ReservationUnit) error) error {
	unit, err := o.store.Begin(ctx)
	if err != nil {
		return WrapError(KindDependency, err, "failed to start unit of work")
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback()
		}
	}()
	if err := fn(unit); err != nil {
		return err
	}
	if err := unit.Commit(); err != nil {
		if IsKind(err, KindSlotConflict) {
			return err
		}
		return WrapError(KindDependency, err, "failed to commit unit of work")
	}
	committed = true
	return nil
}

// validateDate checks the wire format and rejects past dates.
func (o *BookingOrchestrator) validateDate(date string) error {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return NewError(KindValidation, "date must be in YYYY-MM-DD format")
	}
	today := o.now().UTC().Truncate(24 * time.Hour)
	if day.Before(today) {
		return NewError(KindValidation, "date %s is in the past", date)
	}
	return nil
}

// buildSummary assembles the immutable snapshot handed to the
// dispatcher. Lookups here are best-effort: a failed catalog read
// degrades the summary instead of failing the committed mutation.
func (o *BookingOrchestrator) buildSummary(ctx context.Context, res *model.Reservation, lines []model.ReservationService) MailSummary {
	summary := MailSummary{
		ReservationID: res.ID,
		Date:          res.Date,
		TotalCents:    res.TotalPriceCents,
	}
	if res.Theme != nil {
		summary.Theme = *res.Theme
	}
	if res.CancelReason != nil {
		summary.CancelReason = *res.CancelReason
	}
	if name, _, err := o.directory.CustomerContact(ctx, res.CustomerID); err == nil {
		summary.CustomerName = name
	}
	if venue, err := o.catalog.ActiveVenue(ctx, res.VenueID); err == nil {
		summary.VenueTitle = venue.Title
		summary.VenueAddress = venue.Address
	}
	if slot, err := o.catalog.ActiveTimeSlot(ctx, res.TimeSlotID); err == nil {
		summary.SlotStart = slot.StartTime
		summary.SlotEnd = slot.EndTime
	}
	if len(lines) > 0 {
		ids := lineServiceIDs(lines)
		if services, err := o.catalog.ActiveServices(ctx, ids); err == nil {
			byID := make(map[uint64]string, len(services))
			for _, svc := range services {
				byID[svc.ID] = svc.Description
			}
			for _, line := range lines {
				summary.Services = append(summary.Services, MailServiceLine{
					Description: byID[line.ServiceID],
					PriceCents:  line.PriceCents,
				})
			}
		}
	}
	return summary
}

// lineServiceIDs extracts the service ids from persisted lines.
func lineServiceIDs(lines []model.ReservationService) []uint64 {
	ids := make([]uint64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ServiceID)
	}
	return ids
}
