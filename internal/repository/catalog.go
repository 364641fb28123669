package repository

import (
	"context"
	"errors"

	"github.com/venuebook/venue-booking-api/internal/booking"
	"github.com/venuebook/venue-booking-api/internal/model"
)

// Catalog adapts the venue, service and time slot repositories to
// the read-only view the booking engine consumes. It filters by
// the active flag and translates storage errors into the engine's
// typed errors.
type Catalog struct {
	venues   *VenueRepo
	services *ServiceRepo
	slots    *TimeSlotRepo
}

// NewCatalog builds the engine's catalog reader over the three
// reference repositories.
func NewCatalog(venues *VenueRepo, services *ServiceRepo, slots *TimeSlotRepo) *Catalog {
	if venues == nil || services == nil || slots == nil {
		panic("nil repository passed to NewCatalog")
	}
	return &Catalog{venues: venues, services: services, slots: slots}
}

// ActiveVenue implements booking.CatalogReader.
func (c *Catalog) ActiveVenue(ctx context.Context, venueID uint64) (*model.Venue, error) {
	v, err := c.venues.GetByID(ctx, venueID)
	if errors.Is(err, ErrNotFound) {
		return nil, booking.NewError(booking.KindNotFound, "venue %d not found", venueID)
	}
	if err != nil {
		return nil, booking.WrapError(booking.KindDependency, err, "venue lookup failed")
	}
	if !v.IsActive {
		return nil, booking.NewError(booking.KindNotFound, "venue %d not found", venueID)
	}
	return v, nil
}

// ActiveServices implements booking.CatalogReader. Resolution is
// best-effort here; the pricing calculator rejects partial
// matches.
func (c *Catalog) ActiveServices(ctx context.Context, ids []uint64) ([]model.Service, error) {
	services, err := c.services.GetActiveByIDs(ctx, ids)
	if err != nil {
		return nil, booking.WrapError(booking.KindDependency, err, "service lookup failed")
	}
	return services, nil
}

// ActiveTimeSlot implements booking.CatalogReader.
func (c *Catalog) ActiveTimeSlot(ctx context.Context, slotID uint64) (*model.TimeSlot, error) {
	s, err := c.slots.GetByID(ctx, slotID)
	if errors.Is(err, ErrNotFound) {
		return nil, booking.NewError(booking.KindNotFound, "time slot %d not found", slotID)
	}
	if err != nil {
		return nil, booking.WrapError(booking.KindDependency, err, "time slot lookup failed")
	}
	if !s.IsActive {
		return nil, booking.NewError(booking.KindNotFound, "time slot %d not found", slotID)
	}
	return s, nil
}
