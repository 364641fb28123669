package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/venuebook/venue-booking-api/internal/model"
)

// PriceQuote is the immutable price snapshot computed for a
// reservation. All amounts are integer cents; the engine never
// touches floating point in the money path.
//
// Fields:
//  VenuePriceCents    – the venue's base price at quote time.
//  ServicesTotalCents – sum of all selected service prices.
//  TotalCents         – VenuePriceCents + ServicesTotalCents.
//  Lines              – per-service snapshots to persist with the
//                       reservation.
type PriceQuote struct {
	VenuePriceCents    int64
	ServicesTotalCents int64
	TotalCents         int64
	Lines              []model.ReservationService
}

// PricingCalculator resolves a venue and an optional service
// selection into a PriceQuote. It is a pure function of its inputs
// plus the catalog; it never writes anything.
type PricingCalculator struct {
	catalog CatalogReader
}

// NewPricingCalculator constructs a calculator over the given
// catalog. The catalog must be non-nil.
func NewPricingCalculator(catalog CatalogReader) *PricingCalculator {
	if catalog == nil {
		panic("nil catalog passed to NewPricingCalculator")
	}
	return &PricingCalculator{catalog: catalog}
}

// Quote computes the price snapshot for venueID plus serviceIDs.
// The venue must be active. Every service id must resolve to an
// active service; a partial match rejects the whole batch naming
// the missing ids rather than silently dropping them. Duplicate
// service ids are collapsed before lookup.
func (p *PricingCalculator) Quote(ctx context.Context, venueID uint64, serviceIDs []uint64) (*PriceQuote, error) {
	venue, err := p.catalog.ActiveVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}

	unique := dedupeIDs(serviceIDs)
	quote := &PriceQuote{VenuePriceCents: venue.PriceCents}
	if len(unique) > 0 {
		services, err := p.catalog.ActiveServices(ctx, unique)
		if err != nil {
			return nil, err
		}
		if missing := missingIDs(unique, services); len(missing) > 0 {
			return nil, NewError(KindNotFound, "unknown or inactive services: %s", joinIDs(missing))
		}
		quote.Lines = make([]model.ReservationService, 0, len(services))
		for _, svc := range services {
			quote.Lines = append(quote.Lines, model.ReservationService{
				ServiceID:  svc.ID,
				PriceCents: svc.PriceCents,
			})
			quote.ServicesTotalCents += svc.PriceCents
		}
	}
	quote.TotalCents = quote.VenuePriceCents + quote.ServicesTotalCents
	return quote, nil
}

// dedupeIDs removes zero and duplicate ids preserving order.
func dedupeIDs(ids []uint64) []uint64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// missingIDs returns the requested ids that did not resolve.
func missingIDs(requested []uint64, resolved []model.Service) []uint64 {
	found := make(map[uint64]struct{}, len(resolved))
	for _, svc := range resolved {
		found[svc.ID] = struct{}{}
	}
	var missing []uint64
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func joinIDs(ids []uint64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return strings.Join(parts, ", ")
}
