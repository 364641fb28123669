package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuebook/venue-booking-api/internal/model"
)

func TestQuoteSumsExactCents(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.venues[1] = model.Venue{ID: 1, Title: "Salon Azul", PriceCents: 9500000, IsActive: true}
	catalog.services[10] = model.Service{ID: 10, Description: "Sonido", PriceCents: 2000000, IsActive: true}
	catalog.services[11] = model.Service{ID: 11, Description: "Catering", PriceCents: 3333333, IsActive: true}

	quote, err := NewPricingCalculator(catalog).Quote(context.Background(), 1, []uint64{10, 11})
	require.NoError(t, err)
	assert.Equal(t, int64(9500000), quote.VenuePriceCents)
	assert.Equal(t, int64(5333333), quote.ServicesTotalCents)
	assert.Equal(t, int64(14833333), quote.TotalCents)
	require.Len(t, quote.Lines, 2)
	assert.Equal(t, uint64(10), quote.Lines[0].ServiceID)
	assert.Equal(t, int64(2000000), quote.Lines[0].PriceCents)
}

func TestQuoteWithoutServices(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.venues[1] = model.Venue{ID: 1, PriceCents: 4200, IsActive: true}

	quote, err := NewPricingCalculator(catalog).Quote(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4200), quote.TotalCents)
	assert.Empty(t, quote.Lines)
}

func TestQuoteRejectsPartialServiceMatchWholesale(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.venues[1] = model.Venue{ID: 1, PriceCents: 100, IsActive: true}
	catalog.services[10] = model.Service{ID: 10, PriceCents: 50, IsActive: true}
	catalog.services[12] = model.Service{ID: 12, PriceCents: 70, IsActive: false}

	_, err := NewPricingCalculator(catalog).Quote(context.Background(), 1, []uint64{10, 12, 99})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Contains(t, err.Error(), "12")
	assert.Contains(t, err.Error(), "99")
}

func TestQuoteInactiveVenue(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.venues[1] = model.Venue{ID: 1, PriceCents: 100, IsActive: false}

	_, err := NewPricingCalculator(catalog).Quote(context.Background(), 1, nil)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestQuoteCollapsesDuplicateServiceIDs(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.venues[1] = model.Venue{ID: 1, PriceCents: 1000, IsActive: true}
	catalog.services[10] = model.Service{ID: 10, PriceCents: 500, IsActive: true}

	quote, err := NewPricingCalculator(catalog).Quote(context.Background(), 1, []uint64{10, 10, 0, 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), quote.TotalCents)
	assert.Len(t, quote.Lines, 1)
}
