package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuebook/venue-booking-api/internal/model"
)

// engineFixture wires the orchestrator to in-memory fakes. The
// clock is pinned so date validation is deterministic.
type engineFixture struct {
	catalog    *fakeCatalog
	store      *memStore
	sink       *fakeSink
	mailer     *fakeMailer
	events     *fakePublisher
	directory  *fakeDirectory
	dispatcher *SideEffectDispatcher
	orch       *BookingOrchestrator
}

const (
	fixtureCustomer = uint64(100)
	fixtureStranger = uint64(101)
)

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		catalog: newFakeCatalog(),
		store:   newMemStore(),
		sink:    &fakeSink{},
		mailer:  &fakeMailer{enabled: true},
		events:  &fakePublisher{},
		directory: &fakeDirectory{
			contacts: map[uint64][2]string{
				fixtureCustomer: {"Ana Torres", "ana@example.com"},
				fixtureStranger: {"Luis Paz", "luis@example.com"},
			},
			staff: []uint64{1, 2},
		},
	}
	f.catalog.venues[1] = model.Venue{ID: 1, Title: "Salon Azul", Address: "Av. Mitre 120", Capacity: 150, PriceCents: 95000, IsActive: true}
	f.catalog.venues[2] = model.Venue{ID: 2, Title: "Salon Verde", Address: "Belgrano 44", Capacity: 80, PriceCents: 60000, IsActive: true}
	f.catalog.services[10] = model.Service{ID: 10, Description: "Sonido", PriceCents: 20000, IsActive: true}
	f.catalog.services[11] = model.Service{ID: 11, Description: "Catering", PriceCents: 45000, IsActive: true}
	f.catalog.slots[1] = model.TimeSlot{ID: 1, DisplayOrder: 1, StartTime: "12:00:00", EndTime: "16:00:00", IsActive: true}
	f.catalog.slots[2] = model.TimeSlot{ID: 2, DisplayOrder: 2, StartTime: "18:00:00", EndTime: "23:00:00", IsActive: true}

	log := zerolog.Nop()
	f.dispatcher = NewSideEffectDispatcher(f.sink, f.mailer, f.events, f.directory, log)
	f.orch = NewBookingOrchestrator(f.store, f.catalog, f.directory, f.dispatcher, log)
	f.orch.now = func() time.Time {
		return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	}
	return f
}

func (f *engineFixture) create(t *testing.T, cmd CreateCommand) *BookingResult {
	t.Helper()
	result, err := f.orch.Create(context.Background(), cmd)
	require.NoError(t, err)
	return result
}

func baseCreate() CreateCommand {
	return CreateCommand{
		CustomerID: fixtureCustomer,
		VenueID:    1,
		TimeSlotID: 1,
		Date:       "2026-08-30",
		ServiceIDs: []uint64{10},
	}
}

func TestCreatePricesAndPends(t *testing.T) {
	f := newEngineFixture(t)

	result := f.create(t, baseCreate())
	f.dispatcher.Wait()

	res := result.Reservation
	assert.NotZero(t, res.ID)
	assert.Equal(t, model.StatusPending, res.Status)
	assert.True(t, res.IsActive)
	assert.Equal(t, int64(95000), res.VenuePriceCents)
	assert.Equal(t, int64(115000), res.TotalPriceCents)
	require.Len(t, result.Services, 1)
	assert.Equal(t, int64(20000), result.Services[0].PriceCents)
	assert.Contains(t, result.Advisory, "customer notification scheduled")
	assert.Contains(t, result.Advisory, "staff notifications scheduled")

	// Customer plus both staff accounts get a created notice.
	assert.Len(t, f.sink.forUser(fixtureCustomer), 1)
	assert.Len(t, f.sink.forUser(1), 1)
	assert.Len(t, f.sink.forUser(2), 1)
	assert.Equal(t, []EventKind{EventCreated}, f.events.events)
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newEngineFixture(t)

	tests := []struct {
		name     string
		mutate   func(*CreateCommand)
		wantKind Kind
	}{
		{"missing venue", func(c *CreateCommand) { c.VenueID = 0 }, KindValidation},
		{"bad date format", func(c *CreateCommand) { c.Date = "30/08/2026" }, KindValidation},
		{"past date", func(c *CreateCommand) { c.Date = "2026-08-28" }, KindValidation},
		{"unknown slot", func(c *CreateCommand) { c.TimeSlotID = 99 }, KindNotFound},
		{"unknown venue", func(c *CreateCommand) { c.VenueID = 99 }, KindNotFound},
		{"unknown service", func(c *CreateCommand) { c.ServiceIDs = []uint64{10, 99} }, KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := baseCreate()
			tt.mutate(&cmd)
			_, err := f.orch.Create(context.Background(), cmd)
			assert.Equal(t, tt.wantKind, KindOf(err))
		})
	}

	// Today is always bookable.
	cmd := baseCreate()
	cmd.Date = "2026-08-29"
	f.create(t, cmd)
}

func TestCreateSlotConflict(t *testing.T) {
	f := newEngineFixture(t)
	f.create(t, baseCreate())

	_, err := f.orch.Create(context.Background(), baseCreate())
	assert.Equal(t, KindSlotConflict, KindOf(err))

	// A different slot on the same date is free.
	cmd := baseCreate()
	cmd.TimeSlotID = 2
	f.create(t, cmd)
}

func TestConcurrentCreateExactlyOneWins(t *testing.T) {
	f := newEngineFixture(t)

	const callers = 8
	start := make(chan struct{})
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.orch.Create(context.Background(), baseCreate())
		}(i)
	}
	close(start)
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case IsKind(err, KindSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, conflicts)
}

func TestSnapshotsSurviveCatalogChanges(t *testing.T) {
	f := newEngineFixture(t)
	created := f.create(t, baseCreate())

	f.catalog.setVenuePrice(1, 999999)

	res, _, err := f.store.FindByID(context.Background(), created.Reservation.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(95000), res.VenuePriceCents)
	assert.Equal(t, int64(115000), res.TotalPriceCents)

	// An explicit update of the service selection recomputes both
	// snapshots from the live catalog.
	services := []uint64{10, 11}
	updated, err := f.orch.Update(context.Background(), UpdateCommand{
		ReservationID: created.Reservation.ID,
		ServiceIDs:    &services,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(999999), updated.Reservation.VenuePriceCents)
	assert.Equal(t, int64(999999+20000+45000), updated.Reservation.TotalPriceCents)
}

func TestUpdateClearsServiceSelection(t *testing.T) {
	f := newEngineFixture(t)
	created := f.create(t, baseCreate())

	none := []uint64{}
	updated, err := f.orch.Update(context.Background(), UpdateCommand{
		ReservationID: created.Reservation.ID,
		ServiceIDs:    &none,
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Services)
	assert.Equal(t, int64(95000), updated.Reservation.TotalPriceCents)

	// The stored lines are gone too, keeping the total equal to
	// the venue price plus the sum of the persisted lines.
	res, lines, err := f.store.FindByID(context.Background(), created.Reservation.ID, false)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, res.VenuePriceCents, res.TotalPriceCents)
}

func TestConfirmFlow(t *testing.T) {
	f := newEngineFixture(t)
	created := f.create(t, baseCreate())

	result, err := f.orch.Confirm(context.Background(), created.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, result.Reservation.Status)
	f.dispatcher.Wait()
	assert.Equal(t, []string{"ana@example.com"}, f.mailer.confirmations)

	_, err = f.orch.Confirm(context.Background(), created.Reservation.ID)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestConfirmSucceedsWhenEmailFails(t *testing.T) {
	f := newEngineFixture(t)
	f.mailer.fail = assert.AnError
	created := f.create(t, baseCreate())

	result, err := f.orch.Confirm(context.Background(), created.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, result.Reservation.Status)
	assert.Contains(t, result.Advisory, "email scheduled")

	f.dispatcher.Wait()
	// The in-app notice still lands even though the email failed.
	notices := f.sink.forUser(fixtureCustomer)
	assert.NotEmpty(t, notices)
}

func TestCancelByOwner(t *testing.T) {
	f := newEngineFixture(t)
	created := f.create(t, baseCreate())
	id := created.Reservation.ID

	_, err := f.orch.CancelByOwner(context.Background(), id, fixtureCustomer, "   ")
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.orch.CancelByOwner(context.Background(), id, fixtureStranger, "not mine")
	assert.Equal(t, KindForbidden, KindOf(err))

	result, err := f.orch.CancelByOwner(context.Background(), id, fixtureCustomer, "change of plans")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, result.Reservation.Status)
	assert.False(t, result.Reservation.IsActive)
	require.NotNil(t, result.Reservation.CancelReason)
	assert.Equal(t, "change of plans", *result.Reservation.CancelReason)

	f.dispatcher.Wait()
	assert.Equal(t, []string{"ana@example.com"}, f.mailer.cancellations)

	// Ownership is still checked first on a cancelled reservation.
	_, err = f.orch.CancelByOwner(context.Background(), id, fixtureStranger, "still not mine")
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = f.orch.CancelByOwner(context.Background(), id, fixtureCustomer, "again")
	assert.Equal(t, KindAlreadyCancelled, KindOf(err))
}

func TestPurgeRequiresSoftDelete(t *testing.T) {
	f := newEngineFixture(t)
	created := f.create(t, baseCreate())
	id := created.Reservation.ID

	err := f.orch.Purge(context.Background(), id)
	assert.Equal(t, KindStillActive, KindOf(err))

	_, err = f.orch.AdminDelete(context.Background(), id)
	require.NoError(t, err)

	require.NoError(t, f.orch.Purge(context.Background(), id))

	_, _, err = f.store.FindByID(context.Background(), id, true)
	assert.Equal(t, KindNotFound, KindOf(err))

	err = f.orch.Purge(context.Background(), id)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdateVisibilityAndReactivation(t *testing.T) {
	f := newEngineFixture(t)
	created := f.create(t, baseCreate())
	id := created.Reservation.ID

	_, err := f.orch.AdminDelete(context.Background(), id)
	require.NoError(t, err)

	// A soft-deleted reservation is invisible to plain updates.
	theme := "jungle"
	_, err = f.orch.Update(context.Background(), UpdateCommand{ReservationID: id, Theme: &theme})
	assert.Equal(t, KindNotFound, KindOf(err))

	// Reactivation cannot piggyback other changes.
	_, err = f.orch.Update(context.Background(), UpdateCommand{ReservationID: id, Reactivate: true, Theme: &theme})
	assert.Equal(t, KindValidation, KindOf(err))

	result, err := f.orch.Update(context.Background(), UpdateCommand{ReservationID: id, Reactivate: true})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, result.Reservation.Status)
	assert.True(t, result.Reservation.IsActive)
}

func TestUpdateReRunsGuardWhenTripleChanges(t *testing.T) {
	f := newEngineFixture(t)
	first := f.create(t, baseCreate())

	second := baseCreate()
	second.TimeSlotID = 2
	other := f.create(t, second)

	// Moving the second booking onto the first one's slot collides.
	slot := uint64(1)
	_, err := f.orch.Update(context.Background(), UpdateCommand{ReservationID: other.Reservation.ID, TimeSlotID: &slot})
	assert.Equal(t, KindSlotConflict, KindOf(err))

	// Updating fields outside the triple leaves the slot alone.
	theme := "retro"
	result, err := f.orch.Update(context.Background(), UpdateCommand{ReservationID: first.Reservation.ID, Theme: &theme})
	require.NoError(t, err)
	require.NotNil(t, result.Reservation.Theme)
	assert.Equal(t, "retro", *result.Reservation.Theme)
	assert.Equal(t, int64(115000), result.Reservation.TotalPriceCents)
}
