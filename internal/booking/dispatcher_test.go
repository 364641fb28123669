package booking

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/venuebook/venue-booking-api/internal/model"
)

func dispatcherUnderTest(sink *fakeSink, mailer *fakeMailer, events *fakePublisher) *SideEffectDispatcher {
	directory := &fakeDirectory{
		contacts: map[uint64][2]string{fixtureCustomer: {"Ana Torres", "ana@example.com"}},
		staff:    []uint64{1},
	}
	return NewSideEffectDispatcher(sink, mailer, events, directory, zerolog.Nop())
}

func TestDispatchFailureDomainsAreIndependent(t *testing.T) {
	sink := &fakeSink{fail: assert.AnError}
	mailer := &fakeMailer{enabled: true}
	events := &fakePublisher{}
	d := dispatcherUnderTest(sink, mailer, events)

	res := &model.Reservation{ID: 5, CustomerID: fixtureCustomer}
	d.Dispatch(res, MailSummary{ReservationID: 5}, EventConfirmed)
	d.Wait()

	// The notification sink failed, the email and the event still
	// went out.
	assert.Equal(t, []string{"ana@example.com"}, mailer.confirmations)
	assert.Equal(t, []EventKind{EventConfirmed}, events.events)
}

func TestDispatchAdvisoryWhenMailDisabled(t *testing.T) {
	sink := &fakeSink{}
	mailer := &fakeMailer{enabled: false}
	d := dispatcherUnderTest(sink, mailer, &fakePublisher{})

	res := &model.Reservation{ID: 5, CustomerID: fixtureCustomer}
	advisory := d.Dispatch(res, MailSummary{}, EventCancelled)
	d.Wait()

	assert.Contains(t, advisory, "email transport disabled")
	assert.Empty(t, mailer.cancellations)
	assert.NotEmpty(t, sink.forUser(fixtureCustomer))
}

func TestDispatchPurgeOnlyPublishes(t *testing.T) {
	sink := &fakeSink{}
	mailer := &fakeMailer{enabled: true}
	events := &fakePublisher{}
	d := dispatcherUnderTest(sink, mailer, events)

	res := &model.Reservation{ID: 5, CustomerID: fixtureCustomer}
	advisory := d.Dispatch(res, MailSummary{ReservationID: 5}, EventPurged)
	d.Wait()

	assert.Equal(t, []string{"audit event scheduled"}, advisory)
	assert.Empty(t, sink.records)
	assert.Empty(t, mailer.confirmations)
	assert.Equal(t, []EventKind{EventPurged}, events.events)
}

func TestDispatchCreatedNotifiesStaff(t *testing.T) {
	sink := &fakeSink{}
	d := dispatcherUnderTest(sink, &fakeMailer{}, &fakePublisher{})

	res := &model.Reservation{ID: 9, CustomerID: fixtureCustomer}
	d.Dispatch(res, MailSummary{CustomerName: "Ana Torres", VenueTitle: "Salon Azul"}, EventCreated)
	d.Wait()

	assert.Len(t, sink.forUser(fixtureCustomer), 1)
	assert.Len(t, sink.forUser(1), 1)
}
