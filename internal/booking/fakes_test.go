package booking

import (
	"context"
	"errors"
	"sync"

	"github.com/venuebook/venue-booking-api/internal/model"
)

// fakeCatalog is an in-memory CatalogReader.
type fakeCatalog struct {
	mu       sync.Mutex
	venues   map[uint64]model.Venue
	services map[uint64]model.Service
	slots    map[uint64]model.TimeSlot
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		venues:   make(map[uint64]model.Venue),
		services: make(map[uint64]model.Service),
		slots:    make(map[uint64]model.TimeSlot),
	}
}

func (c *fakeCatalog) ActiveVenue(_ context.Context, id uint64) (*model.Venue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.venues[id]
	if !ok || !v.IsActive {
		return nil, NewError(KindNotFound, "venue %d not found", id)
	}
	out := v
	return &out, nil
}

func (c *fakeCatalog) ActiveServices(_ context.Context, ids []uint64) ([]model.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Service, 0, len(ids))
	for _, id := range ids {
		if s, ok := c.services[id]; ok && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (c *fakeCatalog) ActiveTimeSlot(_ context.Context, id uint64) (*model.TimeSlot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[id]
	if !ok || !s.IsActive {
		return nil, NewError(KindNotFound, "time slot %d not found", id)
	}
	out := s
	return &out, nil
}

func (c *fakeCatalog) setVenuePrice(id uint64, cents int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.venues[id]
	v.PriceCents = cents
	c.venues[id] = v
}

// memStore is an in-memory ReservationStore whose units apply
// their writes atomically at Commit, enforcing the slot uniqueness
// constraint the same way the database does. This makes the
// lost-race path observable in tests: two units can both pass the
// pre-check and only one commit wins.
type memStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.Reservation
	lines  map[uint64][]model.ReservationService
}

func newMemStore() *memStore {
	return &memStore{
		rows:  make(map[uint64]model.Reservation),
		lines: make(map[uint64][]model.ReservationService),
	}
}

func (s *memStore) Begin(context.Context) (ReservationUnit, error) {
	return &memUnit{store: s}, nil
}

func (s *memStore) FindByID(_ context.Context, id uint64, includeInactive bool) (*model.Reservation, []model.ReservationService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok || (!includeInactive && !row.IsActive) {
		return nil, nil, NewError(KindNotFound, "reservation %d not found", id)
	}
	out := row
	lines := append([]model.ReservationService(nil), s.lines[id]...)
	return &out, lines, nil
}

func (s *memStore) conflictLocked(venueID uint64, date string, slotID, excludeID uint64) bool {
	for _, row := range s.rows {
		if row.ID == excludeID || !row.IsActive {
			continue
		}
		if row.VenueID == venueID && row.Date == date && row.TimeSlotID == slotID {
			return true
		}
	}
	return false
}

type memUnit struct {
	store   *memStore
	pending []func() error
	done    bool
}

func (u *memUnit) FindConflict(_ context.Context, venueID uint64, date string, slotID, excludeID uint64) (bool, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return u.store.conflictLocked(venueID, date, slotID, excludeID), nil
}

func (u *memUnit) Insert(_ context.Context, res *model.Reservation, lines []model.ReservationService) error {
	u.pending = append(u.pending, func() error {
		if u.store.conflictLocked(res.VenueID, res.Date, res.TimeSlotID, 0) {
			return NewError(KindSlotConflict, "venue %d is already booked on %s for slot %d", res.VenueID, res.Date, res.TimeSlotID)
		}
		u.store.nextID++
		res.ID = u.store.nextID
		u.store.rows[res.ID] = *res
		u.store.lines[res.ID] = append([]model.ReservationService(nil), lines...)
		return nil
	})
	return nil
}

func (u *memUnit) Update(_ context.Context, res *model.Reservation, lines []model.ReservationService) error {
	u.pending = append(u.pending, func() error {
		if u.store.conflictLocked(res.VenueID, res.Date, res.TimeSlotID, res.ID) {
			return NewError(KindSlotConflict, "venue %d is already booked on %s for slot %d", res.VenueID, res.Date, res.TimeSlotID)
		}
		u.store.rows[res.ID] = *res
		if lines != nil {
			u.store.lines[res.ID] = append([]model.ReservationService(nil), lines...)
		}
		return nil
	})
	return nil
}

func (u *memUnit) SetStatus(_ context.Context, id uint64, status string) error {
	u.pending = append(u.pending, func() error {
		row := u.store.rows[id]
		row.Status = status
		u.store.rows[id] = row
		return nil
	})
	return nil
}

func (u *memUnit) SoftDelete(_ context.Context, id uint64, reason string) error {
	u.pending = append(u.pending, func() error {
		row := u.store.rows[id]
		row.Status = model.StatusCancelled
		row.IsActive = false
		if reason != "" {
			r := reason
			row.CancelReason = &r
		}
		u.store.rows[id] = row
		return nil
	})
	return nil
}

func (u *memUnit) Reactivate(_ context.Context, id uint64) error {
	u.pending = append(u.pending, func() error {
		row := u.store.rows[id]
		row.Status = model.StatusPending
		row.IsActive = true
		row.CancelReason = nil
		u.store.rows[id] = row
		return nil
	})
	return nil
}

func (u *memUnit) HardDelete(_ context.Context, id uint64) error {
	u.pending = append(u.pending, func() error {
		delete(u.store.rows, id)
		delete(u.store.lines, id)
		return nil
	})
	return nil
}

func (u *memUnit) Commit() error {
	if u.done {
		return errors.New("unit already finished")
	}
	u.done = true
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for _, apply := range u.pending {
		if err := apply(); err != nil {
			return err
		}
	}
	return nil
}

func (u *memUnit) Rollback() error {
	u.done = true
	u.pending = nil
	return nil
}

// fakeSink records notifications and can be told to fail.
type fakeSink struct {
	mu      sync.Mutex
	records []model.Notification
	fail    error
}

func (s *fakeSink) Record(_ context.Context, userID uint64, kind, title, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.records = append(s.records, model.Notification{UserID: userID, Kind: kind, Title: title, Message: message})
	return nil
}

func (s *fakeSink) forUser(userID uint64) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Notification
	for _, n := range s.records {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// fakeMailer records sends and can be told to fail.
type fakeMailer struct {
	mu            sync.Mutex
	enabled       bool
	fail          error
	confirmations []string
	cancellations []string
}

func (m *fakeMailer) Enabled() bool { return m.enabled }

func (m *fakeMailer) SendConfirmation(_ context.Context, to string, _ MailSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.confirmations = append(m.confirmations, to)
	return nil
}

func (m *fakeMailer) SendCancellation(_ context.Context, to string, _ MailSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.cancellations = append(m.cancellations, to)
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []EventKind
}

func (p *fakePublisher) PublishReservationEvent(kind EventKind, _ *model.Reservation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, kind)
	return nil
}

// fakeDirectory resolves contacts and staff recipients.
type fakeDirectory struct {
	contacts map[uint64][2]string // userID -> {name, email}
	staff    []uint64
}

func (d *fakeDirectory) CustomerContact(_ context.Context, userID uint64) (string, string, error) {
	c, ok := d.contacts[userID]
	if !ok {
		return "", "", NewError(KindNotFound, "user %d not found", userID)
	}
	return c[0], c[1], nil
}

func (d *fakeDirectory) StaffRecipients(context.Context) ([]uint64, error) {
	return append([]uint64(nil), d.staff...), nil
}
