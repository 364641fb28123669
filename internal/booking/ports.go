package booking

import (
	"context"

	"github.com/venuebook/venue-booking-api/internal/model"
)

// CatalogReader is the read-only view of the reference data the
// engine needs: venue prices, service prices and time slots. Only
// active rows are visible through it. Implemented by the
// repository layer.
type CatalogReader interface {
	// ActiveVenue returns the venue when it exists and is active.
	ActiveVenue(ctx context.Context, venueID uint64) (*model.Venue, error)
	// ActiveServices resolves every id to an active service. When
	// one or more ids are missing or inactive the whole batch is
	// rejected and the returned error names the offending ids.
	ActiveServices(ctx context.Context, ids []uint64) ([]model.Service, error)
	// ActiveTimeSlot returns the slot when it exists and is active.
	ActiveTimeSlot(ctx context.Context, slotID uint64) (*model.TimeSlot, error)
}

// ConflictChecker answers whether another active reservation
// already occupies a (venue, date, slot) triple. excludeID is the
// reservation being modified so updates do not collide with
// themselves; zero means no exclusion.
type ConflictChecker interface {
	FindConflict(ctx context.Context, venueID uint64, date string, slotID, excludeID uint64) (bool, error)
}

// ReservationUnit is one atomic unit of work against the
// reservation store. All writes inside it either commit together
// or roll back together. Implementations must translate a
// storage-level uniqueness violation on the slot triple into a
// KindSlotConflict error so races lost at commit time surface the
// same way as conflicts caught by the pre-check.
type ReservationUnit interface {
	ConflictChecker

	// Insert persists a new reservation with its service lines and
	// fills in the generated id.
	Insert(ctx context.Context, res *model.Reservation, lines []model.ReservationService) error
	// Update rewrites the mutable columns of an existing
	// reservation and replaces its service lines when lines is
	// non-nil.
	Update(ctx context.Context, res *model.Reservation, lines []model.ReservationService) error
	// SetStatus updates only the status column.
	SetStatus(ctx context.Context, id uint64, status string) error
	// SoftDelete marks the reservation cancelled and inactive,
	// recording the reason when non-empty.
	SoftDelete(ctx context.Context, id uint64, reason string) error
	// Reactivate restores a soft-deleted reservation to
	// pending/active.
	Reactivate(ctx context.Context, id uint64) error
	// HardDelete removes the reservation and its service lines
	// permanently.
	HardDelete(ctx context.Context, id uint64) error

	Commit() error
	Rollback() error
}

// ReservationStore is the persistence collaborator of the
// orchestrator. Reads run directly; every mutation happens inside
// a ReservationUnit.
type ReservationStore interface {
	Begin(ctx context.Context) (ReservationUnit, error)
	// FindByID loads a reservation with its service lines. When
	// includeInactive is false a soft-deleted reservation is
	// reported as not found.
	FindByID(ctx context.Context, id uint64, includeInactive bool) (*model.Reservation, []model.ReservationService, error)
}

// NotificationSink records one in-app notification.
type NotificationSink interface {
	Record(ctx context.Context, userID uint64, kind, title, message string) error
}

// Mailer sends the customer-facing booking emails. Implementations
// may be disabled by configuration, in which case Enabled reports
// false and the dispatcher skips email tasks.
type Mailer interface {
	Enabled() bool
	SendConfirmation(ctx context.Context, to string, summary MailSummary) error
	SendCancellation(ctx context.Context, to string, summary MailSummary) error
}

// EventPublisher emits one message per committed booking mutation
// to the event stream consumed by the audit writer.
type EventPublisher interface {
	PublishReservationEvent(kind EventKind, res *model.Reservation) error
}

// RecipientDirectory resolves who receives side effects: the
// booking customer's contact details and the set of staff and
// admin accounts notified about new bookings.
type RecipientDirectory interface {
	CustomerContact(ctx context.Context, userID uint64) (name, email string, err error)
	StaffRecipients(ctx context.Context) ([]uint64, error)
}

// MailSummary is the immutable snapshot rendered into the
// confirmation and cancellation emails.
type MailSummary struct {
	ReservationID uint64
	CustomerName  string
	VenueTitle    string
	VenueAddress  string
	Date          string
	SlotStart     string
	SlotEnd       string
	Theme         string
	Services      []MailServiceLine
	TotalCents    int64
	CancelReason  string
}

// MailServiceLine is one add-on row in an email summary.
type MailServiceLine struct {
	Description string
	PriceCents  int64
}
