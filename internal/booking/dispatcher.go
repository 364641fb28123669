package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/venuebook/venue-booking-api/internal/model"
)

// defaultDispatchTimeout bounds each background task. Mail
// transports can hang on dead SMTP servers; nothing a side effect
// does should take longer than this.
const defaultDispatchTimeout = 30 * time.Second

// SideEffectDispatcher fires the post-commit work a booking
// mutation produces: in-app notification records, confirmation
// and cancellation emails and one event-stream message. Every
// task runs in its own goroutine with its own error handling;
// failures are logged with the reservation id, event kind and
// cause, and never reach the caller. Dispatch only schedules work,
// it does not wait for it.
type SideEffectDispatcher struct {
	notices   NotificationSink
	mailer    Mailer
	events    EventPublisher
	directory RecipientDirectory
	log       zerolog.Logger
	timeout   time.Duration

	wg sync.WaitGroup
}

// NewSideEffectDispatcher constructs a dispatcher. notices and
// directory must be non-nil; mailer and events may be nil when the
// corresponding subsystem is disabled by configuration.
func NewSideEffectDispatcher(notices NotificationSink, mailer Mailer, events EventPublisher, directory RecipientDirectory, log zerolog.Logger) *SideEffectDispatcher {
	if notices == nil || directory == nil {
		panic("nil collaborator passed to NewSideEffectDispatcher")
	}
	return &SideEffectDispatcher{
		notices:   notices,
		mailer:    mailer,
		events:    events,
		directory: directory,
		log:       log.With().Str("component", "dispatcher").Logger(),
		timeout:   defaultDispatchTimeout,
	}
}

// Dispatch schedules the side effects for a committed reservation
// and returns advisory notes describing what was scheduled. The
// reservation and summary are immutable snapshots; the initiating
// request's context is deliberately not used because these tasks
// outlive it.
func (d *SideEffectDispatcher) Dispatch(res *model.Reservation, summary MailSummary, kind EventKind) []string {
	advisory := make([]string, 0, 3)

	// A purge leaves nothing to notify anyone about; only the
	// audit event is emitted.
	if kind == EventPurged {
		if d.events != nil {
			d.spawn(res.ID, kind, "publish-event", func(ctx context.Context) error {
				return d.events.PublishReservationEvent(kind, res)
			})
			advisory = append(advisory, "audit event scheduled")
		}
		return advisory
	}

	d.spawn(res.ID, kind, "notify-customer", func(ctx context.Context) error {
		title, message := noticeText(kind, summary)
		return d.notices.Record(ctx, res.CustomerID, string(kind), title, message)
	})
	advisory = append(advisory, "customer notification scheduled")

	if kind == EventCreated {
		d.spawn(res.ID, kind, "notify-staff", func(ctx context.Context) error {
			recipients, err := d.directory.StaffRecipients(ctx)
			if err != nil {
				return err
			}
			title := "New reservation"
			message := fmt.Sprintf("%s booked %s on %s (%s-%s).",
				summary.CustomerName, summary.VenueTitle, summary.Date, summary.SlotStart, summary.SlotEnd)
			var firstErr error
			for _, userID := range recipients {
				if err := d.notices.Record(ctx, userID, string(kind), title, message); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			return firstErr
		})
		advisory = append(advisory, "staff notifications scheduled")
	}

	if kind == EventConfirmed || kind == EventCancelled {
		if d.mailer != nil && d.mailer.Enabled() {
			mailKind := kind
			d.spawn(res.ID, kind, "email-customer", func(ctx context.Context) error {
				_, email, err := d.directory.CustomerContact(ctx, res.CustomerID)
				if err != nil {
					return err
				}
				if mailKind == EventConfirmed {
					return d.mailer.SendConfirmation(ctx, email, summary)
				}
				return d.mailer.SendCancellation(ctx, email, summary)
			})
			advisory = append(advisory, "email scheduled")
		} else {
			advisory = append(advisory, "email transport disabled")
		}
	}

	if d.events != nil {
		d.spawn(res.ID, kind, "publish-event", func(ctx context.Context) error {
			return d.events.PublishReservationEvent(kind, res)
		})
	}

	return advisory
}

// Wait blocks until every scheduled task has finished. Used on
// shutdown and in tests; regular request handling never calls it.
func (d *SideEffectDispatcher) Wait() { d.wg.Wait() }

// spawn runs fn in its own goroutine with a bounded context and
// logs the outcome. Each task gets a correlation id so concurrent
// dispatches for the same reservation can be told apart in logs.
func (d *SideEffectDispatcher) spawn(resID uint64, kind EventKind, task string, fn func(ctx context.Context) error) {
	taskID := uuid.NewString()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			d.log.Error().
				Err(err).
				Uint64("reservation_id", resID).
				Str("event", string(kind)).
				Str("task", task).
				Str("task_id", taskID).
				Msg("side effect failed")
			return
		}
		d.log.Debug().
			Uint64("reservation_id", resID).
			Str("event", string(kind)).
			Str("task", task).
			Str("task_id", taskID).
			Msg("side effect delivered")
	}()
}

// noticeText renders the in-app notification for the customer.
func noticeText(kind EventKind, s MailSummary) (title, message string) {
	when := fmt.Sprintf("%s on %s (%s-%s)", s.VenueTitle, s.Date, s.SlotStart, s.SlotEnd)
	switch kind {
	case EventCreated:
		return "Reservation received", fmt.Sprintf("Your reservation for %s was received and is pending confirmation.", when)
	case EventConfirmed:
		return "Reservation confirmed", fmt.Sprintf("Your reservation for %s has been confirmed.", when)
	case EventCancelled:
		if s.CancelReason != "" {
			return "Reservation cancelled", fmt.Sprintf("Your reservation for %s was cancelled. Reason: %s", when, s.CancelReason)
		}
		return "Reservation cancelled", fmt.Sprintf("Your reservation for %s was cancelled.", when)
	default:
		return "Reservation updated", fmt.Sprintf("Your reservation for %s was updated.", when)
	}
}
