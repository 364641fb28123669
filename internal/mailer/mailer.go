// Package mailer sends the customer-facing booking emails over
// SMTP. It renders the confirmation and cancellation messages from
// the immutable summary the dispatcher hands it and is disabled
// gracefully when no SMTP host is configured.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"

	"github.com/venuebook/venue-booking-api/internal/booking"
)

// Config holds the SMTP settings. An empty Host disables the
// mailer entirely.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer implements booking.Mailer over gomail.
type Mailer struct {
	cfg Config
	log zerolog.Logger
}

// New builds a Mailer from the given config.
func New(cfg Config, log zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log.With().Str("component", "mailer").Logger()}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m.cfg.Host != "" }

// SendConfirmation emails the customer that their booking was
// confirmed.
func (m *Mailer) SendConfirmation(ctx context.Context, to string, s booking.MailSummary) error {
	subject := fmt.Sprintf("Reservation #%d confirmed", s.ReservationID)
	intro := fmt.Sprintf("Hi %s, your reservation has been confirmed. We look forward to hosting you.", s.CustomerName)
	return m.send(ctx, to, subject, renderBody(intro, s, ""))
}

// SendCancellation emails the customer that their booking was
// cancelled.
func (m *Mailer) SendCancellation(ctx context.Context, to string, s booking.MailSummary) error {
	subject := fmt.Sprintf("Reservation #%d cancelled", s.ReservationID)
	intro := fmt.Sprintf("Hi %s, your reservation has been cancelled.", s.CustomerName)
	return m.send(ctx, to, subject, renderBody(intro, s, s.CancelReason))
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if !m.Enabled() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	m.log.Debug().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// renderBody builds the shared HTML summary block: venue, date,
// slot window, theme, service lines and the total.
func renderBody(intro string, s booking.MailSummary, reason string) string {
	var b strings.Builder
	b.WriteString("<p>" + intro + "</p>")
	b.WriteString("<table cellpadding=\"4\">")
	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString("<tr><td><strong>" + label + "</strong></td><td>" + value + "</td></tr>")
	}
	row("Venue", s.VenueTitle)
	row("Address", s.VenueAddress)
	row("Date", s.Date)
	if s.SlotStart != "" {
		row("Time", s.SlotStart+" - "+s.SlotEnd)
	}
	row("Theme", s.Theme)
	if reason != "" {
		row("Reason", reason)
	}
	b.WriteString("</table>")

	if len(s.Services) > 0 {
		b.WriteString("<p><strong>Services</strong></p><ul>")
		for _, svc := range s.Services {
			b.WriteString(fmt.Sprintf("<li>%s: %s</li>", svc.Description, formatCents(svc.PriceCents)))
		}
		b.WriteString("</ul>")
	}
	b.WriteString(fmt.Sprintf("<p><strong>Total: %s</strong></p>", formatCents(s.TotalCents)))
	return b.String()
}

// formatCents renders an integer cent amount as a decimal string
// without going through floating point.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
