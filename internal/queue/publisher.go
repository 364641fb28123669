package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/venuebook/venue-booking-api/internal/booking"
	"github.com/venuebook/venue-booking-api/internal/model"
)

// reservationQueueName is the durable queue carrying booking
// mutation events.
const reservationQueueName = "reservation.events"

// Publisher emits ReservationEvent messages to RabbitMQ. Each
// publish opens its own short-lived connection so a broker outage
// never pins state inside the process; the dispatcher already
// isolates publish failures from the request path.
type Publisher struct {
	url string
	log zerolog.Logger
}

// NewPublisher returns a Publisher for the given AMQP URL. Callers
// pass nil to the dispatcher instead when no broker is configured.
func NewPublisher(url string, log zerolog.Logger) *Publisher {
	return &Publisher{url: url, log: log.With().Str("component", "queue-publisher").Logger()}
}

// PublishReservationEvent implements booking.EventPublisher.
// Messages are persistent and the queue is declared durable so
// events survive broker restarts.
func (p *Publisher) PublishReservationEvent(kind booking.EventKind, res *model.Reservation) error {
	event := ReservationEvent{
		Kind:            string(kind),
		ReservationID:   res.ID,
		CustomerID:      res.CustomerID,
		VenueID:         res.VenueID,
		TimeSlotID:      res.TimeSlotID,
		Date:            res.Date,
		Status:          res.Status,
		TotalPriceCents: res.TotalPriceCents,
		OccurredAt:      time.Now().UTC().Format(time.RFC3339),
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error().Err(err).Msg("dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error().Err(err).Msg("channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		reservationQueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		p.log.Error().Err(err).Msg("queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", reservationQueueName, false, false, pub); err != nil {
		p.log.Error().Err(err).Msg("publish failed")
		return err
	}
	return nil
}
