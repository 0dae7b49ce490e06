package events

import (
	"context"
	"time"

	"hyrra/pkg/kafka"
	"hyrra/pkg/logger"
	"hyrra/pkg/model"
)

const (
	EventBookingCreated = "booking.created"
	EventBookingDeleted = "booking.deleted"

	schemaVersion = "1"
	sourceService = "bookings"
)

// BookingEvent is the payload the notification dispatcher consumes.
type BookingEvent struct {
	BookingID   string    `json:"booking_id"`
	PropertyID  string    `json:"property_id"`
	RequesterID string    `json:"requester_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Category    string    `json:"category"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher announces booking lifecycle changes. Publishing is fire and
// forget: notification dispatch must never block or fail a committed booking.
type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingDeleted(ctx context.Context, booking *model.Booking)
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, EventBookingCreated, booking)
}

func (p *kafkaPublisher) BookingDeleted(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, EventBookingDeleted, booking)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, booking *model.Booking) {
	msg := kafka.NewMessage().
		WithKey(booking.PropertyID).
		WithValue(BookingEvent{
			BookingID:   booking.ID,
			PropertyID:  booking.PropertyID,
			RequesterID: booking.RequesterID,
			Start:       booking.Start,
			End:         booking.End,
			Category:    string(booking.Category),
			OccurredAt:  time.Now().UTC(),
		}).
		WithEventType(eventType).
		WithSchemaVersion(schemaVersion).
		WithSource(sourceService).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"property_id", booking.PropertyID,
			"error", err,
		)
	}
}

type noopPublisher struct{}

// NewNoopPublisher is used when no broker is configured; the scheduling core
// works without the notification pipeline.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) BookingCreated(context.Context, *model.Booking) {}
func (noopPublisher) BookingDeleted(context.Context, *model.Booking) {}
func (noopPublisher) Close() error                                   { return nil }
