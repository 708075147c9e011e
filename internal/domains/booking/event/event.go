// Package event publishes booking and room lifecycle events for the audit worker.
package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"roombook/config"
	"roombook/infras/kafka"
	"roombook/infras/otel"
	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/schedule"
	"roombook/shared/constant"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Type string

const (
	TypeBookingSubmitted Type = "booking.submitted"
	TypeBookingApproved  Type = "booking.approved"
	TypeBookingRejected  Type = "booking.rejected"
	TypeBookingDeleted   Type = "booking.deleted"
	TypeRoomDeleted      Type = "room.deleted"
)

type Event struct {
	ID              string    `json:"id"`
	Type            Type      `json:"type"`
	BookingID       string    `json:"booking_id,omitempty"`
	RoomID          string    `json:"room_id"`
	UserID          string    `json:"user_id,omitempty"`
	ActorID         string    `json:"actor_id"`
	BookingDate     string    `json:"booking_date,omitempty"`
	StartTime       string    `json:"start_time,omitempty"`
	EndTime         string    `json:"end_time,omitempty"`
	Status          string    `json:"status,omitempty"`
	RemovedBookings int64     `json:"removed_bookings,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func FromBooking(eventType Type, booking model.Booking, actorID string, at time.Time) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		BookingID:   booking.ID,
		RoomID:      booking.RoomID,
		UserID:      booking.UserID,
		ActorID:     actorID,
		BookingDate: schedule.FormatDate(booking.BookingDate),
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		Status:      booking.Status,
		OccurredAt:  at,
	}
}

func RoomDeleted(roomID, actorID string, removed int64, at time.Time) Event {
	return Event{
		ID:              uuid.NewString(),
		Type:            TypeRoomDeleted,
		RoomID:          roomID,
		ActorID:         actorID,
		RemovedBookings: removed,
		OccurredAt:      at,
	}
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

type kafkaPublisher struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

// New returns a Kafka backed publisher, or a publisher that drops everything when events are disabled.
func New(cfg *config.Config, client kafka.Client, otl otel.Otel) Publisher {
	if !cfg.Booking.Events.Enable || client == nil {
		log.Info().Msg("booking events disabled")

		return noopPublisher{}
	}

	return &kafkaPublisher{
		client: client,
		topic:  cfg.Kafka.Topic.BookingEvents,
		otel:   otl,
	}
}

// Publish keys every message by room id so events of one room stay ordered within a partition.
func (p *kafkaPublisher) Publish(ctx context.Context, events ...Event) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	messages := make([]kafka.Message, 0, len(events))
	for _, evt := range events {
		messages = append(messages, kafka.Message{Key: evt.RoomID, Value: evt})
	}

	if err = p.client.SendMessages(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish booking events: %w", err)
	}

	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, ...Event) error {
	return nil
}
