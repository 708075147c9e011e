package event_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"roombook/config"
	"roombook/infras/kafka"
	kafkaMocks "roombook/infras/kafka/mocks"
	otelMocks "roombook/infras/otel/mocks"
	"roombook/internal/domains/booking/event"
	"roombook/internal/domains/booking/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestFromBooking(t *testing.T) {
	at := time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)
	booking := model.Booking{
		ID:          "b1",
		RoomID:      "r1",
		UserID:      "u1",
		BookingDate: time.Date(2030, 5, 2, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00",
		EndTime:     "11:00",
		Status:      "approved",
	}

	evt := event.FromBooking(event.TypeBookingApproved, booking, "admin-1", at)

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, event.TypeBookingApproved, evt.Type)
	assert.Equal(t, "2030-05-02", evt.BookingDate)
	assert.Equal(t, "admin-1", evt.ActorID)
	assert.Equal(t, "approved", evt.Status)
	assert.Equal(t, at, evt.OccurredAt)
}

func TestPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Booking.Events.Enable = true
	cfg.Kafka.Topic.BookingEvents = "booking-events"

	publisher := event.New(cfg, mockKafka, otelMocks.NewOtel())
	evt := event.RoomDeleted("r1", "admin-1", 3, time.Now())

	t.Run("keys by room", func(t *testing.T) {
		mockKafka.EXPECT().
			SendMessages(gomock.Any(), "booking-events", kafka.Message{Key: "r1", Value: evt}).
			Return(nil)

		require.NoError(t, publisher.Publish(context.Background(), evt))
	})

	t.Run("send failure", func(t *testing.T) {
		mockKafka.EXPECT().
			SendMessages(gomock.Any(), "booking-events", gomock.Any()).
			Return(errors.New("broker down"))

		assert.Error(t, publisher.Publish(context.Background(), evt))
	})
}

func TestPublisher_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	publisher := event.New(&config.Config{}, kafkaMocks.NewMockClient(ctrl), otelMocks.NewOtel())

	assert.NoError(t, publisher.Publish(context.Background(), event.RoomDeleted("r1", "a", 0, time.Now())))
}
