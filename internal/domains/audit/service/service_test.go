package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	otelMocks "roombook/infras/otel/mocks"
	"roombook/internal/domains/audit/mocks"
	"roombook/internal/domains/audit/model"
	"roombook/internal/domains/audit/service"
	"roombook/internal/domains/booking/event"
	"roombook/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var occurredAt = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func TestRecord(t *testing.T) {
	approved := event.Event{
		ID:          "evt-1",
		Type:        event.TypeBookingApproved,
		BookingID:   "booking-1",
		RoomID:      "room-1",
		UserID:      "user-1",
		ActorID:     "admin-1",
		BookingDate: "2025-06-02",
		StartTime:   "09:00",
		EndTime:     "10:00",
		Status:      "approved",
		OccurredAt:  occurredAt,
	}

	roomDeleted := event.RoomDeleted("room-1", "admin-1", 4, occurredAt)

	tests := []struct {
		name      string
		evt       event.Event
		setupMock func(repo *mocks.MockAudit)
		wantCode  int
	}{
		{
			name: "booking event",
			evt:  approved,
			setupMock: func(repo *mocks.MockAudit) {
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, audit model.BookingAudit) (bool, error) {
						assert.Equal(t, "evt-1", audit.ID)
						assert.Equal(t, string(event.TypeBookingApproved), audit.Type)
						require.NotNil(t, audit.BookingDate)
						assert.Equal(t, 2, audit.BookingDate.Day())
						require.NotNil(t, audit.BookingID)
						assert.Equal(t, "booking-1", *audit.BookingID)
						assert.False(t, audit.RecordedAt.IsZero())

						return true, nil
					})
			},
		},
		{
			name: "room event has no booking fields",
			evt:  roomDeleted,
			setupMock: func(repo *mocks.MockAudit) {
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, audit model.BookingAudit) (bool, error) {
						assert.Nil(t, audit.BookingID)
						assert.Nil(t, audit.BookingDate)
						assert.Equal(t, int64(4), audit.RemovedBookings)

						return true, nil
					})
			},
		},
		{
			name: "redelivered event",
			evt:  approved,
			setupMock: func(repo *mocks.MockAudit) {
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(false, nil)
			},
		},
		{
			name:      "event without id",
			evt:       event.Event{Type: event.TypeBookingSubmitted, RoomID: "room-1"},
			setupMock: func(*mocks.MockAudit) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "malformed date",
			evt: event.Event{
				ID: "evt-2", Type: event.TypeBookingSubmitted, RoomID: "room-1", BookingDate: "02/06/2025",
			},
			setupMock: func(*mocks.MockAudit) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "storage error",
			evt:  approved,
			setupMock: func(repo *mocks.MockAudit) {
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(false, errors.New("db down"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockAudit(ctrl)
			tt.setupMock(repo)

			err := service.New(repo, otelMocks.NewOtel()).Record(context.Background(), tt.evt)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}
