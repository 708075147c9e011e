package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"roombook/infras/otel"
	"roombook/internal/domains/audit/model"
	"roombook/internal/domains/audit/repository"
	"roombook/internal/domains/booking/event"
	"roombook/internal/domains/booking/schedule"
	"roombook/shared/constant"
	"roombook/shared/failure"
	"roombook/shared/timezone"

	"github.com/rs/zerolog/log"
)

type Recorder interface {
	Record(ctx context.Context, evt event.Event) error
}

type serviceImpl struct {
	repo repository.Audit
	otel otel.Otel
	now  func() time.Time
}

func New(repo repository.Audit, otel otel.Otel) Recorder {
	return &serviceImpl{
		repo: repo,
		otel: otel,
		now:  timezone.Now,
	}
}

// Record stores evt once. Redelivered events are acknowledged without a second row.
func (s *serviceImpl) Record(ctx context.Context, evt event.Event) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Record")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	audit, err := toModel(evt, s.now())
	if err != nil {
		log.Warn().Err(err).Str("eventID", evt.ID).Msg("dropping malformed booking event")

		return err
	}

	inserted, err := s.repo.Insert(ctx, audit)
	if err != nil {
		log.Error().Err(err).Str("eventID", evt.ID).Msg("failed to record booking event")

		return fmt.Errorf("failed to record booking event: %w", err)
	}

	if !inserted {
		log.Info().Str("eventID", evt.ID).Msg("booking event already recorded")

		return nil
	}

	log.Info().Str("eventID", evt.ID).Str("type", string(evt.Type)).Msg("booking event recorded")

	return nil
}

func toModel(evt event.Event, recordedAt time.Time) (model.BookingAudit, error) {
	if evt.ID == constant.Empty || evt.Type == constant.Empty || evt.RoomID == constant.Empty {
		return model.BookingAudit{}, failure.BadRequestFromString("booking event needs an id, a type and a room id") //nolint:wrapcheck
	}

	audit := model.BookingAudit{
		ID:              evt.ID,
		Type:            string(evt.Type),
		BookingID:       optional(evt.BookingID),
		RoomID:          evt.RoomID,
		UserID:          optional(evt.UserID),
		ActorID:         evt.ActorID,
		StartTime:       optional(evt.StartTime),
		EndTime:         optional(evt.EndTime),
		Status:          optional(evt.Status),
		RemovedBookings: evt.RemovedBookings,
		OccurredAt:      evt.OccurredAt,
		RecordedAt:      recordedAt,
	}

	if evt.BookingDate != constant.Empty {
		date, err := schedule.ParseDate(evt.BookingDate)
		if err != nil {
			return model.BookingAudit{}, err //nolint:wrapcheck
		}

		audit.BookingDate = &date
	}

	return audit, nil
}

func optional(value string) *string {
	if value == constant.Empty {
		return nil
	}

	return &value
}
