package service

import (
	"context"
	"fmt"

	"roombook/internal/domains/booking/model/dto"
	"roombook/internal/domains/booking/schedule"
	roomModel "roombook/internal/domains/room/model"
	"roombook/shared"
	"roombook/shared/constant"
	"roombook/shared/validator"

	"github.com/rs/zerolog/log"
)

// ValidateSubmission applies the booking rules in a fixed order and stops at the first failure:
// missing fields, time format, time order, room existence, date, operating hours, then conflicts
// with approved bookings. Nothing is written.
func (s *serviceImpl) ValidateSubmission(ctx context.Context, req dto.SubmitBookingRequest) (res dto.ValidatedBooking, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ValidateSubmission")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err //nolint:wrapcheck
	}

	window, err := schedule.ParseWindow(req.StartTime, req.EndTime)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	room, err := s.roomRepo.Get(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, schedule.RoomNotFound(req.RoomID) //nolint:wrapcheck
	}

	date, err := schedule.ParseDate(req.BookingDate)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if err = schedule.NotBefore(date, s.clock.Now()); err != nil {
		return res, err //nolint:wrapcheck
	}

	hours, err := room.Hours()
	if err != nil {
		log.Error().Err(err).Str("roomID", room.ID).Msg("room has invalid operating hours")

		return res, fmt.Errorf("room %s has invalid operating hours: %w", room.ID, err)
	}

	if err = hours.Contains(window); err != nil {
		return res, err //nolint:wrapcheck
	}

	conflict, err := s.detector.FindConflict(ctx, room.ID, date, window, constant.Empty)
	if err != nil {
		log.Error().Err(err).Msg("failed to check booking conflicts")

		return res, err //nolint:wrapcheck
	}

	if err = conflict.Err(); err != nil {
		log.Warn().Str("roomID", room.ID).Str("with", conflict.With.BookingID).Msg("booking request conflicts with an approved booking")

		return res, err //nolint:wrapcheck
	}

	return dto.ValidatedBooking{
		RoomID:      room.ID,
		RoomName:    room.Name,
		BookingDate: date,
		Window:      window,
		StartTime:   window.StartClock(),
		EndTime:     window.EndClock(),
		Purpose:     req.Purpose,
	}, nil
}

// CheckConflict reports whether the window overlaps an approved booking of the room on that day.
func (s *serviceImpl) CheckConflict(ctx context.Context, query dto.ConflictQuery) (res dto.ConflictResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckConflict")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&query); err != nil {
		return res, err //nolint:wrapcheck
	}

	window, err := schedule.ParseWindow(query.StartTime, query.EndTime)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	date, err := schedule.ParseDate(query.BookingDate)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	result, err := s.detector.FindConflict(ctx, query.RoomID, date, window, query.ExcludeID)
	if err != nil {
		log.Error().Err(err).Msg("failed to check booking conflicts")

		return res, err //nolint:wrapcheck
	}

	res.FromResult(result)

	return res, nil
}
