package service

import (
	"context"
	"fmt"

	"roombook/internal/domains/booking/event"
	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/model/dto"
	"roombook/internal/domains/booking/repository"
	"roombook/internal/domains/booking/schedule"
	roomModel "roombook/internal/domains/room/model"
	"roombook/shared"
	"roombook/shared/constant"
	"roombook/shared/failure"
	"roombook/shared/identity"
	"roombook/shared/lock"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Submit validates the request and stores it as pending. The slot lock and the transaction
// re-check approved bookings so the validation result still holds at write time.
func (s *serviceImpl) Submit(ctx context.Context, req dto.SubmitBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Submit")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, ok := identity.FromContext(ctx)
	if !ok {
		return res, failure.Unauthorized("authentication required") // nolint:wrapcheck
	}

	validated, err := s.ValidateSubmission(ctx, req)
	if err != nil {
		return res, err
	}

	booking := validated.ToModel(caller.UserID, s.clock.Now())

	unlock, err := s.lockSlot(ctx, booking)
	if err != nil {
		return res, err
	}
	defer unlock()

	err = s.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.LockSlotTx(ctx, tx, booking.RoomID, booking.BookingDate); err != nil {
			return err //nolint:wrapcheck
		}

		slots, err := s.repo.FindApprovedTx(ctx, tx, booking.RoomID, booking.BookingDate, constant.Empty)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if err := schedule.FirstConflict(slots, validated.Window, constant.Empty).Err(); err != nil {
			return err //nolint:wrapcheck
		}

		return s.repo.InsertTx(ctx, tx, booking) //nolint:wrapcheck
	})
	if err != nil {
		return res, s.mapWriteError(err, booking.RoomID, "failed to submit booking")
	}

	log.Info().Str("bookingID", booking.ID).Str("roomID", booking.RoomID).Msg("booking submitted")

	s.afterWrite(ctx, constant.Empty, event.FromBooking(event.TypeBookingSubmitted, booking, caller.UserID, booking.CreatedAt))

	res.FromModel(booking)

	return res, nil
}

// Approve moves a pending booking to approved when it still fits the schedule. On a conflict the
// booking stays pending.
func (s *serviceImpl) Approve(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Approve")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.decide(ctx, id, schedule.StatusApproved, event.TypeBookingApproved)
}

// Reject moves a pending booking to rejected.
func (s *serviceImpl) Reject(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reject")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.decide(ctx, id, schedule.StatusRejected, event.TypeBookingRejected)
}

func (s *serviceImpl) decide(ctx context.Context, id string, next schedule.Status, eventType event.Type) (res dto.BookingResponse, err error) {
	caller, _ := identity.FromContext(ctx)
	if !caller.IsAdmin() {
		return res, failure.Forbidden("only an admin can " + actionName(next) + " bookings") // nolint:wrapcheck
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	unlock, err := s.lockSlot(ctx, booking)
	if err != nil {
		return res, err
	}
	defer unlock()

	err = s.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.LockSlotTx(ctx, tx, booking.RoomID, booking.BookingDate); err != nil {
			return err //nolint:wrapcheck
		}

		current, err := s.repo.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if current.ID == constant.Empty {
			return schedule.BookingNotFound(id) //nolint:wrapcheck
		}

		status := current.CurrentStatus()
		if err := status.Transition(next); err != nil {
			return err //nolint:wrapcheck
		}

		if next == schedule.StatusApproved {
			if err := s.checkApprovable(ctx, tx, current); err != nil {
				return err
			}
		}

		updated, err := s.repo.UpdateStatusTx(ctx, tx, id, status, next, caller.UserID)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if !updated {
			return schedule.InvalidState(status, "booking changed while it was being "+string(next)) //nolint:wrapcheck
		}

		return nil
	})
	if err != nil {
		return res, s.mapWriteError(err, booking.RoomID, "failed to "+actionName(next)+" booking")
	}

	booking.Status = next.String()
	booking.ModifiedAt = s.clock.Now()
	booking.ModifiedBy = caller.UserID

	log.Info().Str("bookingID", id).Str("status", booking.Status).Str("by", caller.UserID).Msg("booking decided")

	s.afterWrite(ctx, id, event.FromBooking(eventType, booking, caller.UserID, booking.ModifiedAt))

	res.FromModel(booking)

	return res, nil
}

// checkApprovable re-checks the window against the room's current hours, then runs the conflict detector
// against the locked approved rows, leaving out the booking itself.
func (s *serviceImpl) checkApprovable(ctx context.Context, tx *sqlx.Tx, booking model.Booking) error {
	window, err := booking.Window()
	if err != nil {
		return fmt.Errorf("booking %s has an invalid window: %w", booking.ID, err)
	}

	room, err := s.roomRepo.Get(ctx, shared.FilterByID(booking.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return schedule.RoomNotFound(booking.RoomID) //nolint:wrapcheck
	}

	hours, err := room.Hours()
	if err != nil {
		return fmt.Errorf("room %s has invalid operating hours: %w", room.ID, err)
	}

	if err = hours.Contains(window); err != nil {
		log.Warn().Str("bookingID", booking.ID).Str("roomID", room.ID).Msg("approval blocked by changed operating hours")

		return err //nolint:wrapcheck
	}

	slots, err := s.repo.FindApprovedTx(ctx, tx, booking.RoomID, booking.BookingDate, booking.ID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	result := schedule.FirstConflict(slots, window, booking.ID)
	if result.Conflict {
		log.Warn().Str("bookingID", booking.ID).Str("with", result.With.BookingID).Msg("approval blocked by an approved booking")
	}

	return result.Err()
}

// Delete removes a pending booking. Only its owner or an admin may do so.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := identity.FromContext(ctx)

	booking, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if !caller.CanAccess(booking.UserID) {
		return failure.Forbidden("only the owner or an admin can delete this booking") // nolint:wrapcheck
	}

	unlock, err := s.lockSlot(ctx, booking)
	if err != nil {
		return err
	}
	defer unlock()

	err = s.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := s.repo.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if current.ID == constant.Empty {
			return schedule.BookingNotFound(id) //nolint:wrapcheck
		}

		if status := current.CurrentStatus(); !status.Deletable() {
			return schedule.InvalidState(status, "only pending bookings can be deleted") //nolint:wrapcheck
		}

		return s.repo.DeleteTx(ctx, tx, shared.FilterByID(id, model.FieldID, model.TableName)) //nolint:wrapcheck
	})
	if err != nil {
		return s.mapWriteError(err, booking.RoomID, "failed to delete booking")
	}

	log.Info().Str("bookingID", id).Str("by", caller.UserID).Msg("booking deleted")

	s.afterWrite(ctx, id, event.FromBooking(event.TypeBookingDeleted, booking, caller.UserID, s.clock.Now()))

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, schedule.BookingNotFound(id) // nolint:wrapcheck
	}

	return booking, nil
}

func (s *serviceImpl) lockSlot(ctx context.Context, booking model.Booking) (lock.Unlock, error) {
	unlock, err := s.locker.Lock(ctx, repository.SlotKey(booking.RoomID, booking.BookingDate))
	if err != nil {
		log.Error().Err(err).Str("roomID", booking.RoomID).Msg("failed to lock booking slot")

		return nil, fmt.Errorf("failed to lock booking slot: %w", err)
	}

	return unlock, nil
}

// mapWriteError keeps business failures as they are and turns storage constraint violations into their
// business meaning.
func (s *serviceImpl) mapWriteError(err error, roomID, msg string) error {
	switch {
	case failure.GetReason(err) != constant.Empty:
		return err
	case shared.IsPqError(err, constant.PqErrorCodeExclusion):
		log.Warn().Err(err).Str("roomID", roomID).Msg("exclusion constraint rejected an overlapping approval")

		return schedule.StoredConflict()
	case shared.IsPqError(err, constant.PqErrorCodeFkViolation):
		return schedule.RoomNotFound(roomID)
	default:
		log.Error().Err(err).Msg(msg)

		return fmt.Errorf("%s: %w", msg, err)
	}
}

func actionName(status schedule.Status) string {
	if status == schedule.StatusApproved {
		return "approve"
	}

	return "reject"
}
