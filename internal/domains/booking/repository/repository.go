package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/schedule"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/logger"
	gRepo "roombook/shared/repository"
	"roombook/shared/timezone"

	"github.com/jmoiron/sqlx"
)

const (
	queryApprovedSlots = `SELECT id, booking_date, start_time, end_time FROM bookings
WHERE room_id = $1 AND booking_date = $2 AND status = 'approved' AND ($3 = '' OR id <> $3)
ORDER BY start_time`

	querySlotLock = `SELECT pg_advisory_xact_lock(hashtext($1))`

	queryGetForUpdate = `SELECT id, room_id, user_id, booking_date, start_time, end_time, purpose, status,
created_at, modified_at, created_by, modified_by
FROM bookings WHERE id = $1 FOR UPDATE`

	queryUpdateStatus = `UPDATE bookings SET status = $1, modified_at = $2, modified_by = $3
WHERE id = $4 AND status = $5`
)

type Booking interface {
	schedule.ApprovedFinder

	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error

	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	LockSlotTx(ctx context.Context, tx *sqlx.Tx, roomID string, date time.Time) error
	FindApprovedTx(ctx context.Context, tx *sqlx.Tx, roomID string, date time.Time, excludeID string) ([]schedule.Slot, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (model.Booking, error)
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.Booking) error
	UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id string, from, to schedule.Status, actor string) (bool, error)
	DeleteTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

type slotRow struct {
	ID          string    `db:"id"`
	BookingDate time.Time `db:"booking_date"`
	StartTime   string    `db:"start_time"`
	EndTime     string    `db:"end_time"`
}

func toSlots(rows []slotRow) ([]schedule.Slot, error) {
	slots := make([]schedule.Slot, 0, len(rows))

	for _, row := range rows {
		window, err := schedule.ParseWindow(row.StartTime, row.EndTime)
		if err != nil {
			return nil, fmt.Errorf("stored booking %s has an invalid window: %w", row.ID, err)
		}

		slots = append(slots, schedule.Slot{BookingID: row.ID, Date: schedule.Day(row.BookingDate), Window: window})
	}

	return slots, nil
}

// FindApproved implements schedule.ApprovedFinder on the read connection.
func (r *repositoryImpl) FindApproved(ctx context.Context, roomID string, date time.Time, excludeID string) ([]schedule.Slot, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.FindApproved")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryApprovedSlots)

	var rows []slotRow

	err := r.db.Read.SelectContext(ctx, &rows, queryApprovedSlots, roomID, schedule.FormatDate(date), excludeID)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to find approved bookings: %w", err)
	}

	return toSlots(rows)
}

// FindApprovedTx reads the approved slots and row-locks them until the transaction ends.
func (r *repositoryImpl) FindApprovedTx(ctx context.Context, tx *sqlx.Tx, roomID string, date time.Time, excludeID string) ([]schedule.Slot, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.FindApprovedTx")
	defer scope.End()

	query := queryApprovedSlots + " FOR UPDATE"
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var rows []slotRow

	if err := tx.SelectContext(ctx, &rows, query, roomID, schedule.FormatDate(date), excludeID); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to find approved bookings: %w", err)
	}

	return toSlots(rows)
}

// LockSlotTx takes a transaction scoped advisory lock on (room, date). FOR UPDATE alone cannot
// block two inserts into an empty day.
func (r *repositoryImpl) LockSlotTx(ctx context.Context, tx *sqlx.Tx, roomID string, date time.Time) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.LockSlotTx")
	defer scope.End()

	if _, err := tx.ExecContext(ctx, querySlotLock, SlotKey(roomID, date)); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to lock booking slot: %w", err)
	}

	return nil
}

func (r *repositoryImpl) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetForUpdateTx")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryGetForUpdate)

	var booking model.Booking

	err := tx.GetContext(ctx, &booking, queryGetForUpdate, id)
	if errors.Is(err, sql.ErrNoRows) {
		return booking, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return booking, fmt.Errorf("failed to get booking for update: %w", err)
	}

	return booking, nil
}

// UpdateStatusTx moves a booking from one status to another. It reports false when the row
// was no longer in the from status.
func (r *repositoryImpl) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id string, from, to schedule.Status, actor string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.UpdateStatusTx")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryUpdateStatus)

	res, err := tx.ExecContext(ctx, queryUpdateStatus, to.String(), timezone.Now(), actor, id, from.String())
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to update booking status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected == 1, nil
}

// SlotKey names the (room, date) pair used by every lock on a booking day.
func SlotKey(roomID string, date time.Time) string {
	return roomID + ":" + schedule.FormatDate(date)
}
