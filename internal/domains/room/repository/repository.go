package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/internal/domains/booking/schedule"
	"roombook/internal/domains/room/model"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/logger"
	gRepo "roombook/shared/repository"

	"github.com/jmoiron/sqlx"
)

const (
	queryDeleteRoomBookings = `DELETE FROM bookings WHERE room_id = $1`

	queryApprovedOutsideHours = `SELECT COUNT(*) FROM bookings
		WHERE room_id = $1 AND status = 'approved' AND booking_date >= $2
		AND (start_minute < $3 OR end_minute > $4)`
)

type Room interface {
	Insert(ctx context.Context, model model.Room) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Room, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Room, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	DeleteCascade(ctx context.Context, id string) (int64, error)
	ApprovedOutsideHours(ctx context.Context, id string, hours schedule.Hours, from time.Time) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Room]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// DeleteCascade removes the room and all of its bookings in one transaction and returns the number of
// bookings removed.
func (r *repositoryImpl) DeleteCascade(ctx context.Context, id string) (removed int64, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.DeleteCascade")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryDeleteRoomBookings)

	err = r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, queryDeleteRoomBookings, id)
		if err != nil {
			logger.ErrorWithStack(err)

			return fmt.Errorf("failed to delete bookings of room %s: %w", id, err)
		}

		if removed, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}

		return r.DeleteTx(ctx, tx, gDto.FilterGroup{
			Filters: []any{gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName}},
		})
	})
	if err != nil {
		scope.TraceError(err)

		return 0, err
	}

	return removed, nil
}

// ApprovedOutsideHours counts the approved bookings of the room dated from onwards whose window does not fit hours.
func (r *repositoryImpl) ApprovedOutsideHours(ctx context.Context, id string, hours schedule.Hours, from time.Time) (int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.ApprovedOutsideHours")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryApprovedOutsideHours)

	var count int

	err := r.db.Read.GetContext(ctx, &count, queryApprovedOutsideHours, id, schedule.FormatDate(from), hours.Open, hours.Close)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to count approved bookings outside hours: %w", err)
	}

	return count, nil
}
