package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/internal/domains/audit/model"
	"roombook/shared/constant"
	"roombook/shared/logger"
)

const queryInsertAudit = `INSERT INTO booking_audits
(id, type, booking_id, room_id, user_id, actor_id, booking_date, start_time, end_time, status,
removed_bookings, occurred_at, recorded_at)
VALUES
(:id, :type, :booking_id, :room_id, :user_id, :actor_id, :booking_date, :start_time, :end_time, :status,
:removed_bookings, :occurred_at, :recorded_at)
ON CONFLICT (id) DO NOTHING`

type Audit interface {
	// Insert stores the audit row and reports false when a row with the same id already exists.
	Insert(ctx context.Context, audit model.BookingAudit) (bool, error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Audit {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

func (r *repositoryImpl) Insert(ctx context.Context, audit model.BookingAudit) (inserted bool, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".Insert")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryInsertAudit)

	res, err := r.db.Write.NamedExecContext(ctx, queryInsertAudit, audit)
	if err != nil {
		logger.ErrorWithStack(err)

		return false, fmt.Errorf("failed to insert booking audit: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}
