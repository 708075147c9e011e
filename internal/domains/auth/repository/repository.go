package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks -mock_names=Account=MockAccountRepository

import (
	"context"
	"time"

	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/internal/domains/auth/model"
	"roombook/shared"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	gRepo "roombook/shared/repository"
)

type Account interface {
	Create(ctx context.Context, account model.Account) error
	EmailTaken(ctx context.Context, email string) (bool, error)
	ByEmail(ctx context.Context, email string) (model.Account, error)
	ByID(ctx context.Context, id string) (model.Account, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

type repository struct {
	gRepo.Repository[model.Account]
}

func New(db *postgres.Connection, otel otel.Otel) Account {
	return &repository{
		Repository: gRepo.NewRepository[model.Account](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

func byEmail(email string) gDto.FilterGroup {
	return shared.FilterByID(email, model.FieldEmail, model.TableName)
}

func (r *repository) Create(ctx context.Context, account model.Account) error {
	return r.Insert(ctx, account)
}

func (r *repository) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.Exist(ctx, byEmail(email))
}

// ByEmail returns a zero Account when nobody registered the address.
func (r *repository) ByEmail(ctx context.Context, email string) (model.Account, error) {
	return r.Get(ctx, byEmail(email))
}

func (r *repository) ByID(ctx context.Context, id string) (model.Account, error) {
	return r.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
}

func (r *repository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.Update(ctx, map[string]any{
		model.FieldLastLogin:     at,
		constant.FieldModifiedAt: at,
		constant.FieldModifiedBy: id,
	}, shared.FilterByID(id, model.FieldID, model.TableName))
}
