package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roombook/shared/constant"
	"roombook/shared/dto"
	"roombook/shared/logger"
)

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (bool, error) {
	ctx, scope := repo.scope(ctx, "Exist")
	defer scope.End()

	clause, args := where(filter)
	if clause == "" {
		return false, errRequiredFilter
	}

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s%s)", repo.table, clause)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	exist := false

	if err := repo.get(ctx, query, &exist, args); err != nil {
		return false, repo.fail(scope, "check existence", err)
	}

	return exist, nil
}

// Get returns the zero T when no row matches. Callers detect absence by an empty primary key.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.scope(ctx, "Get")
	defer scope.End()

	clause, args := where(filter)
	query := fmt.Sprintf("SELECT %s FROM %s %s%s", repo.columns.selectList(columns...), repo.table, repo.join, clause)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var model T

	err := repo.get(ctx, query, &model, args)
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	if err != nil {
		return model, repo.fail(scope, "get data", err)
	}

	return model, nil
}

func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.scope(ctx, "GetAll")
	defer scope.End()

	clause, args := where(filter)
	query := fmt.Sprintf("SELECT %s FROM %s %s%s%s%s", repo.columns.selectList(columns...), repo.table, repo.join,
		clause, repo.orderBy(params), paginate(params, args))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	models := []T{}

	stmt, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)

		return nil, repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	if err = stmt.SelectContext(ctx, &models, args); err != nil {
		logger.ErrorWithStack(err)

		return nil, repo.fail(scope, "get all data", err)
	}

	return models, nil
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.scope(ctx, "Count")
	defer scope.End()

	clause, args := where(filter)
	query := fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s %s%s", repo.table, repo.primaryColumn, repo.table, repo.join, clause)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var count int

	if err := repo.get(ctx, query, &count, args); err != nil {
		return 0, repo.fail(scope, "count data", err)
	}

	return count, nil
}

// get runs a named single-row query on the read pool. sql.ErrNoRows is returned unlogged.
func (repo *Repository[T]) get(ctx context.Context, query string, dest any, args map[string]any) error {
	stmt, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	err = stmt.GetContext(ctx, dest, args)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.ErrorWithStack(err)
	}

	return err //nolint:wrapcheck
}
