// Package repository is the generic sqlx table gateway the domain repositories embed.
// Columns come from the db tags of the model; a model may add joined columns with a table tag
// and supply the join through a GetJoinQuery method.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/shared/constant"
	"roombook/shared/dto"
)

var errRequiredFilter = errors.New("required filter")

type execer interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

type joiner interface {
	GetJoinQuery() string
}

type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	table         string
	entity        string
	primaryColumn string
	columns       columnSet
	join          string
}

func NewRepository[T any](entityName, tableName, primaryColumn string, dbConnection *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	join := ""
	if j, ok := any(zero).(joiner); ok {
		join = j.GetJoinQuery()
	}

	return Repository[T]{
		db:            dbConnection,
		otel:          otl,
		table:         tableName,
		entity:        entityName,
		primaryColumn: primaryColumn,
		columns:       newColumnSet[T](tableName),
		join:          join,
	}
}

func (repo *Repository[T]) scope(ctx context.Context, op string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName,
		fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, repo.entity, op))
}

func (repo *Repository[T]) fail(scope otel.Scope, action string, err error) error {
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", action, repo.entity, err)
}

func where(filter dto.FilterGroup) (string, map[string]any) {
	clause, args := filter.GetWhereClause()
	if clause == "" {
		return "", map[string]any{}
	}

	return " WHERE " + clause, args
}

// orderBy prefers the service ordering. A caller sort is used only when it names a selectable column.
func (repo *Repository[T]) orderBy(params dto.QueryParams) string {
	terms := make([]string, 0, len(params.OrderBy))

	for _, order := range params.OrderBy {
		terms = append(terms, order.Column+" "+direction(order.Dir))
	}

	if len(terms) == 0 && params.SortBy != "" {
		if column, ok := repo.columns.qualified(params.SortBy); ok {
			terms = append(terms, column+" "+direction(params.SortDir))
		}
	}

	if len(terms) == 0 {
		return ""
	}

	return " ORDER BY " + strings.Join(terms, ", ")
}

func direction(dir string) string {
	if strings.EqualFold(dir, dto.SortDirDesc) {
		return dto.SortDirDesc
	}

	return dto.SortDirAsc
}

func paginate(params dto.QueryParams, args map[string]any) string {
	if params.Limit <= 0 {
		return ""
	}

	args["limit"] = params.Limit

	if params.Page <= 0 {
		return " LIMIT :limit"
	}

	args["offset"] = (params.Page - 1) * params.Limit

	return " LIMIT :limit OFFSET :offset"
}
