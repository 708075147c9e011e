package dto

import (
	"fmt"
	"maps"
	"strings"
)

const (
	FilterOperatorEq   = "eq"
	FilterOperatorLike = "like"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

// Filter renders one named-parameter predicate for sqlx. ArgName defaults to Field.
// A like filter with an empty value matches everything and renders nothing.
type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator string `validate:"required,oneof=eq like"`
	Table    string
}

func (f *Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

func (f *Filter) arg() string {
	if f.ArgName == "" {
		return f.Field
	}

	return f.ArgName
}

func (f *Filter) GetWhereClause() (string, map[string]any) {
	name := f.arg()

	switch f.Operator {
	case FilterOperatorEq:
		return fmt.Sprintf("%s = :%s", f.column(), name), map[string]any{name: f.Value}
	case FilterOperatorLike:
		if f.Value == nil || f.Value == "" {
			return "", map[string]any{}
		}

		return fmt.Sprintf("LOWER(%s) LIKE LOWER(:%s)", f.column(), name), map[string]any{name: fmt.Sprintf("%%%v%%", f.Value)}
	default:
		return "", map[string]any{}
	}
}

// FilterGroup joins Filters (Filter or nested FilterGroup values) with Operator.
// Members that render nothing are dropped, and an empty group renders nothing.
type FilterGroup struct {
	Filters  []any
	Operator string
}

func (f *FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	clauses := make([]string, 0, len(f.Filters))

	for _, member := range f.Filters {
		var (
			clause string
			arg    map[string]any
		)

		switch m := member.(type) {
		case Filter:
			clause, arg = m.GetWhereClause()
		case FilterGroup:
			clause, arg = m.GetWhereClause()
		}

		if clause == "" {
			continue
		}

		clauses = append(clauses, clause)
		maps.Copy(args, arg)
	}

	if len(clauses) == 0 {
		return "", args
	}

	return "(" + strings.Join(clauses, " "+f.Operator+" ") + ")", args
}
