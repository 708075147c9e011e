package repository

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

type column struct {
	name  string
	table string
	alias string
}

func (c column) selectExpr() string {
	if c.alias != "" {
		return fmt.Sprintf("%s.%s AS %s", c.table, c.name, c.alias)
	}

	return fmt.Sprintf("%s.%s", c.table, c.name)
}

// key is the name a caller sorts by: the alias of a joined column or the column itself.
func (c column) key() string {
	if c.alias != "" {
		return c.alias
	}

	return c.name
}

type columnSet struct {
	all    []column
	insert []string
}

func newColumnSet[T any](table string) columnSet {
	set := columnSet{}
	set.collect(table, reflect.TypeOf((*T)(nil)).Elem())

	return set
}

// collect walks db tags, descending into embedded structs. Columns with a foreign table tag are read-only.
func (s *columnSet) collect(table string, typ reflect.Type) {
	for i := range typ.NumField() {
		field := typ.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			s.collect(table, field.Type)

			continue
		}

		dbTag := field.Tag.Get("db")
		if dbTag == "" {
			continue
		}

		owner := field.Tag.Get("table")
		if owner == "" {
			owner = table
		}

		if owner == table {
			s.insert = append(s.insert, dbTag)
		}

		if name := field.Tag.Get("column"); name != "" {
			s.all = append(s.all, column{name: name, table: owner, alias: dbTag})
		} else {
			s.all = append(s.all, column{name: dbTag, table: owner})
		}
	}
}

// selectList renders the projection, limited to only when given.
func (s columnSet) selectList(only ...string) string {
	exprs := make([]string, 0, len(s.all))

	for _, col := range s.all {
		if len(only) > 0 && !slices.Contains(only, col.name) {
			continue
		}

		exprs = append(exprs, col.selectExpr())
	}

	return strings.Join(exprs, ", ")
}

func (s columnSet) qualified(key string) (string, bool) {
	idx := slices.IndexFunc(s.all, func(c column) bool { return c.key() == key })
	if idx == -1 {
		return "", false
	}

	col := s.all[idx]

	return col.table + "." + col.name, true
}

func (s columnSet) insertStatement(table string) string {
	placeholders := make([]string, len(s.insert))
	for i, col := range s.insert {
		placeholders[i] = ":" + col
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(s.insert, ", "), strings.Join(placeholders, ", "))
}
