package dto

import (
	"net/http"
	"strconv"
	"strings"

	"roombook/shared/constant"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

// Order is one ORDER BY term. Column is trusted SQL and must come from code, never from a request.
type Order struct {
	Column string
	Dir    string
}

// QueryParams carries pagination and sorting. SortBy comes from the caller and is only honoured when it names
// a column of the queried model. OrderBy is set by services and takes precedence.
type QueryParams struct {
	Page    int     `json:"page"     validate:"omitempty"`
	Limit   int     `json:"limit"    validate:"omitempty"`
	SortBy  string  `json:"sort_by"  validate:"omitempty"`
	SortDir string  `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
	OrderBy []Order `json:"-"`
}

// FromRequest reads page, limit, sort_by and sort_dir. Invalid values are ignored.
// With defaultRequest the list endpoints always get a page and limit.
func (q *QueryParams) FromRequest(r *http.Request, defaultRequest bool) {
	queryParams := r.URL.Query()

	if page := queryParams.Get(constant.RequestParamPage); page != "" {
		if pageInt, err := strconv.Atoi(page); err == nil && pageInt > 0 {
			q.Page = pageInt
		}
	}

	if limit := queryParams.Get(constant.RequestParamLimit); limit != "" {
		if limitInt, err := strconv.Atoi(limit); err == nil && limitInt > 0 {
			q.Limit = limitInt
		}
	}

	if sortBy := queryParams.Get(constant.RequestParamSortBy); sortBy != "" {
		q.SortBy = sortBy
	}

	if sortDir := strings.ToUpper(queryParams.Get(constant.RequestParamSortDir)); sortDir == SortDirAsc || sortDir == SortDirDesc {
		q.SortDir = sortDir
	}

	if defaultRequest {
		if q.Page == 0 {
			q.Page = constant.DefaultValuePage
		}

		if q.Limit == 0 {
			q.Limit = constant.DefaultValueLimit
		}
	}
}
