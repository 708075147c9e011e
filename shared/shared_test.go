package shared_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"roombook/shared"
	"roombook/shared/cache/mocks"
	"roombook/shared/constant"
	"roombook/shared/dto"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{name: "no rows", total: 0, limit: 10, want: 1},
		{name: "no limit", total: 40, limit: 0, want: 1},
		{name: "negative limit", total: 40, limit: -1, want: 1},
		{name: "exact pages", total: 40, limit: 10, want: 4},
		{name: "partial last page", total: 41, limit: 10, want: 5},
		{name: "fewer rows than limit", total: 3, limit: 10, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestTransformFields(t *testing.T) {
	type roomUpdate struct {
		Name     string `db:"name"`
		Location string `db:"location"`
		Capacity *int   `db:"capacity"`
		Image    string
	}

	zero := 0
	twelve := 12

	tests := []struct {
		name string
		data roomUpdate
		want map[string]any
	}{
		{
			name: "only set fields",
			data: roomUpdate{Name: "Orion", Image: "ignored"},
			want: map[string]any{"name": "Orion"},
		},
		{
			name: "pointer to zero is kept",
			data: roomUpdate{Capacity: &zero},
			want: map[string]any{"capacity": &zero},
		},
		{
			name: "every field",
			data: roomUpdate{Name: "Orion", Location: "Floor 3", Capacity: &twelve},
			want: map[string]any{"name": "Orion", "location": "Floor 3", "capacity": &twelve},
		},
		{
			name: "nothing set",
			data: roomUpdate{},
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shared.TransformFields(tt.data, "admin-1")

			assert.Equal(t, "admin-1", got[constant.FieldModifiedBy])
			assert.IsType(t, time.Time{}, got[constant.FieldModifiedAt])

			delete(got, constant.FieldModifiedBy)
			delete(got, constant.FieldModifiedAt)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterByID(t *testing.T) {
	got := shared.FilterByID("booking-1", "id", "bookings")

	require.Len(t, got.Filters, 1)
	assert.Equal(t, dto.Filter{
		Field:    "id",
		Value:    "booking-1",
		Operator: dto.FilterOperatorEq,
		Table:    "bookings",
	}, got.Filters[0])
}

func TestConvertStringToInt(t *testing.T) {
	got, err := shared.ConvertStringToInt(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = shared.ConvertStringToInt("forty")
	assert.Error(t, err)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "booking:get", shared.BuildCacheKey("booking:get"))
	assert.Equal(t, "booking:get:abc", shared.BuildCacheKey("booking:get", "abc"))
	assert.Equal(t, "limiter:1.2.3.4:curl", shared.BuildCacheKey("limiter", "1.2.3.4", "curl"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10}
	filterA := shared.FilterByID("room-1", "room_id", "bookings")
	filterB := shared.FilterByID("room-2", "room_id", "bookings")

	keyA := shared.BuildCacheKeyWithQuery("booking:gets", params, filterA)
	keyAgain := shared.BuildCacheKeyWithQuery("booking:gets", params, filterA)
	keyB := shared.BuildCacheKeyWithQuery("booking:gets", params, filterB)
	keyPage := shared.BuildCacheKeyWithQuery("booking:gets", dto.QueryParams{Page: 2, Limit: 10}, filterA)

	assert.True(t, strings.HasPrefix(keyA, "booking:gets:"))
	assert.Equal(t, keyA, keyAgain)
	assert.NotEqual(t, keyA, keyB)
	assert.NotEqual(t, keyA, keyPage)
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCache := mocks.NewMockRedisCache(ctrl)

	mockCache.EXPECT().Clear(gomock.Any(), "booking:gets*").Return(nil)
	shared.InvalidateCaches(context.Background(), mockCache, "booking:gets")

	mockCache.EXPECT().Clear(gomock.Any(), "booking:count*").Return(errors.New("redis down"))
	shared.InvalidateCaches(context.Background(), mockCache, "booking:count")
}

func TestIsPqError(t *testing.T) {
	unique := &pq.Error{Code: pq.ErrorCode(constant.PqErrorCodeUniqueViolation)}

	assert.True(t, shared.IsPqError(unique, constant.PqErrorCodeUniqueViolation))
	assert.True(t, shared.IsPqError(fmt.Errorf("insert user: %w", unique), constant.PqErrorCodeUniqueViolation))
	assert.False(t, shared.IsPqError(unique, "23P01"))
	assert.False(t, shared.IsPqError(errors.New("boom"), constant.PqErrorCodeUniqueViolation))
}
