package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"roombook/shared/failure"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantReason string
		wantMsg    string
	}{
		{
			name:     "bad request from error",
			err:      failure.BadRequest(errors.New("no fields to update")),
			wantCode: http.StatusBadRequest,
			wantMsg:  "no fields to update",
		},
		{
			name:     "bad request from string",
			err:      failure.BadRequestFromString("invalid booking id"),
			wantCode: http.StatusBadRequest,
			wantMsg:  "invalid booking id",
		},
		{
			name:     "unauthorized",
			err:      failure.Unauthorized("Token has expired"),
			wantCode: http.StatusUnauthorized,
			wantMsg:  "Token has expired",
		},
		{
			name:       "forbidden",
			err:        failure.Forbidden("only the owner may cancel"),
			wantCode:   http.StatusForbidden,
			wantReason: failure.ReasonForbidden,
			wantMsg:    "only the owner may cancel",
		},
		{
			name:       "not found",
			err:        failure.NotFound("booking"),
			wantCode:   http.StatusNotFound,
			wantReason: failure.ReasonNotFound,
			wantMsg:    "booking",
		},
		{
			name:     "conflict",
			err:      failure.Conflict("email already registered"),
			wantCode: http.StatusConflict,
			wantMsg:  "email already registered",
		},
		{
			name:       "with reason",
			err:        failure.WithReason(http.StatusBadRequest, failure.ReasonOutOfHours, "outside operating hours", nil),
			wantCode:   http.StatusBadRequest,
			wantReason: failure.ReasonOutOfHours,
			wantMsg:    "outside operating hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, failure.GetCode(tt.err))
			assert.Equal(t, tt.wantReason, failure.GetReason(tt.err))
			assert.EqualError(t, tt.err, tt.wantMsg)
		})
	}
}

func TestBadRequestNil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestAccessorsThroughWrapping(t *testing.T) {
	detail := []string{"booking-1", "booking-2"}
	base := failure.WithReason(http.StatusConflict, failure.ReasonScheduleConflict, "room already booked", detail)
	wrapped := fmt.Errorf("approve booking: %w", base)

	assert.Equal(t, http.StatusConflict, failure.GetCode(wrapped))
	assert.Equal(t, failure.ReasonScheduleConflict, failure.GetReason(wrapped))
	assert.Equal(t, detail, failure.GetDetail(wrapped))
}

func TestAccessorsOnPlainErrors(t *testing.T) {
	err := errors.New("connection reset")

	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	assert.Empty(t, failure.GetReason(err))
	assert.Nil(t, failure.GetDetail(err))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(nil))
}

func TestForbiddenError(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, failure.GetCode(failure.ForbiddenError))
	assert.Equal(t, failure.ReasonForbidden, failure.GetReason(failure.ForbiddenError))
}
