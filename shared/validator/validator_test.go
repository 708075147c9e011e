package validator_test

import (
	"net/http"
	"strings"
	"testing"

	"roombook/internal/domains/booking/schedule"
	"roombook/shared/failure"
	"roombook/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotRequest struct {
	RoomID    string `json:"room_id"    validate:"required"`
	Date      string `json:"date"       validate:"required,date"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time"   validate:"required,clock"`
	Email     string `json:"email"      validate:"omitempty,email"`
	Capacity  int    `json:"capacity"   validate:"gte=0,lte=500"`
	Category  string `json:"category"   validate:"omitempty,oneof=user admin"`
}

func validSlot() slotRequest {
	return slotRequest{
		RoomID:    "room-1",
		Date:      "2030-05-01",
		StartTime: "9:00",
		EndTime:   "10:30",
		Capacity:  20,
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *slotRequest)
		wantReason string
		wantErr    bool
		wantMsg    string
	}{
		{
			name:   "valid struct",
			mutate: func(*slotRequest) {},
		},
		{
			name:       "missing required field",
			mutate:     func(r *slotRequest) { r.RoomID = "" },
			wantErr:    true,
			wantReason: failure.ReasonMissingField,
			wantMsg:    "room_id is required",
		},
		{
			name: "missing wins over bad clock on an earlier field",
			mutate: func(r *slotRequest) {
				r.StartTime = "25:00"
				r.EndTime = ""
			},
			wantErr:    true,
			wantReason: failure.ReasonMissingField,
			wantMsg:    "end_time is required",
		},
		{
			name:       "bad clock",
			mutate:     func(r *slotRequest) { r.StartTime = "9.00" },
			wantErr:    true,
			wantReason: failure.ReasonInvalidTimeFormat,
		},
		{
			name:       "bad date",
			mutate:     func(r *slotRequest) { r.Date = "01/05/2030" },
			wantErr:    true,
			wantReason: failure.ReasonInvalidDateFormat,
		},
		{
			name:    "invalid email",
			mutate:  func(r *slotRequest) { r.Email = "invalid-email" },
			wantErr: true,
			wantMsg: "email must be a valid email address",
		},
		{
			name:    "capacity out of range",
			mutate:  func(r *slotRequest) { r.Capacity = 501 },
			wantErr: true,
		},
		{
			name:    "invalid category",
			mutate:  func(r *slotRequest) { r.Category = "guest" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSlot()
			tt.mutate(&req)

			err := validator.ValidateStruct(&req)
			if !tt.wantErr {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
			assert.Equal(t, tt.wantReason, failure.GetReason(err))

			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		jsonBody   string
		wantErr    bool
		wantReason string
	}{
		{
			name:     "valid JSON",
			jsonBody: `{"room_id":"r1","date":"2030-05-01","start_time":"09:00","end_time":"10:00","capacity":5}`,
		},
		{
			name:     "malformed JSON",
			jsonBody: `{"room_id":}`,
			wantErr:  true,
		},
		{
			name:       "empty JSON",
			jsonBody:   `{}`,
			wantErr:    true,
			wantReason: failure.ReasonMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data slotRequest

			err := validator.Validate(strings.NewReader(tt.jsonBody), &data)
			if !tt.wantErr {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
			assert.Equal(t, tt.wantReason, failure.GetReason(err))
		})
	}
}

// The clock tag must accept exactly what the booking rules can parse.
func TestClockTagAgreesWithParseClock(t *testing.T) {
	for _, clock := range []string{"0:00", "9:05", "09:00", "19:59", "23:59", "24:00", "7:60", "007:00", "9.30", "09:00 ", ""} {
		t.Run(clock, func(t *testing.T) {
			req := validSlot()
			req.StartTime = clock

			_, parseErr := schedule.ParseClock(clock)
			tagErr := validator.ValidateStruct(&req)

			assert.Equal(t, parseErr == nil, tagErr == nil)
		})
	}
}
