package schedule_test

import (
	"testing"

	"roombook/internal/domains/booking/schedule"
	"roombook/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHours_Contains(t *testing.T) {
	hours, err := schedule.ParseHours("08:00", "17:00")
	require.NoError(t, err)

	tests := []struct {
		name  string
		start string
		end   string
		ok    bool
	}{
		{name: "starts before open", start: "07:30", end: "08:30"},
		{name: "ends after close", start: "16:30", end: "17:30"},
		{name: "one minute before open", start: "07:59", end: "17:00"},
		{name: "one minute after close", start: "08:00", end: "17:01"},
		{name: "exact bounds", start: "08:00", end: "17:00", ok: true},
		{name: "inside", start: "10:00", end: "11:00", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window, err := schedule.ParseWindow(tt.start, tt.end)
			require.NoError(t, err)

			err = hours.Contains(window)
			if tt.ok {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, failure.ReasonOutOfHours, failure.GetReason(err))
			assert.Contains(t, err.Error(), "08:00-17:00")
			assert.Equal(t, schedule.HoursDetail{OpenTime: "08:00", CloseTime: "17:00"}, failure.GetDetail(err))
		})
	}
}

func TestParseHours_InvalidOrder(t *testing.T) {
	_, err := schedule.ParseHours("18:00", "09:00")
	assert.Equal(t, failure.ReasonInvalidOrder, failure.GetReason(err))
}
