package schedule_test

import (
	"testing"
	"time"

	"roombook/internal/domains/booking/schedule"
	"roombook/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	date, err := schedule.ParseDate("2030-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, "2030-05-01", schedule.FormatDate(date))

	for _, input := range []string{"", "01-05-2030", "2030-13-01", "2030-02-30", "2030-5-1"} {
		_, err := schedule.ParseDate(input)
		assert.Equal(t, failure.ReasonInvalidDateFormat, failure.GetReason(err), input)
	}
}

func TestNotBefore(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	now := time.Date(2030, 5, 1, 23, 30, 0, 0, jakarta)

	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{name: "yesterday", date: "2030-04-30", wantErr: true},
		{name: "today late in the day", date: "2030-05-01"},
		{name: "tomorrow", date: "2030-05-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, err := schedule.ParseDate(tt.date)
			require.NoError(t, err)

			err = schedule.NotBefore(date, now)
			if tt.wantErr {
				assert.Equal(t, failure.ReasonPastDate, failure.GetReason(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}
