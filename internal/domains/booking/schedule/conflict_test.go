package schedule_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"roombook/internal/domains/booking/schedule"
	"roombook/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinder struct {
	slots []schedule.Slot
	err   error

	gotRoom    string
	gotDate    time.Time
	gotExclude string
}

func (f *fakeFinder) FindApproved(_ context.Context, roomID string, date time.Time, excludeID string) ([]schedule.Slot, error) {
	f.gotRoom = roomID
	f.gotDate = date
	f.gotExclude = excludeID

	return f.slots, f.err
}

func TestFirstConflict(t *testing.T) {
	day := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	slots := []schedule.Slot{
		{BookingID: "a", Date: day, Window: schedule.Window{Start: 540, End: 600}},
		{BookingID: "b", Date: day, Window: schedule.Window{Start: 600, End: 660}},
	}

	res := schedule.FirstConflict(slots, schedule.Window{Start: 600, End: 630}, "")
	require.True(t, res.Conflict)
	assert.Equal(t, "b", res.With.BookingID)

	res = schedule.FirstConflict(slots, schedule.Window{Start: 600, End: 630}, "b")
	assert.False(t, res.Conflict)
	assert.NoError(t, res.Err())

	res = schedule.FirstConflict(slots, schedule.Window{Start: 660, End: 720}, "")
	assert.False(t, res.Conflict)
}

func TestConflictResult_Err(t *testing.T) {
	day := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	res := schedule.ConflictResult{
		Conflict: true,
		With:     &schedule.Slot{BookingID: "b1", Date: day, Window: schedule.Window{Start: 600, End: 660}},
	}

	err := res.Err()
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.Equal(t, failure.ReasonScheduleConflict, failure.GetReason(err))
	assert.Equal(t, schedule.ConflictDetail{
		BookingID:   "b1",
		BookingDate: "2030-05-01",
		StartTime:   "10:00",
		EndTime:     "11:00",
	}, failure.GetDetail(err))
}

func TestDetector_FindConflict(t *testing.T) {
	day := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("passes day and exclude to finder", func(t *testing.T) {
		finder := &fakeFinder{slots: []schedule.Slot{{BookingID: "x", Date: day, Window: schedule.Window{Start: 600, End: 660}}}}
		detector := schedule.NewDetector(finder)

		res, err := detector.FindConflict(context.Background(), "room-1", day.Add(15*time.Hour), schedule.Window{Start: 630, End: 700}, "self")
		require.NoError(t, err)
		assert.True(t, res.Conflict)
		assert.Equal(t, "room-1", finder.gotRoom)
		assert.Equal(t, day, finder.gotDate)
		assert.Equal(t, "self", finder.gotExclude)
	})

	t.Run("no approved bookings", func(t *testing.T) {
		detector := schedule.NewDetector(&fakeFinder{})

		res, err := detector.FindConflict(context.Background(), "room-1", day, schedule.Window{Start: 600, End: 660}, "")
		require.NoError(t, err)
		assert.False(t, res.Conflict)
	})

	t.Run("finder error", func(t *testing.T) {
		detector := schedule.NewDetector(&fakeFinder{err: errors.New("db down")})

		_, err := detector.FindConflict(context.Background(), "room-1", day, schedule.Window{Start: 600, End: 660}, "")
		assert.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}
