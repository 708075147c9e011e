package service_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"roombook/config"
	otelMocks "roombook/infras/otel/mocks"
	bookingMocks "roombook/internal/domains/booking/mocks"
	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/model/dto"
	"roombook/internal/domains/booking/schedule"
	"roombook/internal/domains/booking/service"
	roomMocks "roombook/internal/domains/room/mocks"
	roomModel "roombook/internal/domains/room/model"
	cacheMocks "roombook/shared/cache/mocks"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	"roombook/shared/identity"
	"roombook/shared/lock"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	roomID    = "room-1"
	userA     = "user-a"
	userB     = "user-b"
	adminID   = "admin-1"
	bookingOn = "2025-06-01"
)

var (
	asUserA = identity.Identity{UserID: userA, Role: constant.RoleUser}
	asUserB = identity.Identity{UserID: userB, Role: constant.RoleUser}
	asAdmin = identity.Identity{UserID: adminID, Role: constant.RoleAdmin}
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type fixture struct {
	svc  service.Booking
	repo *memoryRepo
	room *roomModel.Room
}

// newFixture builds the service over the in-memory repository with a room open 09:00 to 18:00.
// The clock reads 2025-05-30 12:00.
func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	room := &roomModel.Room{ID: roomID, Name: "Meeting Room", OpenTime: "09:00", CloseTime: "18:00"}

	rooms := roomMocks.NewMockRoom(ctrl)
	rooms.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, filter gDto.FilterGroup, _ ...string) (roomModel.Room, error) {
			if id, _ := filterValue(filter, roomModel.FieldID); id != roomID {
				return roomModel.Room{}, nil
			}

			return *room, nil
		}).AnyTimes()

	redisCache := cacheMocks.NewMockRedisCache(ctrl)
	redisCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).AnyTimes()
	redisCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	redisCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	redisCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	publisher := bookingMocks.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	otl := otelMocks.NewOtel()
	repo := newMemoryRepo()
	clock := fixedClock{now: time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)}

	svc := service.New(repo, rooms, lock.NewLocal(otl, time.Second), publisher, clock, &config.Config{}, redisCache, otl)

	return fixture{svc: svc, repo: repo, room: room}
}

func (f fixture) seed(t *testing.T, id, userID, start, end string, status schedule.Status) {
	t.Helper()

	date, err := schedule.ParseDate(bookingOn)
	require.NoError(t, err)

	require.NoError(t, f.repo.Insert(context.Background(), model.Booking{
		ID:          id,
		RoomID:      roomID,
		UserID:      userID,
		BookingDate: date,
		StartTime:   start,
		EndTime:     end,
		Purpose:     "seeded",
		Status:      status.String(),
	}))
}

func as(caller identity.Identity) context.Context {
	return identity.WithContext(context.Background(), caller)
}

func request(date, start, end string) dto.SubmitBookingRequest {
	return dto.SubmitBookingRequest{
		RoomID:      roomID,
		BookingDate: date,
		StartTime:   start,
		EndTime:     end,
		Purpose:     "standup",
	}
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name       string
		req        dto.SubmitBookingRequest
		emptyDay   bool
		wantReason string
	}{
		{name: "valid request", req: request(bookingOn, "10:00", "11:00")},
		{name: "booking today is allowed", req: request("2025-05-30", "10:00", "11:00")},
		{name: "window on operating hours boundary", req: request(bookingOn, "09:00", "18:00"), emptyDay: true},
		{name: "touching an approved booking", req: request(bookingOn, "13:00", "14:00")},
		{name: "overlapping a pending booking", req: request(bookingOn, "15:00", "16:00")},
		{name: "overlapping a rejected booking", req: request(bookingOn, "16:30", "17:30")},
		{
			name:       "missing purpose",
			req:        dto.SubmitBookingRequest{RoomID: roomID, BookingDate: bookingOn, StartTime: "10:00", EndTime: "11:00"},
			wantReason: failure.ReasonMissingField,
		},
		{
			name:       "missing field wins over bad time",
			req:        dto.SubmitBookingRequest{RoomID: roomID, StartTime: "25:00", EndTime: "11:00"},
			wantReason: failure.ReasonMissingField,
		},
		{name: "malformed start time", req: request(bookingOn, "9am", "11:00"), wantReason: failure.ReasonInvalidTimeFormat},
		{name: "bad time wins over unknown room", req: dto.SubmitBookingRequest{
			RoomID: "missing", BookingDate: bookingOn, StartTime: "10:60", EndTime: "11:00", Purpose: "x",
		}, wantReason: failure.ReasonInvalidTimeFormat},
		{name: "end before start", req: request(bookingOn, "11:00", "10:00"), wantReason: failure.ReasonInvalidOrder},
		{name: "empty window", req: request(bookingOn, "10:00", "10:00"), wantReason: failure.ReasonInvalidOrder},
		{name: "unknown room wins over bad date", req: dto.SubmitBookingRequest{
			RoomID: "missing", BookingDate: "01/06/2025", StartTime: "10:00", EndTime: "11:00", Purpose: "x",
		}, wantReason: failure.ReasonRoomNotFound},
		{name: "malformed date", req: request("2025/06/01", "10:00", "11:00"), wantReason: failure.ReasonInvalidDateFormat},
		{name: "impossible date", req: request("2025-02-30", "10:00", "11:00"), wantReason: failure.ReasonInvalidDateFormat},
		{name: "past date", req: request("2025-05-29", "10:00", "11:00"), wantReason: failure.ReasonPastDate},
		{name: "before opening", req: request(bookingOn, "08:30", "10:00"), wantReason: failure.ReasonOutOfHours},
		{name: "after closing", req: request(bookingOn, "17:30", "18:30"), wantReason: failure.ReasonOutOfHours},
		{name: "one minute before opening", req: request(bookingOn, "08:59", "18:00"), emptyDay: true, wantReason: failure.ReasonOutOfHours},
		{name: "one minute after closing", req: request(bookingOn, "09:00", "18:01"), emptyDay: true, wantReason: failure.ReasonOutOfHours},
		{name: "overlapping an approved booking", req: request(bookingOn, "12:30", "13:30"), wantReason: failure.ReasonScheduleConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if !tt.emptyDay {
				f.seed(t, "approved-1", userB, "12:00", "13:00", schedule.StatusApproved)
				f.seed(t, "pending-1", userB, "15:00", "16:00", schedule.StatusPending)
				f.seed(t, "rejected-1", userB, "16:00", "17:00", schedule.StatusRejected)
			}

			got, err := f.svc.ValidateSubmission(as(asUserA), tt.req)
			if tt.wantReason != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantReason, failure.GetReason(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, roomID, got.RoomID)
			assert.Equal(t, tt.req.StartTime, got.StartTime)
		})
	}
}

func TestValidateSubmission_NormalizesTimes(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.ValidateSubmission(as(asUserA), request(bookingOn, "9:00", "9:30"))

	require.NoError(t, err)
	assert.Equal(t, "09:00", got.StartTime)
	assert.Equal(t, "09:30", got.EndTime)
	assert.Equal(t, "Meeting Room", got.RoomName)
}

func TestSubmitApproveConflict(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Submit(as(asUserA), request(bookingOn, "10:00", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusPending.String(), first.Status)
	assert.Equal(t, userA, first.UserID)

	approved, err := f.svc.Approve(as(asAdmin), first.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusApproved.String(), approved.Status)
	assert.Equal(t, adminID, approved.ModifiedBy)

	_, err = f.svc.Submit(as(asUserB), request(bookingOn, "10:30", "11:30"))
	require.Error(t, err)
	assert.Equal(t, failure.ReasonScheduleConflict, failure.GetReason(err))
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))

	detail, ok := failure.GetDetail(err).(schedule.ConflictDetail)
	require.True(t, ok)
	assert.Equal(t, first.ID, detail.BookingID)
	assert.Equal(t, "10:00", detail.StartTime)
	assert.Equal(t, "11:00", detail.EndTime)
}

func TestSubmit_RequiresIdentity(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), request(bookingOn, "10:00", "11:00"))

	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
}

func TestApprove_OverlappingPendingBookings(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "p1", userA, "10:00", "11:00", schedule.StatusPending)
	f.seed(t, "p2", userB, "10:30", "11:30", schedule.StatusPending)

	_, err := f.svc.Approve(as(asAdmin), "p1")
	require.NoError(t, err)

	_, err = f.svc.Approve(as(asAdmin), "p2")
	require.Error(t, err)
	assert.Equal(t, failure.ReasonScheduleConflict, failure.GetReason(err))
	assert.Equal(t, schedule.StatusPending.String(), f.repo.status("p2"))

	_, err = f.svc.Reject(as(asAdmin), "p2")
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusRejected.String(), f.repo.status("p2"))
}

func TestApprove_Concurrent(t *testing.T) {
	f := newFixture(t)

	ids := []string{"c1", "c2", "c3", "c4", "c5", "c6"}
	for _, id := range ids {
		f.seed(t, id, userA, "10:00", "11:00", schedule.StatusPending)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		approved  int
		conflicts int
	)

	for _, id := range ids {
		wg.Add(1)

		go func(id string) {
			defer wg.Done()

			_, err := f.svc.Approve(as(asAdmin), id)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				approved++
			case failure.GetReason(err) == failure.ReasonScheduleConflict:
				conflicts++
			}
		}(id)
	}

	wg.Wait()

	assert.Equal(t, 1, approved)
	assert.Equal(t, len(ids)-1, conflicts)

	date, _ := schedule.ParseDate(bookingOn)
	assert.Len(t, f.repo.approved(roomID, date, ""), 1)
}

func TestDecide_TerminalStates(t *testing.T) {
	tests := []struct {
		name   string
		status schedule.Status
		action func(svc service.Booking, ctx context.Context, id string) (dto.BookingResponse, error)
	}{
		{name: "approve approved", status: schedule.StatusApproved, action: service.Booking.Approve},
		{name: "reject approved", status: schedule.StatusApproved, action: service.Booking.Reject},
		{name: "approve rejected", status: schedule.StatusRejected, action: service.Booking.Approve},
		{name: "reject rejected", status: schedule.StatusRejected, action: service.Booking.Reject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t, "b1", userA, "10:00", "11:00", tt.status)

			_, err := tt.action(f.svc, as(asAdmin), "b1")

			require.Error(t, err)
			assert.Equal(t, failure.ReasonInvalidState, failure.GetReason(err))
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
			assert.Equal(t, tt.status.String(), f.repo.status("b1"))
		})
	}
}

func TestDecide_Authorization(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "b1", userA, "10:00", "11:00", schedule.StatusPending)

	_, err := f.svc.Approve(as(asUserA), "b1")
	assert.Equal(t, failure.ReasonForbidden, failure.GetReason(err))

	_, err = f.svc.Reject(context.Background(), "b1")
	assert.Equal(t, failure.ReasonForbidden, failure.GetReason(err))

	_, err = f.svc.Approve(as(asAdmin), "unknown")
	assert.Equal(t, failure.ReasonNotFound, failure.GetReason(err))
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))

	assert.Equal(t, schedule.StatusPending.String(), f.repo.status("b1"))
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name       string
		caller     identity.Identity
		status     schedule.Status
		wantReason string
	}{
		{name: "owner deletes pending", caller: asUserA, status: schedule.StatusPending},
		{name: "admin deletes pending", caller: asAdmin, status: schedule.StatusPending},
		{name: "other user", caller: asUserB, status: schedule.StatusPending, wantReason: failure.ReasonForbidden},
		{name: "approved booking", caller: asUserA, status: schedule.StatusApproved, wantReason: failure.ReasonInvalidState},
		{name: "rejected booking", caller: asAdmin, status: schedule.StatusRejected, wantReason: failure.ReasonInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t, "b1", userA, "10:00", "11:00", tt.status)

			err := f.svc.Delete(as(tt.caller), "b1")
			if tt.wantReason != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantReason, failure.GetReason(err))
				assert.Equal(t, tt.status.String(), f.repo.status("b1"))

				return
			}

			require.NoError(t, err)
			assert.Empty(t, f.repo.status("b1"))
		})
	}
}

func TestGet_Access(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "b1", userA, "10:00", "11:00", schedule.StatusPending)

	res, err := f.svc.Get(as(asUserA), "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", res.ID)

	_, err = f.svc.Get(as(asAdmin), "b1")
	require.NoError(t, err)

	_, err = f.svc.Get(as(asUserB), "b1")
	assert.Equal(t, failure.ReasonForbidden, failure.GetReason(err))

	_, err = f.svc.Get(as(asUserA), "missing")
	assert.Equal(t, failure.ReasonNotFound, failure.GetReason(err))
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", userA, "10:00", "11:00", schedule.StatusApproved)
	f.seed(t, "a2", userA, "14:00", "15:00", schedule.StatusPending)
	f.seed(t, "b1", userB, "12:00", "13:00", schedule.StatusPending)

	mine, err := f.svc.GetMine(as(asUserA), gDto.QueryParams{Page: 1, Limit: 10}, dto.Filter{UserID: userB})
	require.NoError(t, err)
	assert.Equal(t, 2, mine.TotalData)

	for _, b := range mine.Bookings {
		assert.Equal(t, userA, b.UserID)
	}

	public, err := f.svc.GetPublic(context.Background(), dto.Filter{RoomID: roomID, BookingDate: bookingOn})
	require.NoError(t, err)
	require.Len(t, public.Bookings, 1)
	assert.Equal(t, "a1", public.Bookings[0].ID)

	_, err = f.svc.GetPublic(context.Background(), dto.Filter{BookingDate: "tomorrow"})
	assert.Equal(t, failure.ReasonInvalidDateFormat, failure.GetReason(err))

	_, err = f.svc.GetAll(as(asUserA), gDto.QueryParams{Page: 1, Limit: 10}, dto.Filter{})
	assert.Equal(t, failure.ReasonForbidden, failure.GetReason(err))

	all, err := f.svc.GetAll(as(asAdmin), gDto.QueryParams{Page: 1, Limit: 10}, dto.Filter{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalData)
}

func TestCheckConflict(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", userA, "10:00", "11:00", schedule.StatusApproved)

	res, err := f.svc.CheckConflict(context.Background(), dto.ConflictQuery{
		RoomID: roomID, BookingDate: bookingOn, StartTime: "10:30", EndTime: "11:30",
	})
	require.NoError(t, err)
	assert.True(t, res.Conflict)
	require.NotNil(t, res.With)
	assert.Equal(t, "a1", res.With.BookingID)

	res, err = f.svc.CheckConflict(context.Background(), dto.ConflictQuery{
		RoomID: roomID, BookingDate: bookingOn, StartTime: "10:30", EndTime: "11:30", ExcludeID: "a1",
	})
	require.NoError(t, err)
	assert.False(t, res.Conflict)

	_, err = f.svc.CheckConflict(context.Background(), dto.ConflictQuery{
		RoomID: roomID, BookingDate: bookingOn, StartTime: "noon", EndTime: "11:30",
	})
	assert.Equal(t, failure.ReasonInvalidTimeFormat, failure.GetReason(err))
}

func TestApprove_OutsideChangedHours(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "late", userA, "16:00", "18:00", schedule.StatusPending)
	f.seed(t, "early", userB, "09:00", "10:00", schedule.StatusPending)

	f.room.CloseTime = "17:00"

	_, err := f.svc.Approve(as(asAdmin), "late")

	require.Error(t, err)
	assert.Equal(t, failure.ReasonOutOfHours, failure.GetReason(err))
	assert.Equal(t, schedule.StatusPending.String(), f.repo.status("late"))

	res, err := f.svc.Approve(as(asAdmin), "early")

	require.NoError(t, err)
	assert.Equal(t, schedule.StatusApproved.String(), res.Status)
}

// TestApprove_StorageErrors covers failures that only the database can report.
func TestApprove_StorageErrors(t *testing.T) {
	date, _ := schedule.ParseDate(bookingOn)
	pending := model.Booking{
		ID: "b1", RoomID: roomID, UserID: userA, BookingDate: date,
		StartTime: "10:00", EndTime: "11:00", Status: schedule.StatusPending.String(),
	}

	tests := []struct {
		name       string
		txErr      error
		wantReason string
		wantCode   int
	}{
		{
			name:       "exclusion constraint",
			txErr:      &pq.Error{Code: constant.PqErrorCodeExclusion},
			wantReason: failure.ReasonScheduleConflict,
			wantCode:   http.StatusConflict,
		},
		{
			name:       "room removed concurrently",
			txErr:      &pq.Error{Code: constant.PqErrorCodeFkViolation},
			wantReason: failure.ReasonRoomNotFound,
			wantCode:   http.StatusNotFound,
		},
		{
			name:     "unexpected error",
			txErr:    errors.New("connection reset"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := bookingMocks.NewMockBooking(ctrl)
			otl := otelMocks.NewOtel()

			repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)
			repo.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
				func(context.Context, func(tx *sqlx.Tx) error) error {
					return tt.txErr
				})

			svc := service.New(repo, roomMocks.NewMockRoom(ctrl), lock.NewLocal(otl, time.Second),
				bookingMocks.NewMockPublisher(ctrl), fixedClock{}, &config.Config{}, cacheMocks.NewMockRedisCache(ctrl), otl)

			_, err := svc.Approve(as(asAdmin), "b1")

			require.Error(t, err)
			assert.Equal(t, tt.wantReason, failure.GetReason(err))
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestSubmit_LockTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	otl := otelMocks.NewOtel()

	rooms := roomMocks.NewMockRoom(ctrl)
	rooms.EXPECT().Get(gomock.Any(), gomock.Any()).
		Return(roomModel.Room{ID: roomID, OpenTime: "09:00", CloseTime: "18:00"}, nil)

	repo := bookingMocks.NewMockBooking(ctrl)
	repo.EXPECT().FindApproved(gomock.Any(), roomID, gomock.Any(), "").Return(nil, nil)

	locker := lock.NewLocal(otl, 10*time.Millisecond)
	date, _ := schedule.ParseDate(bookingOn)

	unlock, err := locker.Lock(context.Background(), roomID+":"+schedule.FormatDate(date))
	require.NoError(t, err)
	defer unlock()

	svc := service.New(repo, rooms, locker, bookingMocks.NewMockPublisher(ctrl),
		fixedClock{now: date}, &config.Config{}, cacheMocks.NewMockRedisCache(ctrl), otl)

	_, err = svc.Submit(as(asUserA), request(bookingOn, "10:00", "11:00"))

	require.Error(t, err)
	assert.ErrorIs(t, err, lock.ErrNotAcquired)
}
