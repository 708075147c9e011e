package service_test

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/schedule"
	gDto "roombook/shared/dto"

	"github.com/jmoiron/sqlx"
)

// memoryRepo is an in-memory booking store. Each call is atomic on its own; WithTx adds no isolation,
// so concurrent safety has to come from the service lock.
type memoryRepo struct {
	mu       sync.Mutex
	bookings map[string]model.Booking
	order    []string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{bookings: map[string]model.Booking{}}
}

func filterValue(filter gDto.FilterGroup, field string) (string, bool) {
	for _, f := range filter.Filters {
		if flt, ok := f.(gDto.Filter); ok && flt.Field == field {
			value, _ := flt.Value.(string)

			return value, true
		}
	}

	return "", false
}

func matches(b model.Booking, filter gDto.FilterGroup) bool {
	fields := map[string]string{
		model.FieldID:          b.ID,
		model.FieldRoomID:      b.RoomID,
		model.FieldUserID:      b.UserID,
		model.FieldStatus:      b.Status,
		model.FieldBookingDate: schedule.FormatDate(b.BookingDate),
	}

	for field, value := range fields {
		if want, ok := filterValue(filter, field); ok && want != value {
			return false
		}
	}

	return true
}

func (r *memoryRepo) approved(roomID string, date time.Time, excludeID string) []schedule.Slot {
	r.mu.Lock()
	defer r.mu.Unlock()

	var slots []schedule.Slot

	for _, id := range r.order {
		b := r.bookings[id]
		if b.RoomID != roomID || !schedule.Day(b.BookingDate).Equal(schedule.Day(date)) || b.Status != schedule.StatusApproved.String() {
			continue
		}

		if excludeID != "" && b.ID == excludeID {
			continue
		}

		slot, err := b.Slot()
		if err == nil {
			slots = append(slots, slot)
		}
	}

	return slots
}

func (r *memoryRepo) FindApproved(_ context.Context, roomID string, date time.Time, excludeID string) ([]schedule.Slot, error) {
	return r.approved(roomID, date, excludeID), nil
}

func (r *memoryRepo) FindApprovedTx(_ context.Context, _ *sqlx.Tx, roomID string, date time.Time, excludeID string) ([]schedule.Slot, error) {
	return r.approved(roomID, date, excludeID), nil
}

func (r *memoryRepo) Insert(_ context.Context, b model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookings[b.ID] = b
	r.order = append(r.order, b.ID)

	return nil
}

func (r *memoryRepo) InsertTx(ctx context.Context, _ *sqlx.Tx, b model.Booking) error {
	return r.Insert(ctx, b)
}

func (r *memoryRepo) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, _ := filterValue(filter, model.FieldID)

	return r.bookings[id], nil
}

func (r *memoryRepo) GetForUpdateTx(ctx context.Context, _ *sqlx.Tx, id string) (model.Booking, error) {
	return r.Get(ctx, gDto.FilterGroup{Filters: []any{gDto.Filter{Field: model.FieldID, Value: id}}})
}

func (r *memoryRepo) GetAll(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []model.Booking

	for _, id := range r.order {
		if b := r.bookings[id]; matches(b, filter) {
			res = append(res, b)
		}
	}

	sort.SliceStable(res, func(i, j int) bool { return res[i].StartTime < res[j].StartTime })

	return res, nil
}

func (r *memoryRepo) Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error) {
	n, err := r.Count(ctx, filter)

	return n > 0, err
}

func (r *memoryRepo) Count(ctx context.Context, filter gDto.FilterGroup) (int, error) {
	res, err := r.GetAll(ctx, gDto.QueryParams{}, filter)

	return len(res), err
}

func (r *memoryRepo) Delete(_ context.Context, filter gDto.FilterGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, _ := filterValue(filter, model.FieldID)
	delete(r.bookings, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })

	return nil
}

func (r *memoryRepo) DeleteTx(ctx context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) error {
	return r.Delete(ctx, filter)
}

func (r *memoryRepo) WithTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func (r *memoryRepo) LockSlotTx(context.Context, *sqlx.Tx, string, time.Time) error {
	return nil
}

func (r *memoryRepo) UpdateStatusTx(_ context.Context, _ *sqlx.Tx, id string, from, to schedule.Status, actor string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok || b.Status != from.String() {
		return false, nil
	}

	// Widen the window between the conflict check and this write.
	time.Sleep(time.Millisecond)

	b.Status = to.String()
	b.ModifiedBy = actor
	r.bookings[id] = b

	return true, nil
}

func (r *memoryRepo) status(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.bookings[id].Status
}
