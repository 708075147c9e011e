package dto

import (
	"net/http"
	"time"

	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/schedule"
	"roombook/shared"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	gModel "roombook/shared/model"

	"github.com/google/uuid"
)

// SubmitBookingRequest only carries presence rules. Format, order and schedule rules run in the service
// so their failures come out in a fixed order.
type SubmitBookingRequest struct {
	RoomID      string `json:"room_id"      validate:"required"`
	BookingDate string `json:"booking_date" validate:"required"`
	StartTime   string `json:"start_time"   validate:"required"`
	EndTime     string `json:"end_time"     validate:"required"`
	Purpose     string `json:"purpose"      validate:"required"`
}

// ValidatedBooking is a submission that passed every rule. Times are zero padded.
type ValidatedBooking struct {
	RoomID      string
	RoomName    string
	BookingDate time.Time
	Window      schedule.Window
	StartTime   string
	EndTime     string
	Purpose     string
}

func (v ValidatedBooking) Slot(id string) schedule.Slot {
	return schedule.Slot{BookingID: id, Date: v.BookingDate, Window: v.Window}
}

func (v ValidatedBooking) ToModel(userID string, now time.Time) model.Booking {
	return model.Booking{
		ID:          uuid.NewString(),
		RoomID:      v.RoomID,
		UserID:      userID,
		BookingDate: v.BookingDate,
		StartTime:   v.StartTime,
		EndTime:     v.EndTime,
		Purpose:     v.Purpose,
		Status:      schedule.StatusPending.String(),
		RoomName:    v.RoomName,
		Metadata:    gModel.NewMetadata(userID, now),
	}
}

type ConflictQuery struct {
	RoomID      string `json:"room_id"      validate:"required"`
	BookingDate string `json:"booking_date" validate:"required,date"`
	StartTime   string `json:"start_time"   validate:"required,clock"`
	EndTime     string `json:"end_time"     validate:"required,clock"`
	ExcludeID   string `json:"exclude_id"   validate:"omitempty"`
}

func (q *ConflictQuery) FromRequest(r *http.Request) {
	query := r.URL.Query()

	q.RoomID = query.Get(model.FieldRoomID)
	q.BookingDate = query.Get(model.FieldBookingDate)
	q.StartTime = query.Get(model.FieldStartTime)
	q.EndTime = query.Get(model.FieldEndTime)
	q.ExcludeID = query.Get("exclude_id")
}

type ConflictResponse struct {
	Conflict bool                     `json:"conflict"`
	With     *schedule.ConflictDetail `json:"with,omitempty"`
}

func (r *ConflictResponse) FromResult(res schedule.ConflictResult) {
	r.Conflict = res.Conflict
	if res.With == nil {
		return
	}

	r.With = &schedule.ConflictDetail{
		BookingID:   res.With.BookingID,
		BookingDate: schedule.FormatDate(res.With.Date),
		StartTime:   res.With.Window.StartClock(),
		EndTime:     res.With.Window.EndClock(),
	}
}

// Filter holds the optional list filters accepted by the booking list endpoints.
type Filter struct {
	RoomID      string
	UserID      string
	Status      string
	BookingDate string
}

func (f *Filter) FromRequest(r *http.Request) {
	query := r.URL.Query()

	f.RoomID = query.Get(model.FieldRoomID)
	f.Status = query.Get(model.FieldStatus)
	f.BookingDate = query.Get(model.FieldBookingDate)
}

func (f Filter) ToFilterGroup() gDto.FilterGroup {
	group := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	add := func(field, value string) {
		if value == constant.Empty {
			return
		}

		group.Filters = append(group.Filters, gDto.Filter{
			Field:    field,
			Operator: gDto.FilterOperatorEq,
			Value:    value,
			Table:    model.TableName,
		})
	}

	add(model.FieldRoomID, f.RoomID)
	add(model.FieldUserID, f.UserID)
	add(model.FieldStatus, f.Status)
	add(model.FieldBookingDate, f.BookingDate)

	return group
}

type BookingResponse struct {
	ID          string  `json:"id"`
	RoomID      string  `json:"room_id"`
	RoomName    string  `json:"room_name"`
	UserID      string  `json:"user_id"`
	UserEmail   string  `json:"user_email"`
	UserName    *string `json:"user_name"`
	BookingDate string  `json:"booking_date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Purpose     string  `json:"purpose"`
	Status      string  `json:"status"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.RoomName = model.RoomName
	r.UserID = model.UserID
	r.UserEmail = model.UserEmail
	r.UserName = model.UserName
	r.BookingDate = schedule.FormatDate(model.BookingDate)
	r.StartTime = model.StartTime
	r.EndTime = model.EndTime
	r.Purpose = model.Purpose
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// PublicBookingResponse is the schedule view shown without authentication.
type PublicBookingResponse struct {
	ID          string `json:"id"`
	RoomID      string `json:"room_id"`
	RoomName    string `json:"room_name"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Purpose     string `json:"purpose"`
}

func (r *PublicBookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.RoomName = model.RoomName
	r.BookingDate = schedule.FormatDate(model.BookingDate)
	r.StartTime = model.StartTime
	r.EndTime = model.EndTime
	r.Purpose = model.Purpose
}

type GetPublicBookingsResponse struct {
	Bookings []PublicBookingResponse `json:"bookings"`
}

func (r *GetPublicBookingsResponse) FromModels(models []model.Booking) {
	r.Bookings = make([]PublicBookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}
