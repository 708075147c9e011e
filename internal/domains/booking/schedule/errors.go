package schedule

import (
	"fmt"
	"net/http"
	"time"

	"roombook/shared/failure"
)

type HoursDetail struct {
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

type ConflictDetail struct {
	BookingID   string `json:"booking_id"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

type HoursInUseDetail struct {
	HoursDetail
	ApprovedBookings int `json:"approved_bookings"`
}

type StateDetail struct {
	Status string `json:"status"`
}

func InvalidTimeFormat(value string) error {
	return failure.WithReason(http.StatusBadRequest, failure.ReasonInvalidTimeFormat,
		fmt.Sprintf("time %q must use HH:MM 24-hour format", value), nil)
}

func InvalidOrder(start, end string) error {
	return failure.WithReason(http.StatusBadRequest, failure.ReasonInvalidOrder,
		fmt.Sprintf("start time %s must be before end time %s", start, end), nil)
}

func InvalidDateFormat(value string) error {
	return failure.WithReason(http.StatusBadRequest, failure.ReasonInvalidDateFormat,
		fmt.Sprintf("date %q must use YYYY-MM-DD format", value), nil)
}

func PastDate(date time.Time) error {
	return failure.WithReason(http.StatusBadRequest, failure.ReasonPastDate,
		fmt.Sprintf("date %s is in the past", FormatDate(date)), nil)
}

func OutOfHours(hours Hours) error {
	return failure.WithReason(http.StatusBadRequest, failure.ReasonOutOfHours,
		fmt.Sprintf("booking must be within room operating hours %s-%s", hours.OpenClock(), hours.CloseClock()),
		HoursDetail{OpenTime: hours.OpenClock(), CloseTime: hours.CloseClock()})
}

// HoursInUse refuses new operating hours that would leave approved bookings outside them.
func HoursInUse(hours Hours, approved int) error {
	return failure.WithReason(http.StatusConflict, failure.ReasonScheduleConflict,
		fmt.Sprintf("%d approved bookings fall outside the new operating hours %s-%s", approved, hours.OpenClock(), hours.CloseClock()),
		HoursInUseDetail{HoursDetail: HoursDetail{OpenTime: hours.OpenClock(), CloseTime: hours.CloseClock()}, ApprovedBookings: approved})
}

func RoomNotFound(roomID string) error {
	return failure.WithReason(http.StatusNotFound, failure.ReasonRoomNotFound,
		fmt.Sprintf("room %s not found", roomID), nil)
}

func BookingNotFound(bookingID string) error {
	return failure.WithReason(http.StatusNotFound, failure.ReasonNotFound,
		fmt.Sprintf("booking %s not found", bookingID), nil)
}

func ScheduleConflict(with Slot) error {
	detail := ConflictDetail{
		BookingID:   with.BookingID,
		BookingDate: FormatDate(with.Date),
		StartTime:   with.Window.StartClock(),
		EndTime:     with.Window.EndClock(),
	}

	return failure.WithReason(http.StatusConflict, failure.ReasonScheduleConflict,
		fmt.Sprintf("schedule conflicts with an approved booking on %s %s", detail.BookingDate, with.Window), detail)
}

func InvalidState(current Status, msg string) error {
	return failure.WithReason(http.StatusBadRequest, failure.ReasonInvalidState, msg, StateDetail{Status: current.String()})
}

// StoredConflict is reported when the database rejects an overlap the detector could not see.
func StoredConflict() error {
	return failure.WithReason(http.StatusConflict, failure.ReasonScheduleConflict,
		"schedule conflicts with an approved booking", nil)
}
