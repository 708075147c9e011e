package model

import (
	"time"

	"roombook/internal/domains/booking/schedule"
	gDto "roombook/shared/dto"
	"roombook/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID          = "id"
	FieldRoomID      = "room_id"
	FieldUserID      = "user_id"
	FieldBookingDate = "booking_date"
	FieldStartTime   = "start_time"
	FieldEndTime     = "end_time"
	FieldPurpose     = "purpose"
	FieldStatus      = "status"
)

// Orderings used by the list endpoints.
var (
	OrderPublic = []gDto.Order{
		{Column: TableName + "." + FieldBookingDate, Dir: gDto.SortDirAsc},
		{Column: TableName + "." + FieldStartTime, Dir: gDto.SortDirAsc},
	}
	OrderMine = []gDto.Order{
		{Column: TableName + "." + FieldBookingDate, Dir: gDto.SortDirDesc},
		{Column: TableName + "." + FieldStartTime, Dir: gDto.SortDirDesc},
	}
	OrderAdmin = []gDto.Order{
		{Column: TableName + "." + FieldStatus, Dir: gDto.SortDirAsc},
		{Column: TableName + "." + FieldBookingDate, Dir: gDto.SortDirDesc},
		{Column: TableName + "." + FieldStartTime, Dir: gDto.SortDirDesc},
	}
)

type Booking struct {
	ID          string    `db:"id"`
	RoomID      string    `db:"room_id"`
	UserID      string    `db:"user_id"`
	BookingDate time.Time `db:"booking_date"`
	StartTime   string    `db:"start_time"`
	EndTime     string    `db:"end_time"`
	Purpose     string    `db:"purpose"`
	Status      string    `db:"status"`
	RoomName    string    `db:"room_name"  table:"rooms" column:"name"`
	UserEmail   string    `db:"user_email" table:"users" column:"email"`
	UserName    *string   `db:"user_name"  table:"users" column:"full_name"`
	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return "JOIN rooms ON rooms.id = bookings.room_id JOIN users ON users.id = bookings.user_id"
}

// Window parses the stored start and end times.
func (b Booking) Window() (schedule.Window, error) {
	return schedule.ParseWindow(b.StartTime, b.EndTime) //nolint:wrapcheck
}

// Slot converts an approved booking for the conflict detector.
func (b Booking) Slot() (schedule.Slot, error) {
	window, err := b.Window()
	if err != nil {
		return schedule.Slot{}, err
	}

	return schedule.Slot{BookingID: b.ID, Date: schedule.Day(b.BookingDate), Window: window}, nil
}

func (b Booking) CurrentStatus() schedule.Status {
	return schedule.Status(b.Status)
}
