package model

import "time"

const (
	TableName  = "booking_audits"
	EntityName = "booking_audit"

	FieldID        = "id"
	FieldType      = "type"
	FieldBookingID = "booking_id"
	FieldRoomID    = "room_id"
)

// BookingAudit is one stored lifecycle event. ID is the event id, so a redelivered event maps to the same row.
type BookingAudit struct {
	ID              string     `db:"id"`
	Type            string     `db:"type"`
	BookingID       *string    `db:"booking_id"`
	RoomID          string     `db:"room_id"`
	UserID          *string    `db:"user_id"`
	ActorID         string     `db:"actor_id"`
	BookingDate     *time.Time `db:"booking_date"`
	StartTime       *string    `db:"start_time"`
	EndTime         *string    `db:"end_time"`
	Status          *string    `db:"status"`
	RemovedBookings int64      `db:"removed_bookings"`
	OccurredAt      time.Time  `db:"occurred_at"`
	RecordedAt      time.Time  `db:"recorded_at"`
}
