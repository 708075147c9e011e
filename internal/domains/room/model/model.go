package model

import (
	"roombook/internal/domains/booking/schedule"
	"roombook/shared/model"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID        = "id"
	FieldName      = "name"
	FieldLocation  = "location"
	FieldCapacity  = "capacity"
	FieldOpenTime  = "open_time"
	FieldCloseTime = "close_time"
	FieldImage     = "image"
)

type Room struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Location  string `db:"location"`
	Capacity  int    `db:"capacity"`
	OpenTime  string `db:"open_time"`
	CloseTime string `db:"close_time"`
	Image     string `db:"image"`
	model.Metadata
}

// Hours parses the stored operating hours.
func (r Room) Hours() (schedule.Hours, error) {
	return schedule.ParseHours(r.OpenTime, r.CloseTime) //nolint:wrapcheck
}
