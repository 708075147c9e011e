package dto

import (
	"mime/multipart"
	"net/http"

	"roombook/internal/domains/room/model"
	"roombook/shared"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	gModel "roombook/shared/model"
	"roombook/shared/timezone"

	"github.com/google/uuid"
)

const formFieldImage = "image"

type CreateRoomRequest struct {
	Name      string                `json:"name"       validate:"required,max=100"`
	Location  string                `json:"location"   validate:"required,max=100"`
	Capacity  int                   `json:"capacity"   validate:"required,min=1"`
	OpenTime  string                `json:"open_time"  validate:"required,clock"`
	CloseTime string                `json:"close_time" validate:"required,clock"`
	Image     *multipart.FileHeader `json:"image"      validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile multipart.File        `json:"-"`
}

// FromRequest reads a parsed multipart form. A capacity that is not a number is left at zero and fails min=1.
func (c *CreateRoomRequest) FromRequest(r *http.Request) {
	c.Name = r.FormValue(model.FieldName)
	c.Location = r.FormValue(model.FieldLocation)
	c.OpenTime = r.FormValue(model.FieldOpenTime)
	c.CloseTime = r.FormValue(model.FieldCloseTime)

	if capStr := r.FormValue(model.FieldCapacity); capStr != constant.Empty {
		if capacity, err := shared.ConvertStringToInt(capStr); err == nil {
			c.Capacity = capacity
		}
	}

	if file, fileHeader, err := r.FormFile(formFieldImage); err == nil {
		c.Image = fileHeader
		c.ImageFile = file
	}
}

func (c *CreateRoomRequest) ToModel(user string, imageURL string, openTime, closeTime string) model.Room {
	return model.Room{
		ID:        uuid.NewString(),
		Name:      c.Name,
		Location:  c.Location,
		Capacity:  c.Capacity,
		OpenTime:  openTime,
		CloseTime: closeTime,
		Image:     imageURL,
		Metadata:  gModel.NewMetadata(user, timezone.Now()),
	}
}

type UpdateRoomRequest struct {
	Name      string                `db:"name"       json:"name"       validate:"omitempty,max=100"`
	Location  string                `db:"location"   json:"location"   validate:"omitempty,max=100"`
	Capacity  *int                  `db:"capacity"   json:"capacity"   validate:"omitempty,min=1"`
	OpenTime  string                `db:"open_time"  json:"open_time"  validate:"omitempty,clock"`
	CloseTime string                `db:"close_time" json:"close_time" validate:"omitempty,clock"`
	Image     *multipart.FileHeader `json:"image"    validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile multipart.File        `json:"-"`
}

func (u *UpdateRoomRequest) FromRequest(r *http.Request) {
	u.Name = r.FormValue(model.FieldName)
	u.Location = r.FormValue(model.FieldLocation)
	u.OpenTime = r.FormValue(model.FieldOpenTime)
	u.CloseTime = r.FormValue(model.FieldCloseTime)

	if capStr := r.FormValue(model.FieldCapacity); capStr != constant.Empty {
		capacity, err := shared.ConvertStringToInt(capStr)
		if err != nil {
			capacity = 0
		}

		u.Capacity = &capacity
	}

	if file, fileHeader, err := r.FormFile(formFieldImage); err == nil {
		u.Image = fileHeader
		u.ImageFile = file
	}
}

// IsEmpty reports whether the request changes nothing.
func (u *UpdateRoomRequest) IsEmpty() bool {
	return u.Name == constant.Empty && u.Location == constant.Empty && u.Capacity == nil &&
		u.OpenTime == constant.Empty && u.CloseTime == constant.Empty && u.Image == nil
}

type RoomResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Capacity  int    `json:"capacity"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Image     string `json:"image"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.Location = model.Location
	r.Capacity = model.Capacity
	r.OpenTime = model.OpenTime
	r.CloseTime = model.CloseTime
	r.Image = model.Image
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
