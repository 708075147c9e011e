package room

import (
	"context"
	"net/http"

	"roombook/infras/otel"
	"roombook/internal/domains/room/model"
	"roombook/internal/domains/room/model/dto"
	"roombook/internal/domains/room/service"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	"roombook/shared/identity"
	"roombook/shared/validator"
	"roombook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Room
	otel    otel.Otel
}

func New(service service.Room, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rooms", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRoom)
		routerGroup.Get("/", handler.GetRooms)
		routerGroup.Get("/{id}", handler.GetRoomByID)
		routerGroup.Patch("/{id}", handler.UpdateRoom)
		routerGroup.Delete("/{id}", handler.DeleteRoom)
	})
}

// CreateRoom handles the creation of a new room.
// @Summary Create a new room
// @Description Create a room with its operating hours. Open time must be before close time.
// @Tags Room
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Room name"
// @Param location formData string true "Room location"
// @Param capacity formData integer true "Room capacity"
// @Param open_time formData string true "Opening time (HH:MM)"
// @Param close_time formData string true "Closing time (HH:MM)"
// @Param image formData file false "Room image"
// @Success 201 {object} response.Data[dto.RoomResponse] "Room created successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [post]
// @Security BearerAuth
func (handler *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "CreateRoom")
	defer scope.End()

	req := dto.CreateRoomRequest{}

	if err := parseForm(r, &req); err != nil {
		handler.fail(w, scope, err, "invalid create room request")

		return
	}

	if req.ImageFile != nil {
		defer req.ImageFile.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		handler.fail(w, scope, err, "invalid create room request")

		return
	}

	room, err := handler.service.Create(ctx, req)
	if err != nil {
		handler.fail(w, scope, err, "create room")

		return
	}

	handler.audit(ctx, scope, "created", room.ID)
	response.WithJSON(w, http.StatusCreated, room)
}

// GetRooms retrieves all rooms based on query parameters.
// @Summary Get all rooms
// @Description Retrieve all rooms with optional filtering and pagination.
// @Tags Room
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param location query string false "Filter by location"
// @Success 200 {object} response.Data[dto.GetRoomsResponse] "List of rooms"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [get]
func (handler *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "GetRooms")
	defer scope.End()

	params := gDto.QueryParams{}
	params.FromRequest(r, true)

	rooms, err := handler.service.GetAll(ctx, params, listFilters(r))
	if err != nil {
		handler.fail(w, scope, err, "list rooms")

		return
	}

	response.WithJSON(w, http.StatusOK, rooms)
}

// GetRoomByID retrieves a room by its ID.
// @Summary Get a room by ID
// @Description Retrieve a room by its unique identifier.
// @Tags Room
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Data[dto.RoomResponse] "Room details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [get]
func (handler *Handler) GetRoomByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "GetRoomByID")
	defer scope.End()

	room, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		handler.fail(w, scope, err, "get room")

		return
	}

	response.WithJSON(w, http.StatusOK, room)
}

// UpdateRoom updates an existing room by its ID.
// @Summary Update a room by ID
// @Description Update the given fields of a room. New hours are checked against the stored ones they are merged with,
// @Description and are refused while approved bookings from today on would fall outside them.
// @Tags Room
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Room ID"
// @Param name formData string false "Room name"
// @Param location formData string false "Room location"
// @Param capacity formData integer false "Room capacity"
// @Param open_time formData string false "Opening time (HH:MM)"
// @Param close_time formData string false "Closing time (HH:MM)"
// @Param image formData file false "Room image"
// @Success 200 {object} response.Message "Room updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "UpdateRoom")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	req := dto.UpdateRoomRequest{}

	if err := parseForm(r, &req); err != nil {
		handler.fail(w, scope, err, "invalid update room request")

		return
	}

	if req.ImageFile != nil {
		defer req.ImageFile.Close()
	}

	if req.IsEmpty() {
		handler.fail(w, scope, failure.BadRequestFromString("no fields to update"), "invalid update room request")

		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		handler.fail(w, scope, err, "invalid update room request")

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		handler.fail(w, scope, err, "update room")

		return
	}

	handler.audit(ctx, scope, "updated", id)
	response.WithMessage(w, http.StatusOK, "Room updated successfully")
}

// DeleteRoom deletes a room and every booking made for it.
// @Summary Delete a room by ID
// @Description Delete a room using its unique identifier. Its bookings are removed in the same transaction.
// @Tags Room
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Message "Room deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "DeleteRoom")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		handler.fail(w, scope, err, "delete room")

		return
	}

	handler.audit(ctx, scope, "deleted", id)
	response.WithMessage(w, http.StatusOK, "Room deleted successfully")
}

type formRequest interface {
	FromRequest(r *http.Request)
}

func parseForm(r *http.Request, req formRequest) error {
	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		return failure.BadRequest(err)
	}

	req.FromRequest(r)

	return nil
}

// listFilters turns the name and location query values into partial-match filters. Empty values are skipped downstream.
func listFilters(r *http.Request) gDto.FilterGroup {
	query := r.URL.Query()
	filters := make([]any, 0, 2)

	for _, field := range []string{model.FieldName, model.FieldLocation} {
		filters = append(filters, gDto.Filter{
			Field:    field,
			Operator: gDto.FilterOperatorLike,
			Value:    query.Get(field),
			Table:    model.TableName,
		})
	}

	return gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: filters}
}

func (handler *Handler) scope(r *http.Request, op string) (context.Context, otel.Scope) {
	return handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".room."+op)
}

// fail traces the error and writes it. Client errors log at warn level.
func (handler *Handler) fail(w http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)

	event := log.Warn()
	if failure.GetCode(err) >= http.StatusInternalServerError {
		event = log.Error()
	}

	event.Err(err).Msg(msg)
	response.WithError(w, err)
}

func (handler *Handler) audit(ctx context.Context, scope otel.Scope, action, roomID string) {
	caller, _ := identity.FromContext(ctx)
	scope.SetAttributes(map[string]any{"room.id": roomID, "room.action": action, "user_id": caller.UserID})
}
