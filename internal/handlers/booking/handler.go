package booking

import (
	"context"
	"net/http"

	"roombook/infras/otel"
	"roombook/internal/domains/booking/model/dto"
	"roombook/internal/domains/booking/service"
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
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Get("/public", handler.GetPublicBookings)
		routerGroup.Get("/conflicts", handler.CheckConflict)
		routerGroup.Get("/my-bookings", handler.GetMyBookings)
		routerGroup.Post("/", handler.SubmitBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Put("/{id}/approve", handler.ApproveBooking)
		routerGroup.Put("/{id}/reject", handler.RejectBooking)
		routerGroup.Delete("/{id}", handler.DeleteBooking)
	})
}

// SubmitBooking handles a new booking request.
// @Summary Submit a booking
// @Description Request a room for a time window. The booking starts pending and must be approved by an admin.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.SubmitBookingRequest true "Submit Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse] "Booking submitted"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [post]
// @Security BearerAuth
func (handler *Handler) SubmitBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.scope(request, "SubmitBooking")
	defer scope.End()

	req := dto.SubmitBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		handler.fail(writer, scope, err, "invalid submit booking request")

		return
	}

	booking, err := handler.service.Submit(ctx, req)
	if err != nil {
		handler.fail(writer, scope, err, "submit booking")

		return
	}

	caller, _ := identity.FromContext(ctx)
	scope.AddEvent("Booking submitted by user " + caller.UserID)

	response.WithJSON(writer, http.StatusCreated, booking)
}

// GetBookings lists every booking for admins.
// @Summary Get all bookings
// @Description Retrieve all bookings ordered by status, then newest date and start time first.
// @Tags Booking
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status"
// @Param room_id query string false "Filter by room"
// @Param booking_date query string false "Filter by date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of bookings"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filter := dto.Filter{}
	filter.FromRequest(r)

	bookings, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		handler.fail(w, scope, err, "get bookings")

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetMyBookings lists the bookings of the caller.
// @Summary Get my bookings
// @Description Retrieve the caller's bookings, newest date and start time first.
// @Tags Booking
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of bookings"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/my-bookings [get]
// @Security BearerAuth
func (handler *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "GetMyBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filter := dto.Filter{}
	filter.FromRequest(r)

	bookings, err := handler.service.GetMine(ctx, queryParams, filter)
	if err != nil {
		handler.fail(w, scope, err, "get my bookings")

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetPublicBookings shows the approved schedule.
// @Summary Get the public schedule
// @Description Retrieve approved bookings, optionally for one room or one date.
// @Tags Booking
// @Accept json
// @Produce json
// @Param room_id query string false "Filter by room"
// @Param booking_date query string false "Filter by date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.GetPublicBookingsResponse] "Approved bookings"
// @Failure 500 {object} response.Error
// @Router /v1/bookings/public [get]
func (handler *Handler) GetPublicBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "GetPublicBookings")
	defer scope.End()

	filter := dto.Filter{}
	filter.FromRequest(r)

	bookings, err := handler.service.GetPublic(ctx, filter)
	if err != nil {
		handler.fail(w, scope, err, "get public bookings")

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// CheckConflict reports whether a window collides with an approved booking.
// @Summary Check a time window for conflicts
// @Description Report the first approved booking overlapping the window, ignoring exclude_id.
// @Tags Booking
// @Accept json
// @Produce json
// @Param room_id query string true "Room ID"
// @Param booking_date query string true "Date (YYYY-MM-DD)"
// @Param start_time query string true "Start time (HH:MM)"
// @Param end_time query string true "End time (HH:MM)"
// @Param exclude_id query string false "Booking to ignore"
// @Success 200 {object} response.Data[dto.ConflictResponse] "Conflict result"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/conflicts [get]
// @Security BearerAuth
func (handler *Handler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "CheckConflict")
	defer scope.End()

	query := dto.ConflictQuery{}
	query.FromRequest(r)

	res, err := handler.service.CheckConflict(ctx, query)
	if err != nil {
		handler.fail(w, scope, err, "check conflict")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetBookingByID retrieves one booking for its owner or an admin.
// @Summary Get a booking by ID
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking details"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "GetBookingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		handler.fail(w, scope, err, "get booking by ID")

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// ApproveBooking approves a pending booking.
// @Summary Approve a booking
// @Description Approve a pending booking unless an approved booking already holds an overlapping window.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Approved booking"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/approve [put]
// @Security BearerAuth
func (handler *Handler) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	handler.decide(w, r, "ApproveBooking", handler.service.Approve)
}

// RejectBooking rejects a pending booking.
// @Summary Reject a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Rejected booking"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/reject [put]
// @Security BearerAuth
func (handler *Handler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	handler.decide(w, r, "RejectBooking", handler.service.Reject)
}

func (handler *Handler) decide(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	fn func(ctx context.Context, id string) (dto.BookingResponse, error),
) {
	ctx, scope := handler.scope(r, name)
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := fn(ctx, id)
	if err != nil {
		handler.fail(w, scope, err, "decide booking")

		return
	}

	caller, _ := identity.FromContext(ctx)
	scope.AddEvent("Booking " + booking.Status + " by user " + caller.UserID)

	response.WithJSON(w, http.StatusOK, booking)
}

// DeleteBooking deletes a pending booking.
// @Summary Delete a booking
// @Description Delete a pending booking. Only the owner or an admin may delete it.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Message "Booking deleted successfully"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.scope(r, "DeleteBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		handler.fail(w, scope, err, "delete booking")

		return
	}

	caller, _ := identity.FromContext(ctx)
	scope.AddEvent("Booking deleted by user " + caller.UserID)

	response.WithMessage(w, http.StatusOK, "Booking deleted successfully")
}

func (handler *Handler) scope(r *http.Request, op string) (context.Context, otel.Scope) {
	return handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".booking."+op)
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
