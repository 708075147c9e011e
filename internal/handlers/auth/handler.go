package auth

import (
	"context"
	"net/http"

	"roombook/infras/otel"
	"roombook/internal/domains/auth/model/dto"
	"roombook/internal/domains/auth/service"
	"roombook/shared/constant"
	"roombook/shared/failure"
	"roombook/shared/validator"
	"roombook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Auth
	otel    otel.Otel
}

func New(service service.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/refresh-token", handler.RefreshToken)
	})
}

// Register creates an account and returns its first token pair.
// @Summary Register an account
// @Description Create an account with the user role and sign it in.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account details"
// @Success 201 {object} response.Data[dto.TokenResponse] "Token pair of the new account"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/register [post]
func (handler *Handler) Register(w http.ResponseWriter, r *http.Request) {
	exchange(handler, w, r, "Register", http.StatusCreated, handler.service.Register)
}

// Login exchanges credentials for a token pair.
// @Summary Log in
// @Description Unknown e-mails and wrong passwords both answer 401. Deactivated accounts answer 403.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} response.Data[dto.TokenResponse] "Token pair"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/login [post]
func (handler *Handler) Login(w http.ResponseWriter, r *http.Request) {
	exchange(handler, w, r, "Login", http.StatusOK, handler.service.Login)
}

// RefreshToken rotates a token pair.
// @Summary Refresh tokens
// @Description Exchange a refresh token for a new pair carrying the current role of the account.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.Data[dto.TokenResponse] "Token pair"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/refresh-token [post]
func (handler *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	exchange(handler, w, r, "RefreshToken", http.StatusOK, handler.service.RefreshToken)
}

// exchange decodes a credential request, hands it to the service and writes the token pair.
func exchange[T any](
	handler *Handler,
	w http.ResponseWriter,
	r *http.Request,
	op string,
	status int,
	call func(context.Context, T) (dto.TokenResponse, error),
) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+op)
	defer scope.End()

	var req T

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("op", op).Msg("invalid auth request")

		response.WithError(w, err)

		return
	}

	res, err := call(ctx, req)
	if err != nil {
		scope.TraceError(err)

		event := log.Warn()
		if failure.GetCode(err) >= http.StatusInternalServerError {
			event = log.Error()
		}

		event.Err(err).Str("op", op).Msg("auth request failed")

		response.WithError(w, err)

		return
	}

	scope.AddEvent(op + " succeeded")

	response.WithJSON(w, status, res)
}
