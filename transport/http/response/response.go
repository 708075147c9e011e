// Package response writes the JSON envelopes every endpoint returns.
package response

import (
	"encoding/json"
	"net/http"

	"roombook/shared/constant"
	"roombook/shared/failure"
	"roombook/shared/logger"

	"github.com/rs/zerolog/log"
)

// Data wraps a successful payload.
type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

// Error is the failure envelope. Reason and Detail are only set for domain failures.
type Error struct {
	Error  *string `json:"error,omitempty"`
	Reason string  `json:"reason,omitempty"`
	Detail any     `json:"detail,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

func WithMessage(writer http.ResponseWriter, code int, message string) {
	write(writer, code, Message{Message: &message})
}

func WithJSON(writer http.ResponseWriter, code int, payload any) {
	write(writer, code, Data[any]{Data: &payload})
}

// WithError maps err to its status code. The text of unexpected 5xx errors is replaced by the
// status text so internal details never reach the client.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)
	reason := failure.GetReason(err)

	message := err.Error()
	if code >= http.StatusInternalServerError && reason == constant.Empty {
		log.Error().Err(err).Int("code", code).Msg("internal error")

		message = http.StatusText(code)
	}

	write(writer, code, Error{
		Error:  &message,
		Reason: reason,
		Detail: failure.GetDetail(err),
	})
}

func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func write(writer http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		code = http.StatusInternalServerError
		body = []byte(`{"error":"` + http.StatusText(code) + `"}`)
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err := writer.Write(body); err != nil {
		log.Warn().Err(err).Int("code", code).Msg("failed to write response body")
	}
}
