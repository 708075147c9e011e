// Package failure carries HTTP aware errors from the domain layer to the response writer.
package failure

import (
	"errors"
	"net/http"
)

// Failure is an error with an HTTP status. Reason is a stable machine readable code and
// Detail holds data a client needs to act on the failure, such as conflicting bookings.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	Detail  any    `json:"detail,omitempty"`
}

const (
	ReasonMissingField      = "MISSING_FIELD"
	ReasonInvalidTimeFormat = "INVALID_TIME_FORMAT"
	ReasonInvalidOrder      = "INVALID_ORDER"
	ReasonInvalidDateFormat = "INVALID_DATE_FORMAT"
	ReasonPastDate          = "PAST_DATE"
	ReasonOutOfHours        = "OUT_OF_HOURS"
	ReasonRoomNotFound      = "ROOM_NOT_FOUND"
	ReasonNotFound          = "NOT_FOUND"
	ReasonScheduleConflict  = "SCHEDULE_CONFLICT"
	ReasonInvalidState      = "INVALID_STATE"
	ReasonForbidden         = "FORBIDDEN"
)

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions", Reason: ReasonForbidden}

func (e *Failure) Error() string {
	return e.Message
}

func newFailure(code int, reason, msg string) error {
	return &Failure{Code: code, Message: msg, Reason: reason}
}

// BadRequest converts err into a 400. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusBadRequest, "", err.Error())
}

func BadRequestFromString(msg string) error {
	return newFailure(http.StatusBadRequest, "", msg)
}

func Unauthorized(msg string) error {
	return newFailure(http.StatusUnauthorized, "", msg)
}

func Forbidden(msg string) error {
	return newFailure(http.StatusForbidden, ReasonForbidden, msg)
}

// NotFound reports a missing entity; the entity name is the message.
func NotFound(entityName string) error {
	return newFailure(http.StatusNotFound, ReasonNotFound, entityName)
}

func Conflict(msg string) error {
	return newFailure(http.StatusConflict, "", msg)
}

// WithReason builds a failure with an explicit reason code and optional detail.
func WithReason(code int, reason, msg string, detail any) error {
	return &Failure{Code: code, Message: msg, Reason: reason, Detail: detail}
}

func as(err error) (*Failure, bool) {
	var fail *Failure
	ok := errors.As(err, &fail)

	return fail, ok
}

// GetCode returns the status of the first Failure in the chain, 500 when there is none.
func GetCode(err error) int {
	if fail, ok := as(err); ok {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetReason returns the reason of the first Failure in the chain, empty when there is none.
func GetReason(err error) string {
	if fail, ok := as(err); ok {
		return fail.Reason
	}

	return ""
}

func GetDetail(err error) any {
	if fail, ok := as(err); ok {
		return fail.Detail
	}

	return nil
}
