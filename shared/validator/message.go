package validator

import (
	"errors"
	"strings"

	"roombook/shared/failure"

	val "github.com/go-playground/validator/v10"
)

const tagRequired = "required"

var (
	messages = map[string]string{
		"required":    "{field} is required",
		"gte":         "{field} must be greater than or equal to {param}",
		"lte":         "{field} must be less than or equal to {param}",
		"oneof":       "{field} must be one of {param}",
		"max":         "{field} must be less than or equal to {param}",
		"min":         "{field} must be greater than or equal to {param}",
		"email":       "{field} must be a valid email address",
		"clock":       "{field} must use HH:MM 24-hour format",
		"date":        "{field} must use YYYY-MM-DD format",
		"mimetypes":   "{field} must be one of {param}",
		"maxfilesize": "{field} must not exceed {param} MB",
	}

	tagReasons = map[string]string{
		"required": failure.ReasonMissingField,
		"clock":    failure.ReasonInvalidTimeFormat,
		"date":     failure.ReasonInvalidDateFormat,
	}
)

func render(valErr val.FieldError) string {
	errStr := messages[valErr.Tag()]
	if errStr == "" {
		return valErr.Error()
	}

	errStr = strings.ReplaceAll(errStr, "{field}", valErr.Field())

	return strings.ReplaceAll(errStr, "{param}", valErr.Param())
}

// message picks the error to report and returns its tag with a readable text.
// A required violation wins over any other rule on any field.
func message(err error) (string, string) {
	var valErrors val.ValidationErrors

	if !errors.As(err, &valErrors) || len(valErrors) == 0 {
		return "", err.Error()
	}

	for _, valErr := range valErrors {
		if valErr.Tag() == tagRequired {
			return tagRequired, render(valErr)
		}
	}

	first := valErrors[0]

	return first.Tag(), render(first)
}
