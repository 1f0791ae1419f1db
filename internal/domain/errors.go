package domain

import (
	"net/http"

	"github.com/samber/oops"
)

// Error codes carried by oops errors across the service.
const (
	CodeValidation      = "VALIDATION"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeTooManyAttempts = "TOO_MANY_ATTEMPTS"
	CodeUploadFailed    = "UPLOAD_FAILED"
	CodeInternal        = "INTERNAL"
)

// detailsKey is the oops context key holding client-facing error details.
const detailsKey = "errors"

// ValidationError reports user-correctable input problems. details are
// returned to the client verbatim.
func ValidationError(message string, details ...string) error {
	return oops.Code(CodeValidation).
		With(detailsKey, details).
		Errorf("%s", message)
}

func ConflictError(message string, details ...string) error {
	return oops.Code(CodeConflict).
		With(detailsKey, details).
		Errorf("%s", message)
}

func NotFoundError(message string) error {
	return oops.Code(CodeNotFound).Errorf("%s", message)
}

// AuthError reports an authentication failure. cause, when non-nil, is kept
// for logging only.
func AuthError(message string, cause error) error {
	builder := oops.Code(CodeUnauthorized).With("reason", message)
	if cause != nil {
		return builder.Wrapf(cause, "%s", message)
	}
	return builder.Errorf("%s", message)
}

func TooManyAttemptsError(message string) error {
	return oops.Code(CodeTooManyAttempts).Errorf("%s", message)
}

func UploadError(message string, cause error) error {
	builder := oops.Code(CodeUploadFailed).With("reason", message)
	if cause != nil {
		return builder.Wrapf(cause, "%s", message)
	}
	return builder.Errorf("%s", message)
}

// InternalError wraps an unexpected fault with the operation that hit it.
func InternalError(operation string, cause error) error {
	return oops.Code(CodeInternal).
		With("operation", operation).
		Wrapf(cause, "%s", operation)
}

// ErrorCode returns the code of an oops error, or CodeInternal.
func ErrorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return CodeInternal
	}
	if code, ok := oopsErr.Code().(string); ok && code != "" {
		return code
	}
	return CodeInternal
}

// HTTPStatus maps an error to the status class it is reported with.
func HTTPStatus(err error) int {
	switch ErrorCode(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyAttempts:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show a client. Internal and upload
// faults are reduced to a generic sentence.
func PublicMessage(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "something went wrong"
	}
	switch ErrorCode(err) {
	case CodeInternal:
		return "something went wrong"
	case CodeUnauthorized, CodeUploadFailed:
		if reason, ok := oopsErr.Context()["reason"].(string); ok && reason != "" {
			return reason
		}
	}
	return oopsErr.Error()
}

// ErrorDetails returns the client-facing details attached to err.
func ErrorDetails(err error) []string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []string{}
	}
	if details, ok := oopsErr.Context()[detailsKey].([]string); ok && details != nil {
		return details
	}
	return []string{}
}
