// Package response writes the uniform success and failure envelopes.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/logging"
)

// Success is the body of every 2xx/3xx response.
type Success struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// Failure is the body of every error response. Data is always null.
type Failure struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Data       any      `json:"data"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// JSON writes a success envelope.
func JSON(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Success{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// Fail writes a failure envelope. An empty errs list is filled with message.
func Fail(w http.ResponseWriter, status int, message string, errs ...string) {
	if len(errs) == 0 {
		errs = []string{message}
	}
	writeJSON(w, status, Failure{
		StatusCode: status,
		Message:    message,
		Data:       nil,
		Success:    false,
		Errors:     errs,
	})
}

// Error maps err to its status and public message. Server-side failures are
// logged with their cause; the client only sees the public message.
func Error(w http.ResponseWriter, r *http.Request, err error, log *slog.Logger) {
	status := domain.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.LogError(log, "request failed", err,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
		)
	} else if log != nil {
		log.Debug("request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"code", domain.ErrorCode(err),
			"error", err.Error(),
		)
	}

	Fail(w, status, domain.PublicMessage(err), domain.ErrorDetails(err)...)
}
