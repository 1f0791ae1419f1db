package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/upload"
)

const (
	maxJSONBody      = 16 << 10
	maxMultipartBody = 10 << 20
)

var errUnauthenticated = domain.AuthError("unauthorized request", nil)

// decodeJSON reads a size-limited JSON body into dest. An empty body leaves
// dest untouched when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any, allowEmpty bool) error {
	if r.Body == nil {
		if allowEmpty {
			return nil
		}
		return domain.ValidationError("request body is required")
	}
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ValidationError("request body too large")
		}
		return domain.ValidationError("invalid request body", err.Error())
	}
	return nil
}

// stagedFiles holds the local copies of a multipart request's files.
type stagedFiles struct {
	paths map[string]string
}

func (s stagedFiles) get(field string) string {
	return s.paths[field]
}

// cleanup removes whatever the media store did not consume.
func (s stagedFiles) cleanup(r *http.Request) {
	for _, path := range s.paths {
		upload.Discard(path)
	}
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// parseMultipart parses a size-limited multipart body and stages the named
// file fields. Callers must call cleanup on the result even on error.
func parseMultipart(w http.ResponseWriter, r *http.Request, stager *upload.Stager, fields ...string) (stagedFiles, error) {
	staged := stagedFiles{paths: make(map[string]string, len(fields))}

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(maxMultipartBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return staged, domain.ValidationError("request body too large")
		}
		return staged, domain.ValidationError("invalid multipart form", err.Error())
	}

	for _, field := range fields {
		path, err := stager.Stage(r, field)
		if err != nil {
			if errors.Is(err, upload.ErrTooLarge) {
				return staged, domain.ValidationError("uploaded file too large", field+" exceeds the size limit")
			}
			return staged, domain.InternalError("stage "+field, err)
		}
		if path != "" {
			staged.paths[field] = path
		}
	}
	return staged, nil
}
