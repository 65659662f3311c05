package api

import (
	"errors"
	"net/http"

	"github.com/okian/gvera/internal/adapters/http/request"
	"github.com/okian/gvera/internal/adapters/storage/filemanager"
	"github.com/okian/gvera/internal/domain/auth"
	"github.com/okian/gvera/internal/domain/validation"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotAvailable = errors.New("not available")
)

// classify maps an error onto an HTTP status and an error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, validation.ErrInvalid):
		return http.StatusUnprocessableEntity, "invalid"
	case errors.Is(err, request.ErrNotFound), errors.Is(err, filemanager.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, filemanager.ErrInvalidFileType):
		return http.StatusUnsupportedMediaType, "unsupported_media_type"
	case errors.Is(err, request.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, request.ErrMalformedBody), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, request.ErrUnsupportedMethod):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, request.ErrNoFileManager), errors.Is(err, request.ErrNoValidator), errors.Is(err, ErrNotAvailable):
		return http.StatusNotImplemented, "not_available"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
