package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by the domain services. Services wrap them with
// context; RespondError maps them back to status codes at the boundary.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps domain errors to HTTP responses. Internal details of
// unknown errors are never echoed to the client.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", userFacing(err))
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", userFacing(err))
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", userFacing(err))
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", userFacing(err))
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", userFacing(err))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func userFacing(err error) string {
	return err.Error()
}
