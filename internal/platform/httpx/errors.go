package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared across the domain layer. Services wrap these with
// context; RespondError unwraps them back into problem documents.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrDuplicateNumber = errors.New("duplicate document number")
	ErrValidation      = errors.New("validation failed")
	ErrInvalidMaster   = errors.New("invalid master record")
)

// RespondError maps domain errors to RFC7807 responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateNumber):
		Problem(w, http.StatusConflict, "Duplicate Number", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidMaster):
		Problem(w, http.StatusBadRequest, "Invalid Master Record", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
