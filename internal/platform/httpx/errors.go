// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// Sentinel errors for the transport layer. They alias the shared domain errors so
// services and handlers agree on classification.
var (
	ErrNotFound   = shared.ErrNotFound
	ErrDuplicate  = shared.ErrDuplicate
	ErrValidation = shared.ErrValidation
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrUnknownRole):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrInvalidRoleID):
		Error(w, http.StatusBadRequest, "Invalid roleId parameter")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// IDParam parses the {id} URL parameter.
func IDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Join(ErrValidation, errors.New("invalid id"))
	}
	return id, nil
}
