package helpers

import (
	"errors"
	"net/http"

	"venuebooking/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters: ErrUserNotFound wraps ErrNotFound, so specific entries come first.
var errorMappings = []errorMapping{
	{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{domain.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{domain.ErrSlotConflict, http.StatusConflict, ErrCodeSlotConflict},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized},
	{domain.ErrAlreadyRegistered, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrVenueFull, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrNotRegistered, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrDuplicateEmail, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrInvalidInput, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrEventNotConfirmed, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrCapacityBelowRoster, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrInvalidStatus, http.StatusBadRequest, ErrCodeBadRequest},
}

// StatusForError maps a domain error to its HTTP status and error code.
// Unknown errors are internal and reported as 500.
func StatusForError(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, ErrCodeInternalError
}

// WriteDomainError writes err using StatusForError. Internal errors get a generic message
// so storage details never reach the client; the boolean reports whether err was internal.
func WriteDomainError(w http.ResponseWriter, err error) (internal bool) {
	status, code := StatusForError(err)
	if status == http.StatusInternalServerError {
		WriteJSONError(w, status, code, "internal server error")
		return true
	}
	WriteJSONError(w, status, code, err.Error())
	return false
}
