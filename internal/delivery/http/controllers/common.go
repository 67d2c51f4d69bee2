package controllers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"venuebooking/internal/delivery/http/helpers"
	"venuebooking/internal/delivery/http/middleware"
	"venuebooking/internal/domain"
)

// requirePrincipal returns the authenticated caller or writes 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return domain.Principal{}, false
	}
	return p, true
}

// pathUUID reads a UUID path value or writes 400.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+name)
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, name+" must be a valid UUID")
		return "", false
	}
	return id.String(), true
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// writeError maps err to a response and logs it when it is not a domain refusal.
func writeError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if helpers.WriteDomainError(w, err) {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
}
