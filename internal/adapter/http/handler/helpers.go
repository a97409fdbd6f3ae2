package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iho/simplebank/internal/adapter/http/dto"
	"github.com/iho/simplebank/internal/adapter/http/middleware"
	"github.com/iho/simplebank/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes the error body for err and picks the status from its kind.
// Internal failures never leak their cause.
func writeError(w http.ResponseWriter, err error) {
	domainErr := domain.AsError(err)

	message := domainErr.Message
	switch {
	case domainErr.Kind == domain.KindInternal:
		message = "internal error"
	case domainErr.Expected():
		message = domainErr.Error()
	}

	writeJSON(w, statusForKind(domainErr.Kind), dto.ErrorResponse{
		ErrorType: string(domainErr.Kind),
		Message:   message,
	})
}

// statusForKind maps error kinds to HTTP status codes.
func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindSameAccountTransfer,
		domain.KindInvalidAmount,
		domain.KindAccountNotFound,
		domain.KindDifferentCurrencyAccounts,
		domain.KindInsufficientBalance,
		domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAccountNotOwned:
		return http.StatusForbidden
	case domain.KindAccountAlreadyExists, domain.KindUserAlreadyExists:
		return http.StatusConflict
	case domain.KindUserNotFound, domain.KindLoginNotFound:
		return http.StatusNotFound
	case domain.KindIncorrectPassword:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError(fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}

// actorID returns the authenticated caller. Handlers behind the auth
// middleware always have one.
func actorID(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return uuid.Nil, domain.NewInternalError(domain.ErrUnauthorized)
	}
	return id, nil
}

// uuidParam parses a UUID path parameter.
func uuidParam(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(fmt.Errorf("invalid %s: %w", key, err))
	}
	return id, nil
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
