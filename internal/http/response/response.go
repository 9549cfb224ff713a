package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/localserve/localserve-api/internal/domain"
	"github.com/localserve/localserve-api/pkg/logger"
)

// Envelope is the JSON shape of every response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func JSON(w http.ResponseWriter, statusCode int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, statusCode int, message string, data any) {
	JSON(w, statusCode, Envelope{Success: true, Message: message, Data: data})
}

func Fail(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, Envelope{Success: false, Error: message})
}

// Error translates a domain failure into a status code and envelope.
// Unmapped errors become a generic 500 so internals never leak.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		Fail(w, http.StatusBadRequest, ve.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrConflict):
		Fail(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrNotFound):
		Fail(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrChallengeMismatch):
		Fail(w, http.StatusUnauthorized, "invalid code")
	case errors.Is(err, domain.ErrTokenExpired):
		Fail(w, http.StatusUnauthorized, "token expired")
	case errors.Is(err, domain.ErrTokenInvalid):
		Fail(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, domain.ErrInvalidOrExpiredToken):
		Fail(w, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, domain.ErrEmailNotVerified):
		Fail(w, http.StatusForbidden, "email not verified")
	case errors.Is(err, domain.ErrForbidden):
		Fail(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrChallengeExpired):
		Fail(w, http.StatusBadRequest, "code expired")
	case errors.Is(err, domain.ErrChallengeNotFound):
		Fail(w, http.StatusBadRequest, "no pending verification")
	default:
		logger.ErrorContext(r.Context(), "unhandled error", "error", err, "path", r.URL.Path)
		Fail(w, http.StatusInternalServerError, "internal server error")
	}
}
