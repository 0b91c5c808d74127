package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DragonRU1/silentauth/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
	Meta    meta        `json:"meta"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type meta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data, Meta: buildMeta(r)})
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: &apiError{Code: code, Message: message, Details: details}, Meta: buildMeta(r)})
}

// ServiceError maps the service failure taxonomy onto HTTP. Every kind gets
// its own code so clients can tell a replayed verification from a vanished
// session from a timed-out one.
func ServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrApiKeyNotFound):
		Error(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, service.ErrSessionExpired):
		Error(w, r, http.StatusConflict, "SESSION_EXPIRED", err.Error(), nil)
	case errors.Is(err, service.ErrSessionAlreadyVerified):
		Error(w, r, http.StatusConflict, "ALREADY_VERIFIED", err.Error(), nil)
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials):
		Error(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error(), nil)
	case errors.Is(err, service.ErrEmailTaken):
		Error(w, r, http.StatusConflict, "EMAIL_TAKEN", err.Error(), nil)
	case errors.Is(err, service.ErrIntegrityViolation):
		Error(w, r, http.StatusInternalServerError, "INTEGRITY_VIOLATION", err.Error(), nil)
	default:
		Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

func buildMeta(r *http.Request) meta {
	id := chimiddleware.GetReqID(r.Context())
	if id == "" {
		id = r.Header.Get("X-Request-Id")
	}
	if id == "" {
		id = "req-unknown"
	}
	return meta{RequestID: id, Timestamp: time.Now().UTC()}
}
