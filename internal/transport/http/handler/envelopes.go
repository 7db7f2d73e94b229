package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/otp-auth-api/internal/domain"
	jwtinfra "github.com/otp-auth-api/internal/infrastructure/jwt"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps register/login/refresh responses.
type AuthEnvelope struct {
	User   *SafeAccount       `json:"user,omitempty"`
	Tokens *jwtinfra.TokenPair `json:"tokens,omitempty"`
}

// SafeAccount is the sanitized account view returned to clients. It never
// carries the password hash.
type SafeAccount struct {
	ID                string                    `json:"id"`
	Name              string                    `json:"name"`
	Email             string                    `json:"email"`
	Phone             string                    `json:"phone"`
	PhoneVerified     bool                      `json:"phone_verified"`
	EmergencyContacts []domain.EmergencyContact `json:"emergency_contacts"`
	CreatedAt         time.Time                 `json:"created_at"`
}

func toSafeAccount(a *domain.Account) *SafeAccount {
	if a == nil {
		return nil
	}
	return &SafeAccount{
		ID:                a.AccountID,
		Name:              a.Name,
		Email:             a.Email,
		Phone:             a.Phone,
		PhoneVerified:     a.PhoneVerified,
		EmergencyContacts: a.EmergencyContacts,
		CreatedAt:         a.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to HTTP status codes. Anything
// unmatched is an internal fault: logged with full detail, surfaced opaquely.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRateLimited), errors.Is(err, domain.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrGone):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrExpired),
		errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
	}
}
