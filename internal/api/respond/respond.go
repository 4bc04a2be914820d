// Package respond centralizes JSON response writing. Every response body
// carries a human-readable message field; errors are mapped onto the status
// taxonomy here so handlers never pick status codes themselves.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eventura/server/internal/auth"
	"github.com/eventura/server/internal/domain/accounts"
	"github.com/eventura/server/internal/domain/events"
	"github.com/eventura/server/internal/domain/recommendations"
)

const contentType = "application/json"

// ErrForbidden rejects an authenticated caller whose role does not cover the
// requested operation.
var ErrForbidden = errors.New("insufficient role for this operation")

// JSON writes v with the given status. v is expected to carry its own
// message field (see Envelope).
func JSON(w http.ResponseWriter, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		fallback := fmt.Sprintf("{\"message\":%q}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// Message writes a bare message envelope.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error maps err onto the status taxonomy, logs it, and writes a message
// envelope. Unclassified errors become a generic 500; their detail stays in
// the log, never the body.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)

	logger := zerolog.Ctx(r.Context())
	evt := logger.Warn()
	if status >= 500 {
		evt = logger.Error()
	}
	evt.Err(err).
		Int("status", status).
		Str("path", r.URL.Path).
		Str("method", r.Method).
		Msg("request failed")

	Message(w, status, msg)
}

func classify(err error) (int, string) {
	var verr accounts.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Error()
	}

	var everr events.ValidationError
	if errors.As(err, &everr) {
		return http.StatusBadRequest, everr.Error()
	}

	var lferr *accounts.LoginFailedError
	if errors.As(err, &lferr) {
		return http.StatusUnauthorized, fmt.Sprintf(
			"invalid credentials, %d attempts remaining before lockout", lferr.RemainingAttempts)
	}

	switch {
	case errors.Is(err, accounts.ErrDuplicateEmail),
		errors.Is(err, accounts.ErrPasswordMismatch),
		errors.Is(err, accounts.ErrSelfReassignment),
		errors.Is(err, recommendations.ErrInvalidPayload):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, accounts.ErrLockedOut):
		return http.StatusUnauthorized, "too many failed attempts, account temporarily locked"
	case errors.Is(err, accounts.ErrAccountNotVerified):
		return http.StatusUnauthorized, "account is pending verification"
	case errors.Is(err, accounts.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, "authentication required"

	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusForbidden, "token has expired"
	case errors.Is(err, auth.ErrTokenMalformed):
		return http.StatusForbidden, "invalid token"
	case errors.Is(err, auth.ErrMissingServiceKey),
		errors.Is(err, auth.ErrInvalidServiceKey):
		return http.StatusForbidden, "invalid service credential"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, ErrForbidden.Error()

	case errors.Is(err, accounts.ErrReplacementNotFound):
		return http.StatusNotFound, accounts.ErrReplacementNotFound.Error()
	case errors.Is(err, accounts.ErrNotFound),
		errors.Is(err, events.ErrNotFound),
		errors.Is(err, recommendations.ErrNotFound):
		return http.StatusNotFound, err.Error()
	}

	return http.StatusInternalServerError, "internal server error"
}
