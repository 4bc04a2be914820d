// Package audit records privileged operations in a structured, append-only
// log stream. Every admin action that changes another user's account or a
// published event leaves an entry here, separate from request logging.
package audit

import (
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Actions recorded by the handlers.
const (
	ActionAccountUpdate   = "account.update"
	ActionAccountDelete   = "account.delete"
	ActionPasswordChange  = "account.password_change"
	ActionEventVerify     = "event.verify"
	ActionRecommendDelete = "recommendation.delete"
)

type Logger struct {
	log zerolog.Logger
}

func NewLogger(base zerolog.Logger) *Logger {
	return &Logger{log: base.With().Str("log", "audit").Logger()}
}

// Entry captures who did what to which resource.
type Entry struct {
	Action     string
	Actor      string
	Resource   string
	ResourceID string
	Detail     map[string]string
}

// Success records a completed privileged operation.
func (l *Logger) Success(r *http.Request, e Entry) {
	l.write(r, e, "success")
}

// Failure records a privileged operation that was attempted and rejected.
func (l *Logger) Failure(r *http.Request, e Entry) {
	l.write(r, e, "failure")
}

func (l *Logger) write(r *http.Request, e Entry, status string) {
	evt := l.log.Info().
		Str("action", e.Action).
		Str("actor", e.Actor).
		Str("status", status).
		Str("ip", ClientIP(r))
	if e.Resource != "" {
		evt = evt.Str("resource", e.Resource)
	}
	if e.ResourceID != "" {
		evt = evt.Str("resource_id", e.ResourceID)
	}
	for k, v := range e.Detail {
		evt = evt.Str(k, v)
	}
	evt.Msg("audit")
}

// ClientIP resolves the caller's address, preferring proxy headers when
// present. X-Forwarded-For may hold a chain; the first hop is the client.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
