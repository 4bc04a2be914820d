package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/eventura/server/internal/api/middleware"
	"github.com/eventura/server/internal/domain/accounts"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return accounts.ValidationError{Message: "request body must be valid JSON"}
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, accounts.ValidationError{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}

func uuidFromString(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, accounts.ValidationError{Field: "replacement_id", Message: "must be a UUID"}
	}
	return id, nil
}

// actorEmail identifies the caller for audit entries. Empty when the route
// did not pass through authentication.
func actorEmail(r *http.Request) string {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return claims.Email
	}
	return ""
}
