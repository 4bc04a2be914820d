package middleware

import (
	"net/http"

	"github.com/eventura/server/internal/auth"
	"github.com/eventura/server/internal/api/respond"
	"github.com/eventura/server/internal/domain/accounts"
)

// Authenticate validates the bearer token and stores its claims in the
// request context. A missing credential is 401; a credential that is present
// but expired or tampered is 403.
func Authenticate(tokens *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole gates a route on the caller holding one of the given roles.
// It must run after Authenticate.
func RequireRole(roles ...accounts.Role) func(http.Handler) http.Handler {
	allowed := make(map[accounts.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				respond.Error(w, r, auth.ErrMissingToken)
				return
			}
			if _, ok := allowed[accounts.Role(claims.Role)]; !ok {
				respond.Error(w, r, respond.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ServiceKey gates a route on the X-Service-Key pre-shared credential. It is
// for service-to-service calls only and never substitutes for user auth.
func ServiceKey(key *auth.ServiceKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := key.VerifyRequest(r); err != nil {
				respond.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
