package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ServiceKeyHeader carries the pre-shared service-to-service credential.
// This credential identifies a trusted backend, not a user: routes accept it
// only when they opt in explicitly, and it never substitutes for a bearer
// token on account-scoped endpoints.
const ServiceKeyHeader = "X-Service-Key"

var (
	ErrMissingServiceKey = errors.New("missing service key")
	ErrInvalidServiceKey = errors.New("invalid service key")
)

type ServiceKey struct {
	digest [sha256.Size]byte
	empty  bool
}

// NewServiceKey builds a verifier for the configured key. An empty
// configured key yields a verifier that rejects everything.
func NewServiceKey(configured string) *ServiceKey {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		return &ServiceKey{empty: true}
	}
	return &ServiceKey{digest: sha256.Sum256([]byte(configured))}
}

func (k *ServiceKey) Enabled() bool {
	return k != nil && !k.empty
}

// VerifyRequest checks the service-key header in constant time.
func (k *ServiceKey) VerifyRequest(r *http.Request) error {
	if !k.Enabled() {
		return ErrInvalidServiceKey
	}
	presented := strings.TrimSpace(r.Header.Get(ServiceKeyHeader))
	if presented == "" {
		return ErrMissingServiceKey
	}
	presentedDigest := sha256.Sum256([]byte(presented))
	if subtle.ConstantTimeCompare(presentedDigest[:], k.digest[:]) != 1 {
		return ErrInvalidServiceKey
	}
	return nil
}
