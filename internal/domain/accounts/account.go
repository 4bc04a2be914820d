// Package accounts implements account lifecycle management: registration,
// throttled login, profile and password updates, and deletion with
// reassignment of owned records.
package accounts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles. The mapping from role to
// "authenticates with a password" and "belongs to an entity" lives here so
// registration and login stay exhaustive over the set.
type Role string

const (
	// RoleNewsletter is the unprivileged role: no password, no login,
	// immediately usable after registration.
	RoleNewsletter Role = "newsletter"

	// RoleCollaborator publishes events and must be verified by an
	// administrator before it can log in.
	RoleCollaborator Role = "collaborator"

	// RoleAdmin manages accounts and verifies collaborators.
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleNewsletter, RoleCollaborator, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// RequiresPassword reports whether the role authenticates with a first-party
// password. Accounts store a password hash if and only if this is true.
func (r Role) RequiresPassword() bool {
	return r == RoleCollaborator || r == RoleAdmin
}

// RequiresEntity reports whether the role must reference an organization.
func (r Role) RequiresEntity() bool {
	return r == RoleCollaborator || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

type Account struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Role         Role
	Entity       string
	Verified     bool
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the externally visible shape of an account. The password hash
// never leaves the domain layer.
type Summary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Entity    string    `json:"entity,omitempty"`
	Verified  bool      `json:"verified"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Account) Summary() Summary {
	return Summary{
		ID:        a.ID.String(),
		Email:     a.Email,
		Name:      a.Name,
		Role:      a.Role.String(),
		Entity:    a.Entity,
		Verified:  a.Verified,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
