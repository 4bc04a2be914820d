package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eventura/server/internal/auth"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountNotVerified  = errors.New("account is not verified")
	ErrLockedOut           = errors.New("account is temporarily locked")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrReplacementNotFound = errors.New("replacement account not found")
	ErrSelfReassignment    = errors.New("cannot reassign an account to itself")
)

// ValidationError marks malformed or missing input rejected at the boundary,
// before any store mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoginFailedError is returned on a failed credential check. It carries the
// number of attempts left before lockout; nothing else about the failure is
// disclosed, including whether the account exists.
type LoginFailedError struct {
	RemainingAttempts int
}

func (e *LoginFailedError) Error() string {
	return ErrInvalidCredentials.Error()
}

func (e *LoginFailedError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

// Notifier delivers out-of-band account notifications. Implementations must
// tolerate being nil-checked away; delivery failures never fail the
// operation that triggered them.
type Notifier interface {
	AccountVerified(ctx context.Context, email, name string) error
}

type Service struct {
	repo      Repository
	throttle  *Tracker
	tokens    *auth.JWTManager
	notifier  Notifier
	validator *validator.Validate
	logger    zerolog.Logger
}

func NewService(repo Repository, throttle *Tracker, tokens *auth.JWTManager, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		throttle:  throttle,
		tokens:    tokens,
		notifier:  notifier,
		validator: validator.New(),
		logger:    logger.With().Str("component", "accounts").Logger(),
	}
}

type RegisterParams struct {
	Email           string
	Name            string
	Role            string
	Entity          string
	Password        string
	PasswordConfirm string

	// Verified pre-approves the account. Only trusted callers set it:
	// the admin bootstrap, the seeder, and admin-driven creation. Requests
	// arriving over the public register endpoint never do.
	Verified bool
}

// Register creates an account. Privileged roles must supply a password that
// passes the strength rule plus a matching confirmation, and start
// unverified until an administrator approves them. The newsletter role
// stores no password and is usable immediately.
//
// The returned token is non-empty only when the new account is verified at
// creation time; an unverified collaborator gets no token until it has been
// verified and logged in.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Account, string, error) {
	email := normalizeEmail(params.Email)
	if err := s.validator.Var(email, "required,email"); err != nil {
		return nil, "", ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, "", ValidationError{Field: "name", Message: "is required"}
	}

	role, err := ParseRole(params.Role)
	if err != nil {
		return nil, "", ValidationError{Field: "role", Message: "is not a known role"}
	}

	account := &Account{
		ID:       uuid.New(),
		Email:    email,
		Name:     strings.TrimSpace(params.Name),
		Role:     role,
		Entity:   strings.TrimSpace(params.Entity),
		Active:   true,
		Verified: !role.RequiresPassword() || params.Verified,
	}

	if role.RequiresEntity() && account.Entity == "" {
		return nil, "", ValidationError{Field: "entity", Message: "is required for this role"}
	}

	if role.RequiresPassword() {
		if err := auth.ValidatePasswordStrength(params.Password); err != nil {
			return nil, "", ValidationError{Field: "password", Message: err.Error()}
		}
		if strings.TrimSpace(params.Password) != strings.TrimSpace(params.PasswordConfirm) {
			return nil, "", ErrPasswordMismatch
		}
		hash, err := auth.HashPassword(params.Password)
		if err != nil {
			return nil, "", fmt.Errorf("hash password: %w", err)
		}
		account.PasswordHash = hash
	}

	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", ErrDuplicateEmail
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, "", fmt.Errorf("create account: %w", err)
	}

	s.logger.Info().
		Str("account_id", account.ID.String()).
		Str("role", account.Role.String()).
		Msg("account registered")

	var token string
	if role.RequiresPassword() && account.Verified {
		token, err = s.tokens.Generate(account.ID.String(), account.Email, account.Name, account.Role.String())
		if err != nil {
			return nil, "", fmt.Errorf("issue token: %w", err)
		}
	}
	return account, token, nil
}

// Login runs the throttled credential check and mints a bearer token.
//
// Order of gates: the verification check comes first so an unverified
// account never accumulates lockout state from its own gate; then the
// lockout check, before any credential work, so a locked account learns
// nothing about whether its password was right; then the credential check
// itself. A success does not erase earlier failures; only the window
// aging out does.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, string, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, "", ValidationError{Message: "email and password are required"}
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, "", fmt.Errorf("find account: %w", err)
	}

	if account != nil && account.Role.RequiresPassword() && !account.Verified {
		return nil, "", ErrAccountNotVerified
	}

	locked, err := s.throttle.IsLockedOut(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if locked {
		s.logger.Warn().Str("email_hash", hashForLog(email)).Msg("login rejected: locked out")
		return nil, "", ErrLockedOut
	}

	ok := account != nil && auth.VerifyPassword(password, account.PasswordHash)
	if !ok {
		countBefore, err := s.throttle.CountRecentFailures(ctx, email)
		if err != nil {
			return nil, "", err
		}
		if err := s.throttle.RecordFailure(ctx, email); err != nil {
			return nil, "", err
		}
		return nil, "", &LoginFailedError{RemainingAttempts: s.throttle.RemainingAttempts(countBefore)}
	}

	if !account.Active {
		// Deactivated accounts fail closed with the generic message. The
		// credential check itself succeeded, so no failure is recorded.
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(account.ID.String(), account.Email, account.Name, account.Role.String())
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Str("account_id", account.ID.String()).Msg("login succeeded")
	return account, token, nil
}

type UpdateParams struct {
	Email    *string
	Name     *string
	Role     *string
	Entity   *string
	Verified *bool
}

// Update applies a partial profile update. Omitted fields keep their
// previous values.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	wasVerified := account.Verified

	if params.Email != nil {
		email := normalizeEmail(*params.Email)
		if err := s.validator.Var(email, "required,email"); err != nil {
			return nil, ValidationError{Field: "email", Message: "must be a valid email address"}
		}
		if email != account.Email {
			other, err := s.repo.GetByEmail(ctx, email)
			if err == nil && other != nil && other.ID != id {
				return nil, ErrDuplicateEmail
			} else if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("check email: %w", err)
			}
			account.Email = email
		}
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, ValidationError{Field: "name", Message: "cannot be blank"}
		}
		account.Name = name
	}

	if params.Role != nil {
		role, err := ParseRole(*params.Role)
		if err != nil {
			return nil, ValidationError{Field: "role", Message: "is not a known role"}
		}
		if role.RequiresPassword() && account.PasswordHash == "" {
			return nil, ValidationError{Field: "role", Message: "this role needs a password; set one first"}
		}
		if !role.RequiresPassword() {
			account.PasswordHash = ""
		}
		account.Role = role
	}

	if params.Entity != nil {
		account.Entity = strings.TrimSpace(*params.Entity)
	}
	if account.Role.RequiresEntity() && account.Entity == "" {
		return nil, ValidationError{Field: "entity", Message: "is required for this role"}
	}

	if params.Verified != nil {
		account.Verified = *params.Verified
	}

	account.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	if !wasVerified && account.Verified && s.notifier != nil {
		if err := s.notifier.AccountVerified(ctx, account.Email, account.Name); err != nil {
			s.logger.Error().Err(err).Str("account_id", id.String()).Msg("verified notification failed")
		}
	}

	s.logger.Info().Str("account_id", id.String()).Msg("account updated")
	return account, nil
}

// ChangePassword validates and stores a new password hash. Nothing else
// about the account changes.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, password, confirm string) error {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !account.Role.RequiresPassword() {
		return ValidationError{Field: "role", Message: "this role does not authenticate with a password"}
	}

	if err := auth.ValidatePasswordStrength(password); err != nil {
		return ValidationError{Field: "password", Message: err.Error()}
	}
	if strings.TrimSpace(password) != strings.TrimSpace(confirm) {
		return ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	account.PasswordHash = hash
	account.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, account); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	s.logger.Info().Str("account_id", id.String()).Msg("password changed")
	return nil
}

// DeleteWithReassignment deletes the account after handing every record it
// owns to the replacement. Preconditions are checked before any mutation;
// the two-step transfer runs inside a single store transaction so a crash
// between the steps leaves nothing half-moved.
func (s *Service) DeleteWithReassignment(ctx context.Context, id, replacement uuid.UUID) error {
	if id == replacement {
		return ErrSelfReassignment
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, replacement); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrReplacementNotFound
		}
		return err
	}

	if err := s.repo.DeleteWithReassignment(ctx, id, replacement); err != nil {
		return fmt.Errorf("delete with reassignment: %w", err)
	}

	s.logger.Info().
		Str("account_id", id.String()).
		Str("replacement_id", replacement.String()).
		Msg("account deleted, owned records reassigned")
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashForLog keeps raw emails out of log lines.
func hashForLog(email string) string {
	if len(email) <= 3 {
		return "***"
	}
	return email[:3] + "***"
}
