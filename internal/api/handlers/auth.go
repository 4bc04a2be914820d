package handlers

import (
	"errors"
	"net/http"

	"github.com/eventura/server/internal/api/middleware"
	"github.com/eventura/server/internal/api/respond"
	"github.com/eventura/server/internal/auth"
	"github.com/eventura/server/internal/domain/accounts"
	"github.com/eventura/server/internal/metrics"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Accounts *accounts.Service
}

func NewAuthHandler(accountsService *accounts.Service) *AuthHandler {
	return &AuthHandler{Accounts: accountsService}
}

type registerRequest struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	Entity          string `json:"entity"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type sessionResponse struct {
	Message string           `json:"message"`
	User    accounts.Summary `json:"user"`
	Token   string           `json:"token,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	account, token, err := h.Accounts.Register(r.Context(), accounts.RegisterParams{
		Email:           req.Email,
		Name:            req.Name,
		Role:            req.Role,
		Entity:          req.Entity,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	metrics.RegistrationsTotal.WithLabelValues(account.Role.String()).Inc()
	if token != "" {
		metrics.TokensIssuedTotal.Inc()
	}

	msg := "account created"
	if account.Role.RequiresPassword() && !account.Verified {
		msg = "account created, pending verification"
	}
	respond.JSON(w, http.StatusCreated, sessionResponse{
		Message: msg,
		User:    account.Summary(),
		Token:   token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	account, token, err := h.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrLockedOut):
			metrics.LoginAttemptsTotal.WithLabelValues("locked_out").Inc()
			metrics.LockoutsTotal.Inc()
		case errors.Is(err, accounts.ErrAccountNotVerified):
			metrics.LoginAttemptsTotal.WithLabelValues("unverified").Inc()
		case errors.Is(err, accounts.ErrInvalidCredentials):
			metrics.LoginAttemptsTotal.WithLabelValues("bad_credentials").Inc()
		}
		respond.Error(w, r, err)
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.Inc()

	respond.JSON(w, http.StatusOK, sessionResponse{
		Message: "login successful",
		User:    account.Summary(),
		Token:   token,
	})
}

// Logout is a stateless acknowledgement. Tokens are self-contained and are
// not revoked server-side; the client discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respond.Message(w, http.StatusOK, "session closed, discard the token")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, auth.ErrMissingToken)
		return
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		respond.Error(w, r, auth.ErrTokenMalformed)
		return
	}

	account, err := h.Accounts.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, sessionResponse{
		Message: "authenticated",
		User:    account.Summary(),
	})
}
