package handlers

import (
	"net/http"

	"github.com/eventura/server/internal/api/middleware"
	"github.com/eventura/server/internal/api/respond"
	"github.com/eventura/server/internal/audit"
	"github.com/eventura/server/internal/auth"
	"github.com/eventura/server/internal/domain/accounts"
)

type UsersHandler struct {
	Accounts *accounts.Service
	Audit    *audit.Logger
}

func NewUsersHandler(accountsService *accounts.Service, auditLog *audit.Logger) *UsersHandler {
	return &UsersHandler{Accounts: accountsService, Audit: auditLog}
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Entity   *string `json:"entity"`
	Verified *bool   `json:"verified"`
}

// Update applies a partial profile update to the target account. Admin only;
// omitted fields keep their stored values.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	account, err := h.Accounts.Update(r.Context(), id, accounts.UpdateParams{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		Entity:   req.Entity,
		Verified: req.Verified,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.Audit.Success(r, audit.Entry{
		Action:     audit.ActionAccountUpdate,
		Actor:      actorEmail(r),
		Resource:   "account",
		ResourceID: id.String(),
	})
	respond.JSON(w, http.StatusOK, sessionResponse{
		Message: "account updated",
		User:    account.Summary(),
	})
}

type changePasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// ChangePassword sets a new password for the target account. Callers may
// change their own password; changing anyone else's requires the admin role.
func (h *UsersHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, auth.ErrMissingToken)
		return
	}
	if claims.Subject != id.String() && claims.Role != accounts.RoleAdmin.String() {
		h.Audit.Failure(r, audit.Entry{
			Action:     audit.ActionPasswordChange,
			Actor:      claims.Email,
			Resource:   "account",
			ResourceID: id.String(),
		})
		respond.Error(w, r, respond.ErrForbidden)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.Accounts.ChangePassword(r.Context(), id, req.Password, req.PasswordConfirm); err != nil {
		respond.Error(w, r, err)
		return
	}

	h.Audit.Success(r, audit.Entry{
		Action:     audit.ActionPasswordChange,
		Actor:      claims.Email,
		Resource:   "account",
		ResourceID: id.String(),
	})
	respond.Message(w, http.StatusOK, "password changed")
}

type deleteUserRequest struct {
	ReplacementID string `json:"replacement_id"`
}

// Delete removes the target account after reassigning everything it owns to
// the replacement named in the body. Admin only.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req deleteUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	replacement, err := uuidFromString(req.ReplacementID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.Accounts.DeleteWithReassignment(r.Context(), id, replacement); err != nil {
		respond.Error(w, r, err)
		return
	}

	h.Audit.Success(r, audit.Entry{
		Action:     audit.ActionAccountDelete,
		Actor:      actorEmail(r),
		Resource:   "account",
		ResourceID: id.String(),
		Detail:     map[string]string{"replacement_id": replacement.String()},
	})
	respond.Message(w, http.StatusOK, "account deleted, owned records reassigned")
}

type listUsersResponse struct {
	Message string             `json:"message"`
	Users   []accounts.Summary `json:"users"`
}

// List returns every account. Admin only.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Accounts.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	summaries := make([]accounts.Summary, 0, len(items))
	for i := range items {
		summaries = append(summaries, items[i].Summary())
	}

	respond.JSON(w, http.StatusOK, listUsersResponse{
		Message: "accounts listed",
		Users:   summaries,
	})
}
