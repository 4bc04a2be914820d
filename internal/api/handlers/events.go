package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eventura/server/internal/api/middleware"
	"github.com/eventura/server/internal/api/respond"
	"github.com/eventura/server/internal/audit"
	"github.com/eventura/server/internal/auth"
	"github.com/eventura/server/internal/domain/accounts"
	"github.com/eventura/server/internal/domain/events"
	"github.com/google/uuid"
)

type EventsHandler struct {
	Events *events.Service
	Audit  *audit.Logger
}

func NewEventsHandler(eventsService *events.Service, auditLog *audit.Logger) *EventsHandler {
	return &EventsHandler{Events: eventsService, Audit: auditLog}
}

type eventRequest struct {
	Name          string     `json:"name"`
	Image         string     `json:"image"`
	Location      string     `json:"location"`
	Date          *time.Time `json:"date"`
	Category      string     `json:"category"`
	Accessibility string     `json:"accessibility"`
	GroupSize     int        `json:"group_size"`
	Ages          string     `json:"ages"`
	Modality      string     `json:"modality"`
	Price         int        `json:"price"`
	Content       string     `json:"content"`
	Slug          string     `json:"slug"`
}

func (req eventRequest) params() events.EventParams {
	return events.EventParams{
		Name:          req.Name,
		Image:         req.Image,
		Location:      req.Location,
		Date:          req.Date,
		Category:      req.Category,
		Accessibility: req.Accessibility,
		GroupSize:     req.GroupSize,
		Ages:          req.Ages,
		Modality:      req.Modality,
		Price:         req.Price,
		Content:       req.Content,
		Slug:          req.Slug,
	}
}

type eventResponse struct {
	Message string        `json:"message"`
	Event   *events.Event `json:"event"`
}

type eventListResponse struct {
	Message string         `json:"message"`
	Events  []events.Event `json:"eventos"`
	Total   int64          `json:"total,omitempty"`
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, auth.ErrMissingToken)
		return
	}
	owner, err := uuid.Parse(claims.Subject)
	if err != nil {
		respond.Error(w, r, auth.ErrTokenMalformed)
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	event, err := h.Events.Create(r.Context(), owner, req.params())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, eventResponse{Message: "event created", Event: event})
}

// List is the authenticated listing: admins see every event, collaborators
// only their own. Supports ?name= substring search and ?page= pagination.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, auth.ErrMissingToken)
		return
	}

	filters := events.Filters{Name: strings.TrimSpace(r.URL.Query().Get("name"))}
	if claims.Role != accounts.RoleAdmin.String() {
		owner, err := uuid.Parse(claims.Subject)
		if err != nil {
			respond.Error(w, r, auth.ErrTokenMalformed)
			return
		}
		filters.OwnerID = &owner
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	result, err := h.Events.List(r.Context(), filters, events.Pagination{Page: page})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, eventListResponse{
		Message: "events listed",
		Events:  result.Events,
		Total:   result.Total,
	})
}

// Latest serves the homepage feeds: 9 events by default, 24 with ?limit=24.
func (h *EventsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	limit := 9
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 24 {
		limit = v
	}

	items, err := h.Events.Latest(r.Context(), limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, eventListResponse{Message: "latest events", Events: items})
}

// Get returns a single event for editing. The owner or an admin may read it.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.authorizeOwner(r, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	event, err := h.Events.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, eventResponse{Message: "event found", Event: event})
}

func (h *EventsHandler) ByCity(w http.ResponseWriter, r *http.Request) {
	items, err := h.Events.PublicByCity(r.Context(), r.PathValue("city"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, eventListResponse{Message: "events listed", Events: items})
}

func (h *EventsHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	items, err := h.Events.PublicByCategory(r.Context(), r.PathValue("city"), r.PathValue("category"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, eventListResponse{Message: "events listed", Events: items})
}

// ByCategoryAll lists verified events in a category across every city.
func (h *EventsHandler) ByCategoryAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.Events.PublicByCategory(r.Context(), "", r.PathValue("category"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, eventListResponse{Message: "events listed", Events: items})
}

type eventSlugResponse struct {
	Message     string         `json:"message"`
	Post        *events.Event  `json:"post"`
	MoreOptions []events.Event `json:"moreOptions"`
}

func (h *EventsHandler) BySlug(w http.ResponseWriter, r *http.Request) {
	result, err := h.Events.BySlug(r.Context(), r.PathValue("city"), r.PathValue("category"), r.PathValue("slug"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, eventSlugResponse{
		Message:     "event found",
		Post:        result.Post,
		MoreOptions: result.MoreOptions,
	})
}

// Update replaces the stored event fields wholesale. The owner or an admin
// may update; ownership is checked against the token subject.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.authorizeOwner(r, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	event, err := h.Events.Update(r.Context(), id, req.params())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, eventResponse{Message: "event updated", Event: event})
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.authorizeOwner(r, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.Events.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Message(w, http.StatusOK, "event deleted")
}

type verifyEventRequest struct {
	Verified bool `json:"verified"`
}

// Verify flips the review gate on an event. Admin only (enforced by the
// route's middleware).
func (h *EventsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req verifyEventRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.Events.SetVerified(r.Context(), id, req.Verified); err != nil {
		respond.Error(w, r, err)
		return
	}

	h.Audit.Success(r, audit.Entry{
		Action:     audit.ActionEventVerify,
		Actor:      actorEmail(r),
		Resource:   "event",
		ResourceID: id.String(),
		Detail:     map[string]string{"verified": strconv.FormatBool(req.Verified)},
	})
	respond.Message(w, http.StatusOK, "event verification updated")
}

func (h *EventsHandler) authorizeOwner(r *http.Request, id uuid.UUID) error {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return auth.ErrMissingToken
	}
	if claims.Role == accounts.RoleAdmin.String() {
		return nil
	}

	event, err := h.Events.Get(r.Context(), id)
	if err != nil {
		return err
	}
	if event.OwnerID.String() != claims.Subject {
		return respond.ErrForbidden
	}
	return nil
}
