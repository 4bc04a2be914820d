package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/eventura/server/internal/api/respond"
	"github.com/eventura/server/internal/audit"
	"github.com/eventura/server/internal/domain/recommendations"
)

type RecommendationsHandler struct {
	Recommendations *recommendations.Service
	Audit           *audit.Logger
}

func NewRecommendationsHandler(service *recommendations.Service, auditLog *audit.Logger) *RecommendationsHandler {
	return &RecommendationsHandler{Recommendations: service, Audit: auditLog}
}

type recommendationResponse struct {
	Message        string                          `json:"message"`
	Recommendation *recommendations.Recommendation `json:"recommendation"`
}

type recommendationListResponse struct {
	Message         string                           `json:"message"`
	Recommendations []recommendations.Recommendation `json:"recommendations"`
}

func (h *RecommendationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respond.Error(w, r, recommendations.ErrInvalidPayload)
		return
	}

	rec, err := h.Recommendations.Create(r.Context(), json.RawMessage(body))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, recommendationResponse{
		Message:        "recommendation stored",
		Recommendation: rec,
	})
}

func (h *RecommendationsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Recommendations.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, recommendationListResponse{
		Message:         "recommendations listed",
		Recommendations: items,
	})
}

func (h *RecommendationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respond.Error(w, r, recommendations.ErrInvalidPayload)
		return
	}

	rec, err := h.Recommendations.Update(r.Context(), id, json.RawMessage(body))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, recommendationResponse{
		Message:        "recommendation updated",
		Recommendation: rec,
	})
}

func (h *RecommendationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.Recommendations.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	h.Audit.Success(r, audit.Entry{
		Action:     audit.ActionRecommendDelete,
		Actor:      actorEmail(r),
		Resource:   "recommendation",
		ResourceID: id.String(),
	})
	respond.Message(w, http.StatusOK, "recommendation deleted")
}
