package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eventura/server/internal/domain/events"
)

func seedEvent(t *testing.T, env *testEnv, owner string, name, city, category string, verified bool) *events.Event {
	t.Helper()
	account := env.register(t, owner, "collaborator", "Abcdef1!", true)
	event, err := env.Events.Create(context.Background(), account.ID, events.EventParams{
		Name:     name,
		Location: city,
		Category: category,
		Content:  "<p>detalles</p>",
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	if verified {
		if err := env.Events.SetVerified(context.Background(), event.ID, true); err != nil {
			t.Fatalf("verify event: %v", err)
		}
	}
	return event
}

func TestCreateEventAssignsOwner(t *testing.T) {
	env := newTestEnv(t)
	account := env.register(t, "colab@example.com", "collaborator", "Abcdef1!", true)
	h := NewEventsHandler(env.Events, env.Audit)

	req := authRequest(t, env.Tokens, http.MethodPost, "/api/v1/events", env.token(t, account),
		eventRequest{Name: "Taller de Robótica", Location: "Málaga", Category: "Educación"})
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := jsonBody(t, rec)
	event := body["event"].(map[string]any)
	if event["owner_id"] != account.ID.String() {
		t.Fatalf("owner = %v", event["owner_id"])
	}
	if event["slug"] != "malaga/educacion/taller-de-robotica" {
		t.Fatalf("slug = %v", event["slug"])
	}
}

func TestListScopesCollaboratorToOwnEvents(t *testing.T) {
	env := newTestEnv(t)
	mine := env.register(t, "mine@example.com", "collaborator", "Abcdef1!", true)
	other := env.register(t, "other@example.com", "collaborator", "Abcdef1!", true)

	if _, err := env.Events.Create(context.Background(), mine.ID, events.EventParams{Name: "Mío", Location: "Sevilla", Category: "Ocio"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.Events.Create(context.Background(), other.ID, events.EventParams{Name: "Ajeno", Location: "Sevilla", Category: "Ocio"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	h := NewEventsHandler(env.Events, env.Audit)
	req := authRequest(t, env.Tokens, http.MethodGet, "/api/v1/events", env.token(t, mine), nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	body := jsonBody(t, rec)
	items := body["eventos"].([]any)
	if len(items) != 1 {
		t.Fatalf("got %d events, want 1", len(items))
	}
}

func TestByCityOnlyVerified(t *testing.T) {
	env := newTestEnv(t)
	seedEvent(t, env, "a@example.com", "Concierto", "Granada", "Música", true)
	seedEvent(t, env, "b@example.com", "Pendiente", "Granada", "Música", false)

	h := NewEventsHandler(env.Events, env.Audit)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/city/granada", nil)
	req.SetPathValue("city", "granada")
	rec := httptest.NewRecorder()
	h.ByCity(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := jsonBody(t, rec)
	items := body["eventos"].([]any)
	if len(items) != 1 {
		t.Fatalf("got %d events, want 1", len(items))
	}
}

func TestByCityEmptyIs404(t *testing.T) {
	env := newTestEnv(t)
	h := NewEventsHandler(env.Events, env.Audit)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/city/teruel", nil)
	req.SetPathValue("city", "teruel")
	rec := httptest.NewRecorder()
	h.ByCity(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestBySlugWithRelated(t *testing.T) {
	env := newTestEnv(t)
	seedEvent(t, env, "a@example.com", "Taller Uno", "Sevilla", "Educación", true)
	seedEvent(t, env, "b@example.com", "Taller Dos", "Sevilla", "Educación", true)

	h := NewEventsHandler(env.Events, env.Audit)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/city/sevilla/educacion/taller-uno", nil)
	req.SetPathValue("city", "sevilla")
	req.SetPathValue("category", "educacion")
	req.SetPathValue("slug", "taller-uno")
	rec := httptest.NewRecorder()
	h.BySlug(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := jsonBody(t, rec)
	post := body["post"].(map[string]any)
	if post["name"] != "Taller Uno" {
		t.Fatalf("post = %v", post["name"])
	}
	more := body["moreOptions"].([]any)
	if len(more) != 1 {
		t.Fatalf("got %d related, want 1", len(more))
	}
}

func TestUpdateEventOwnershipGate(t *testing.T) {
	env := newTestEnv(t)
	event := seedEvent(t, env, "owner@example.com", "Original", "Cádiz", "Ocio", false)
	intruder := env.register(t, "intruder@example.com", "collaborator", "Abcdef1!", true)

	h := NewEventsHandler(env.Events, env.Audit)
	req := authRequest(t, env.Tokens, http.MethodPut, "/api/v1/events/"+event.ID.String(), env.token(t, intruder),
		eventRequest{Name: "Hijacked", Location: "Cádiz", Category: "Ocio"})
	req.SetPathValue("id", event.ID.String())
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestDeleteEventAsAdmin(t *testing.T) {
	env := newTestEnv(t)
	event := seedEvent(t, env, "owner@example.com", "Borrable", "Cádiz", "Ocio", false)
	admin := env.register(t, "admin@example.com", "admin", "Abcdef1!", true)

	h := NewEventsHandler(env.Events, env.Audit)
	req := authRequest(t, env.Tokens, http.MethodDelete, "/api/v1/events/"+event.ID.String(), env.token(t, admin), nil)
	req.SetPathValue("id", event.ID.String())
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if _, err := env.Events.Get(req.Context(), event.ID); err == nil {
		t.Fatal("event still present after delete")
	}
}

func TestVerifyEvent(t *testing.T) {
	env := newTestEnv(t)
	event := seedEvent(t, env, "owner@example.com", "Pendiente", "Cádiz", "Ocio", false)
	admin := env.register(t, "admin@example.com", "admin", "Abcdef1!", true)

	h := NewEventsHandler(env.Events, env.Audit)
	req := authRequest(t, env.Tokens, http.MethodPut, "/api/v1/events/"+event.ID.String()+"/verify", env.token(t, admin),
		verifyEventRequest{Verified: true})
	req.SetPathValue("id", event.ID.String())
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	stored, err := env.Events.Get(req.Context(), event.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.Verified {
		t.Fatal("event should be verified")
	}
}

func TestLatestFeedLimits(t *testing.T) {
	env := newTestEnv(t)
	account := env.register(t, "prolific@example.com", "collaborator", "Abcdef1!", true)
	for i := 0; i < 12; i++ {
		event, err := env.Events.Create(context.Background(), account.ID, events.EventParams{
			Name:     fmt.Sprintf("Evento %d", i),
			Location: "Valencia",
			Category: "Ocio",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := env.Events.SetVerified(context.Background(), event.ID, true); err != nil {
			t.Fatalf("verify: %v", err)
		}
	}

	h := NewEventsHandler(env.Events, env.Audit)

	rec := httptest.NewRecorder()
	h.Latest(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/latest", nil))
	if got := len(jsonBody(t, rec)["eventos"].([]any)); got != 9 {
		t.Fatalf("default feed = %d events, want 9", got)
	}

	rec = httptest.NewRecorder()
	h.Latest(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/latest?limit=24", nil))
	if got := len(jsonBody(t, rec)["eventos"].([]any)); got != 12 {
		t.Fatalf("extended feed = %d events, want 12", got)
	}
}

func TestByCategoryAcrossCities(t *testing.T) {
	env := newTestEnv(t)
	seedEvent(t, env, "a@example.com", "Concierto Uno", "Granada", "Musica", true)
	seedEvent(t, env, "b@example.com", "Concierto Dos", "Valencia", "Musica", true)
	seedEvent(t, env, "c@example.com", "Feria", "Valencia", "Ocio", true)

	h := NewEventsHandler(env.Events, env.Audit)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/category/musica", nil)
	req.SetPathValue("category", "musica")
	rec := httptest.NewRecorder()
	h.ByCategoryAll(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := len(jsonBody(t, rec)["eventos"].([]any)); got != 2 {
		t.Fatalf("got %d events, want 2", got)
	}
}

func TestGetEventOwnershipGate(t *testing.T) {
	env := newTestEnv(t)
	event := seedEvent(t, env, "owner@example.com", "Privado", "Bilbao", "Ocio", false)
	intruder := env.register(t, "intruder@example.com", "collaborator", "Abcdef1!", true)

	h := NewEventsHandler(env.Events, env.Audit)
	req := authRequest(t, env.Tokens, http.MethodGet, "/api/v1/events/"+event.ID.String(), env.token(t, intruder), nil)
	req.SetPathValue("id", event.ID.String())
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
