package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eventura/server/internal/api/middleware"
	"github.com/eventura/server/internal/audit"
	"github.com/eventura/server/internal/auth"
	"github.com/eventura/server/internal/domain/accounts"
	"github.com/eventura/server/internal/domain/events"
	"github.com/eventura/server/internal/domain/recommendations"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]accounts.Account
	owned    map[uuid.UUID]uuid.UUID // event id -> owner
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{
		accounts: make(map[uuid.UUID]accounts.Account),
		owned:    make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *memAccountRepo) Create(ctx context.Context, account *accounts.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return accounts.ErrDuplicateEmail
		}
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	r.accounts[account.ID] = *account
	return nil
}

func (r *memAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	return &account, nil
}

func (r *memAccountRepo) GetByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email {
			found := account
			return &found, nil
		}
	}
	return nil, accounts.ErrNotFound
}

func (r *memAccountRepo) Update(ctx context.Context, account *accounts.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; !ok {
		return accounts.ErrNotFound
	}
	r.accounts[account.ID] = *account
	return nil
}

func (r *memAccountRepo) List(ctx context.Context) ([]accounts.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]accounts.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *memAccountRepo) DeleteWithReassignment(ctx context.Context, id, replacement uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return accounts.ErrNotFound
	}
	for eventID, owner := range r.owned {
		if owner == id {
			r.owned[eventID] = replacement
		}
	}
	delete(r.accounts, id)
	return nil
}

type memFailureLog struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

func newMemFailureLog() *memFailureLog {
	return &memFailureLog{entries: make(map[string][]time.Time)}
}

func (l *memFailureLog) Record(ctx context.Context, email string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[email] = append(l.entries[email], at)
	return nil
}

func (l *memFailureLog) CountSince(ctx context.Context, email string, since time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for _, at := range l.entries[email] {
		if !at.Before(since) {
			count++
		}
	}
	return count, nil
}

type memEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]events.Event
	order  []uuid.UUID
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[uuid.UUID]events.Event)}
}

func (r *memEventRepo) Create(ctx context.Context, event *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.events[event.ID] = *event
	r.order = append(r.order, event.ID)
	return nil
}

func (r *memEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	return &event, nil
}

func (r *memEventRepo) GetBySlug(ctx context.Context, slug string, verifiedOnly bool) (*events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range r.events {
		if event.Slug == slug && (!verifiedOnly || event.Verified) {
			found := event
			return &found, nil
		}
	}
	return nil, events.ErrNotFound
}

func (r *memEventRepo) List(ctx context.Context, filters events.Filters, page events.Pagination) ([]events.Event, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []events.Event
	for _, id := range r.order {
		event := r.events[id]
		if filters.VerifiedOnly && !event.Verified {
			continue
		}
		if filters.OwnerID != nil && event.OwnerID != *filters.OwnerID {
			continue
		}
		if filters.City != "" && !containsFold(event.Location, filters.City) {
			continue
		}
		if filters.Category != "" && !containsFold(event.Category, filters.Category) {
			continue
		}
		if filters.Name != "" && !containsFold(event.Name, filters.Name) {
			continue
		}
		matched = append(matched, event)
	}
	total := int64(len(matched))
	if page.Page > 0 {
		offset := page.Offset()
		if offset >= len(matched) {
			return []events.Event{}, total, nil
		}
		end := offset + events.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[offset:end]
	}
	return matched, total, nil
}

func (r *memEventRepo) Related(ctx context.Context, exclude uuid.UUID, city, category string, limit int) ([]events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, id := range r.order {
		event := r.events[id]
		if event.ID == exclude || !event.Verified {
			continue
		}
		if !containsFold(event.Location, city) || !containsFold(event.Category, category) {
			continue
		}
		out = append(out, event)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memEventRepo) Latest(ctx context.Context, limit int) ([]events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		event := r.events[r.order[i]]
		if event.Verified {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *memEventRepo) Update(ctx context.Context, event *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return events.ErrNotFound
	}
	r.events[event.ID] = *event
	return nil
}

func (r *memEventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return events.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *memEventRepo) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return events.ErrNotFound
	}
	event.Verified = verified
	r.events[id] = event
	return nil
}

type memRecRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]recommendations.Recommendation
}

func newMemRecRepo() *memRecRepo {
	return &memRecRepo{items: make(map[uuid.UUID]recommendations.Recommendation)}
}

func (r *memRecRepo) Create(ctx context.Context, rec *recommendations.Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	r.items[rec.ID] = *rec
	return nil
}

func (r *memRecRepo) GetByID(ctx context.Context, id uuid.UUID) (*recommendations.Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[id]
	if !ok {
		return nil, recommendations.ErrNotFound
	}
	return &rec, nil
}

func (r *memRecRepo) List(ctx context.Context) ([]recommendations.Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recommendations.Recommendation, 0, len(r.items))
	for _, rec := range r.items {
		out = append(out, rec)
	}
	return out, nil
}

func (r *memRecRepo) Update(ctx context.Context, rec *recommendations.Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[rec.ID]; !ok {
		return recommendations.ErrNotFound
	}
	r.items[rec.ID] = *rec
	return nil
}

func (r *memRecRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return recommendations.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

type testEnv struct {
	Tokens   *auth.JWTManager
	Accounts *accounts.Service
	Events   *events.Service
	Recs     *recommendations.Service
	Audit    *audit.Logger

	AccountRepo *memAccountRepo
	EventRepo   *memEventRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tokens := auth.NewJWTManager("handler-test-secret", time.Hour, "eventura")
	accountRepo := newMemAccountRepo()
	tracker := accounts.NewTracker(newMemFailureLog(), 10*time.Minute, 3)
	eventRepo := newMemEventRepo()

	return &testEnv{
		Tokens:      tokens,
		Accounts:    accounts.NewService(accountRepo, tracker, tokens, nil, zerolog.Nop()),
		Events:      events.NewService(eventRepo, zerolog.Nop()),
		Recs:        recommendations.NewService(newMemRecRepo(), zerolog.Nop()),
		Audit:       audit.NewLogger(zerolog.Nop()),
		AccountRepo: accountRepo,
		EventRepo:   eventRepo,
	}
}

// register creates an account directly through the service and returns it.
func (e *testEnv) register(t *testing.T, email, role, password string, verified bool) *accounts.Account {
	t.Helper()
	account, _, err := e.Accounts.Register(context.Background(), accounts.RegisterParams{
		Email:           email,
		Name:            "Test Account",
		Role:            role,
		Entity:          "Test Entity",
		Password:        password,
		PasswordConfirm: password,
		Verified:        verified,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return account
}

func (e *testEnv) token(t *testing.T, account *accounts.Account) string {
	t.Helper()
	token, err := e.Tokens.Generate(account.ID.String(), account.Email, account.Name, account.Role.String())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

// authRequest builds a request with claims already in context, as the
// Authenticate middleware would leave it.
func authRequest(t *testing.T, tokens *auth.JWTManager, method, target, token string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if token != "" {
		claims, err := tokens.Validate(token)
		if err != nil {
			t.Fatalf("validate token: %v", err)
		}
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	}
	return req
}

func jsonBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v (%s)", err, rec.Body.String())
	}
	return body
}
