package recommendations

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type memRecRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Recommendation
}

func newMemRecRepo() *memRecRepo {
	return &memRecRepo{items: make(map[uuid.UUID]*Recommendation)}
}

func (r *memRecRepo) Create(_ context.Context, rec *Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *rec
	r.items[rec.ID] = &copied
	return nil
}

func (r *memRecRepo) GetByID(_ context.Context, id uuid.UUID) (*Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *memRecRepo) List(_ context.Context) ([]Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recommendation, 0, len(r.items))
	for _, rec := range r.items {
		out = append(out, *rec)
	}
	return out, nil
}

func (r *memRecRepo) Update(_ context.Context, rec *Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[rec.ID]; !ok {
		return ErrNotFound
	}
	copied := *rec
	r.items[rec.ID] = &copied
	return nil
}

func (r *memRecRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func TestCreateRejectsInvalidJSON(t *testing.T) {
	svc := NewService(newMemRecRepo(), zerolog.Nop())
	if _, err := svc.Create(context.Background(), json.RawMessage(`{broken`)); err == nil {
		t.Fatal("expected rejection of invalid JSON")
	}
}

func TestUpdateMergesKeys(t *testing.T) {
	svc := NewService(newMemRecRepo(), zerolog.Nop())

	rec, err := svc.Create(context.Background(), json.RawMessage(`{"city":"Madrid","interest":"Cultura"}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(context.Background(), rec.ID, json.RawMessage(`{"interest":"Deportes"}`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	var data map[string]any
	if err := json.Unmarshal(updated.Data, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if data["city"] != "Madrid" || data["interest"] != "Deportes" {
		t.Fatalf("merge result: %v", data)
	}
}

func TestDeleteUnknown(t *testing.T) {
	svc := NewService(newMemRecRepo(), zerolog.Nop())
	if err := svc.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
