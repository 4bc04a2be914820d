// Package recommendations stores user recommendation submissions. Earlier
// revisions of the service kept these in an in-process slice; they now live
// behind the same persistence boundary as every other record.
package recommendations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound       = errors.New("recommendation not found")
	ErrInvalidPayload = errors.New("recommendation payload must be valid JSON")
)

type Recommendation struct {
	ID        uuid.UUID       `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"timestamp"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, rec *Recommendation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Recommendation, error)
	List(ctx context.Context) ([]Recommendation, error)
	Update(ctx context.Context, rec *Recommendation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "recommendations").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, data json.RawMessage) (*Recommendation, error) {
	if len(data) == 0 || !json.Valid(data) {
		return nil, ErrInvalidPayload
	}
	rec := &Recommendation{
		ID:   uuid.New(),
		Data: data,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create recommendation: %w", err)
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context) ([]Recommendation, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	if items == nil {
		items = []Recommendation{}
	}
	return items, nil
}

// Update merges the submitted object into the stored one, key by key.
func (s *Service) Update(ctx context.Context, id uuid.UUID, data json.RawMessage) (*Recommendation, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged, err := mergeObjects(rec.Data, data)
	if err != nil {
		return nil, err
	}
	rec.Data = merged
	rec.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update recommendation: %w", err)
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func mergeObjects(base, patch json.RawMessage) (json.RawMessage, error) {
	var target map[string]any
	if err := json.Unmarshal(base, &target); err != nil {
		return nil, fmt.Errorf("stored payload: %w", err)
	}
	var changes map[string]any
	if err := json.Unmarshal(patch, &changes); err != nil {
		return nil, ErrInvalidPayload
	}
	for key, value := range changes {
		target[key] = value
	}
	return json.Marshal(target)
}
