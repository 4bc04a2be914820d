package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eventura/server/internal/sanitize"
	"github.com/eventura/server/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ValidationError reports a rejected event field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetBySlug(ctx context.Context, slug string, verifiedOnly bool) (*Event, error)
	List(ctx context.Context, filters Filters, page Pagination) ([]Event, int64, error)
	Related(ctx context.Context, exclude uuid.UUID, city, category string, limit int) ([]Event, error)
	Latest(ctx context.Context, limit int) ([]Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

type EventParams struct {
	Name          string
	Image         string
	Location      string
	Date          *time.Time
	Category      string
	Accessibility string
	GroupSize     int
	Ages          string
	Modality      string
	Price         int
	Content       string
	Slug          string
}

type ListResult struct {
	Events []Event `json:"eventos"`
	Total  int64   `json:"total"`
}

func (s *Service) Create(ctx context.Context, owner uuid.UUID, params EventParams) (*Event, error) {
	name := sanitize.Text(strings.TrimSpace(params.Name))
	if name == "" {
		return nil, ValidationError{Field: "name", Message: "is required"}
	}
	if err := validation.ImageRef(params.Image, "image"); err != nil {
		return nil, ValidationError{Field: "image", Message: "must be a valid URL or an uploaded file path"}
	}

	event := &Event{
		ID:            uuid.New(),
		Name:          name,
		Image:         strings.TrimSpace(params.Image),
		Location:      sanitize.Text(strings.TrimSpace(params.Location)),
		Date:          params.Date,
		Category:      sanitize.Text(strings.TrimSpace(params.Category)),
		Accessibility: sanitize.Text(params.Accessibility),
		GroupSize:     params.GroupSize,
		Ages:          params.Ages,
		Modality:      sanitize.Text(params.Modality),
		Price:         params.Price,
		Content:       sanitize.HTML(params.Content),
		Slug:          strings.TrimSpace(params.Slug),
		OwnerID:       owner,
	}
	if event.Slug == "" {
		event.Slug = Slugify(event.Location, event.Category, event.Name)
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().Str("event_id", event.ID.String()).Str("slug", event.Slug).Msg("event created")
	return event, nil
}

func (s *Service) List(ctx context.Context, filters Filters, page Pagination) (ListResult, error) {
	items, total, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return ListResult{}, fmt.Errorf("list events: %w", err)
	}
	if items == nil {
		items = []Event{}
	}
	return ListResult{Events: items, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

// PublicByCity lists verified events in a city.
func (s *Service) PublicByCity(ctx context.Context, city string) ([]Event, error) {
	items, _, err := s.repo.List(ctx, Filters{City: city, VerifiedOnly: true}, Pagination{})
	if err != nil {
		return nil, fmt.Errorf("list city events: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

// PublicByCategory lists verified events in a category; the segment comes
// from the URL in its slugged form.
func (s *Service) PublicByCategory(ctx context.Context, city, categorySegment string) ([]Event, error) {
	filters := Filters{
		City:         city,
		Category:     FormatCategory(categorySegment),
		VerifiedOnly: true,
	}
	items, _, err := s.repo.List(ctx, filters, Pagination{})
	if err != nil {
		return nil, fmt.Errorf("list category events: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

type SlugResult struct {
	Post        *Event  `json:"post"`
	MoreOptions []Event `json:"moreOptions"`
}

// BySlug resolves a verified event by its full slug and pulls up to three
// related verified events from the same city and category.
func (s *Service) BySlug(ctx context.Context, city, categorySegment, slug string) (SlugResult, error) {
	full := city + "/" + categorySegment + "/" + slug
	event, err := s.repo.GetBySlug(ctx, full, true)
	if err != nil {
		return SlugResult{}, err
	}

	related, err := s.repo.Related(ctx, event.ID, city, FormatCategory(categorySegment), 3)
	if err != nil {
		return SlugResult{}, fmt.Errorf("related events: %w", err)
	}
	if related == nil {
		related = []Event{}
	}
	return SlugResult{Post: event, MoreOptions: related}, nil
}

func (s *Service) Latest(ctx context.Context, limit int) ([]Event, error) {
	items, err := s.repo.Latest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("latest events: %w", err)
	}
	if items == nil {
		items = []Event{}
	}
	return items, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params EventParams) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validation.ImageRef(params.Image, "image"); err != nil {
		return nil, ValidationError{Field: "image", Message: "must be a valid URL or an uploaded file path"}
	}

	event.Name = sanitize.Text(strings.TrimSpace(params.Name))
	event.Image = strings.TrimSpace(params.Image)
	event.Location = sanitize.Text(strings.TrimSpace(params.Location))
	event.Date = params.Date
	event.Category = sanitize.Text(strings.TrimSpace(params.Category))
	event.Accessibility = sanitize.Text(params.Accessibility)
	event.GroupSize = params.GroupSize
	event.Ages = params.Ages
	event.Modality = sanitize.Text(params.Modality)
	event.Price = params.Price
	event.Content = sanitize.HTML(params.Content)
	if slug := strings.TrimSpace(params.Slug); slug != "" {
		event.Slug = slug
	}
	event.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("event_id", id.String()).Msg("event deleted")
	return nil
}

func (s *Service) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	return s.repo.SetVerified(ctx, id, verified)
}
