package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventura/server/internal/domain/events"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) queryer() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const eventColumns = `id, name, image, location, date, category, accessibility,
group_size, ages, modality, price, content, slug, verified, owner_id, created_at, updated_at`

func scanEvent(row pgx.Row) (*events.Event, error) {
	var e events.Event
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Image,
		&e.Location,
		&e.Date,
		&e.Category,
		&e.Accessibility,
		&e.GroupSize,
		&e.Ages,
		&e.Modality,
		&e.Price,
		&e.Content,
		&e.Slug,
		&e.Verified,
		&e.OwnerID,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

func (r *EventRepository) Create(ctx context.Context, event *events.Event) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO events (id, name, image, location, date, category, accessibility,
                    group_size, ages, modality, price, content, slug, verified,
                    owner_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
`, event.ID, event.Name, event.Image, event.Location, event.Date, event.Category,
		event.Accessibility, event.GroupSize, event.Ages, event.Modality, event.Price,
		event.Content, event.Slug, event.Verified, event.OwnerID)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE id = $1
`, id)
	return scanEvent(row)
}

func (r *EventRepository) GetBySlug(ctx context.Context, slug string, verifiedOnly bool) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE slug = $1
   AND (NOT $2 OR verified)
`, slug, verifiedOnly)
	return scanEvent(row)
}

func (r *EventRepository) List(ctx context.Context, filters events.Filters, page events.Pagination) ([]events.Event, int64, error) {
	where := `
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
  AND ($2 = '' OR location ILIKE '%' || $2 || '%')
  AND ($3 = '' OR category ILIKE '%' || $3 || '%')
  AND ($4::uuid IS NULL OR owner_id = $4)
  AND (NOT $5 OR verified)
`
	args := []any{filters.Name, filters.City, filters.Category, filters.OwnerID, filters.VerifiedOnly}

	var total int64
	if err := r.queryer().QueryRow(ctx, `SELECT count(*) FROM events `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events
`+where+`
 ORDER BY created_at DESC
 LIMIT $6 OFFSET $7
`, append(args, events.PageSize, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *EventRepository) Related(ctx context.Context, exclude uuid.UUID, city, category string, limit int) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE id <> $1
   AND location ILIKE '%' || $2 || '%'
   AND category ILIKE '%' || $3 || '%'
   AND verified
 ORDER BY created_at DESC
 LIMIT $4
`, exclude, city, category, limit)
	if err != nil {
		return nil, fmt.Errorf("related events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *EventRepository) Latest(ctx context.Context, limit int) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE verified
 ORDER BY created_at DESC
 LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("latest events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *EventRepository) Update(ctx context.Context, event *events.Event) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET name = $2,
       image = $3,
       location = $4,
       date = $5,
       category = $6,
       accessibility = $7,
       group_size = $8,
       ages = $9,
       modality = $10,
       price = $11,
       content = $12,
       slug = $13,
       updated_at = now()
 WHERE id = $1
`, event.ID, event.Name, event.Image, event.Location, event.Date, event.Category,
		event.Accessibility, event.GroupSize, event.Ages, event.Modality, event.Price,
		event.Content, event.Slug)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events SET verified = $2, updated_at = now() WHERE id = $1
`, id, verified)
	if err != nil {
		return fmt.Errorf("set event verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func collectEvents(rows pgx.Rows) ([]events.Event, error) {
	var out []events.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *event)
	}
	return out, rows.Err()
}
