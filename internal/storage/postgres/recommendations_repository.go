package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventura/server/internal/domain/recommendations"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RecommendationRepository struct {
	pool *pgxpool.Pool
}

func NewRecommendationRepository(pool *pgxpool.Pool) *RecommendationRepository {
	return &RecommendationRepository{pool: pool}
}

func (r *RecommendationRepository) Create(ctx context.Context, rec *recommendations.Recommendation) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO recommendations (id, data, created_at, updated_at)
VALUES ($1, $2, now(), now())
`, rec.ID, rec.Data)
	if err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

func (r *RecommendationRepository) GetByID(ctx context.Context, id uuid.UUID) (*recommendations.Recommendation, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, data, created_at, updated_at FROM recommendations WHERE id = $1
`, id)
	return scanRecommendation(row)
}

func (r *RecommendationRepository) List(ctx context.Context) ([]recommendations.Recommendation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, data, created_at, updated_at FROM recommendations ORDER BY created_at
`)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	defer rows.Close()

	var out []recommendations.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *RecommendationRepository) Update(ctx context.Context, rec *recommendations.Recommendation) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE recommendations SET data = $2, updated_at = now() WHERE id = $1
`, rec.ID, rec.Data)
	if err != nil {
		return fmt.Errorf("update recommendation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return recommendations.ErrNotFound
	}
	return nil
}

func (r *RecommendationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recommendations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recommendation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return recommendations.ErrNotFound
	}
	return nil
}

func scanRecommendation(row pgx.Row) (*recommendations.Recommendation, error) {
	var rec recommendations.Recommendation
	if err := row.Scan(&rec.ID, &rec.Data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, recommendations.ErrNotFound
		}
		return nil, fmt.Errorf("scan recommendation: %w", err)
	}
	return &rec, nil
}
