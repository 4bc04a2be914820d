package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LoginFailureRepository is the append-only failure log backing the login
// throttle. Rows are keyed by submitted email and never updated or deleted;
// they simply fall out of the counting window.
type LoginFailureRepository struct {
	pool *pgxpool.Pool
}

func NewLoginFailureRepository(pool *pgxpool.Pool) *LoginFailureRepository {
	return &LoginFailureRepository{pool: pool}
}

func (r *LoginFailureRepository) Record(ctx context.Context, email string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO login_failures (email, attempted_at) VALUES ($1, $2)
`, email, at)
	if err != nil {
		return fmt.Errorf("insert login failure: %w", err)
	}
	return nil
}

func (r *LoginFailureRepository) CountSince(ctx context.Context, email string, since time.Time) (int, error) {
	row := r.pool.QueryRow(ctx, `
SELECT count(*) FROM login_failures WHERE email = $1 AND attempted_at >= $2
`, email, since)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count login failures: %w", err)
	}
	return count, nil
}
