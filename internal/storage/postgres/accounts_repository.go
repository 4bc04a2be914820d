package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventura/server/internal/domain/accounts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) queryer() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const accountColumns = `id, email, name, role, entity, verified, password_hash, active, created_at, updated_at`

func scanAccount(row pgx.Row) (*accounts.Account, error) {
	var a accounts.Account
	var role string
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.Name,
		&role,
		&a.Entity,
		&a.Verified,
		&a.PasswordHash,
		&a.Active,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, accounts.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.Role = accounts.Role(role)
	return &a, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *accounts.Account) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO accounts (id, email, name, role, entity, verified, password_hash, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
`, account.ID, account.Email, account.Name, account.Role.String(), account.Entity,
		account.Verified, account.PasswordHash, account.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return accounts.ErrDuplicateEmail
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+accountColumns+`
  FROM accounts
 WHERE id = $1
`, id)
	return scanAccount(row)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+accountColumns+`
  FROM accounts
 WHERE email = $1
`, email)
	return scanAccount(row)
}

func (r *AccountRepository) Update(ctx context.Context, account *accounts.Account) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE accounts
   SET email = $2,
       name = $3,
       role = $4,
       entity = $5,
       verified = $6,
       password_hash = $7,
       active = $8,
       updated_at = now()
 WHERE id = $1
`, account.ID, account.Email, account.Name, account.Role.String(), account.Entity,
		account.Verified, account.PasswordHash, account.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return accounts.ErrDuplicateEmail
		}
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return accounts.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context) ([]accounts.Account, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+accountColumns+`
  FROM accounts
 ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []accounts.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *account)
	}
	return out, rows.Err()
}

// DeleteWithReassignment transfers event ownership and removes the account
// in one transaction. The order matters: ownership moves first so no event
// ever points at a deleted account, and a failure of either statement rolls
// both back.
func (r *AccountRepository) DeleteWithReassignment(ctx context.Context, id, replacement uuid.UUID) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
UPDATE events SET owner_id = $2, updated_at = now() WHERE owner_id = $1
`, id, replacement); err != nil {
			return fmt.Errorf("reassign events: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return accounts.ErrNotFound
		}
		return nil
	})
}
