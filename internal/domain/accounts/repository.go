package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Storage-level sentinels. Repositories translate their driver errors into
// these so the service stays free of pgx specifics.
var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email is already taken")
)

type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, account *Account) error
	List(ctx context.Context) ([]Account, error)

	// DeleteWithReassignment transfers every record owned by id to
	// replacement and then deletes id, as one atomic transaction. Either
	// both steps commit or neither does; a reader never observes a record
	// owned by a deleted account.
	DeleteWithReassignment(ctx context.Context, id, replacement uuid.UUID) error
}

// FailureLog is the append-only login failure store. Entries are keyed by
// the submitted email so a failure is recorded even when no account exists
// for it. Entries have no delete lifecycle; they age out of the counting
// window.
type FailureLog interface {
	Record(ctx context.Context, email string, at time.Time) error
	CountSince(ctx context.Context, email string, since time.Time) (int, error)
}
