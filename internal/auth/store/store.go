package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/passgate/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrReadOnlyTx    = errors.New("store: write in read-only transaction")
	ErrNestedTx      = errors.New("store: nested transactions are not supported")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
//
// Inside WithTx only the repositories handed to fn may be used; the root
// repositories would need a second connection.
type Store interface {
	Accounts() Accounts
	Clients() Clients
	Authorizations() Authorizations

	ApplyMigrations() error

	// WithTx runs fn in a read/write transaction named name. The context
	// passed to fn carries the transaction marker. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, name string, fn func(ctx context.Context, tx Tx) error) error

	// WithReadOnlyTx is WithTx with the read-only marker set. Repositories
	// refuse writes with ErrReadOnlyTx.
	WithReadOnlyTx(ctx context.Context, name string, fn func(ctx context.Context, tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is the set of repositories bound to one transaction.
type Tx interface {
	Accounts() Accounts
	Clients() Clients
	Authorizations() Authorizations
}

type Accounts interface {
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail is used during the password grant. Matching is case
	// insensitive.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by the app via ULID).
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdatePasswordHash replaces the stored hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id, hash string) error

	// IsEmpty returns true if there are no accounts.
	IsEmpty(ctx context.Context) (bool, error)
}

type Clients interface {
	// GetClientByID fetches a client during client authentication.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// CreateClient inserts a new client (secret_hash may be empty for public clients).
	CreateClient(ctx context.Context, c domain.Client) error

	UpdateClientSecretHash(ctx context.Context, id, secretHash string) error
	UpdateClientScopes(ctx context.Context, id string, scopes []string) error
}

type Authorizations interface {
	// SaveAuthorization stores a new record. Token hashes are unique.
	SaveAuthorization(ctx context.Context, rec domain.AuthorizationRecord) error

	// FindByToken returns the record whose access or refresh token has the
	// given fingerprint.
	FindByToken(ctx context.Context, hash string) (domain.AuthorizationRecord, error)

	// Invalidate marks both tokens of the record invalidated.
	Invalidate(ctx context.Context, id string) error

	// InvalidateRefreshToken flips the record holding the refresh token from
	// valid to invalidated. It reports false when the token was already
	// invalidated or does not exist, so at most one caller ever wins.
	InvalidateRefreshToken(ctx context.Context, hash string) (bool, error)

	// DeleteExpiredAuthorizations removes records whose refresh token expired
	// before now and returns how many were removed.
	DeleteExpiredAuthorizations(ctx context.Context, now time.Time) (int64, error)
}
