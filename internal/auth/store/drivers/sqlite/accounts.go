package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/passgate/internal/auth/domain"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, email, name, password_hash, verified, authorities, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var (
		a           domain.Account
		authorities string
		created     int64
		updated     int64
	)
	if err := row.Scan(
		&a.ID,
		&a.Email,
		&a.Name,
		&a.PasswordHash,
		&a.Verified,
		&authorities,
		&created,
		&updated,
	); err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.Authorities = splitFields(authorities)
	a.CreatedAt = fromMillis(created)
	a.UpdatedAt = fromMillis(updated)
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email))
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	if err := checkWritable(ctx); err != nil {
		return err
	}

	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Email,
		a.Name,
		a.PasswordHash,
		a.Verified,
		joinFields(a.Authorities),
		toMillis(a.CreatedAt),
		toMillis(a.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	if err := checkWritable(ctx); err != nil {
		return err
	}
	return execOne(ctx, r.db,
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, toMillis(time.Now()), id)
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
