package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/passgate/internal/auth/domain"
	"github.com/aussiebroadwan/passgate/pkg/jwtx"
)

type clientsRepo struct {
	db dbtx
}

const clientColumns = `id, name, secret_hash, auth_methods, grant_types, scopes,
	access_token_ttl_seconds, refresh_token_ttl_seconds, access_token_format,
	protected, created_at, updated_at`

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	var (
		c                     domain.Client
		secretHash            sql.NullString
		authMethods, grants   string
		scopes, format        string
		accessTTL, refreshTTL int64
		created, updated      int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id,
	).Scan(
		&c.ID,
		&c.Name,
		&secretHash,
		&authMethods,
		&grants,
		&scopes,
		&accessTTL,
		&refreshTTL,
		&format,
		&c.Protected,
		&created,
		&updated,
	)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}

	c.SecretHash = mapNullString(secretHash)
	c.AuthMethods = splitFields(authMethods)
	c.GrantTypes = splitFields(grants)
	c.Scopes = splitFields(scopes)
	c.AccessTokenTTL = time.Duration(accessTTL) * time.Second
	c.RefreshTokenTTL = time.Duration(refreshTTL) * time.Second
	c.AccessTokenFormat = jwtx.TokenFormat(format)
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(updated)
	return c, nil
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	if err := checkWritable(ctx); err != nil {
		return err
	}

	now := time.Now()
	if c.AccessTokenFormat == "" {
		c.AccessTokenFormat = jwtx.FormatSelfContained
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (`+clientColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.Name,
		mapStringNull(c.SecretHash),
		joinFields(c.AuthMethods),
		joinFields(c.GrantTypes),
		joinFields(c.Scopes),
		int64(c.AccessTokenTTL/time.Second),
		int64(c.RefreshTokenTTL/time.Second),
		string(c.AccessTokenFormat),
		c.Protected,
		toMillis(now),
		toMillis(now),
	)
	return mapConstraint(err)
}

func (r *clientsRepo) UpdateClientSecretHash(ctx context.Context, id, secretHash string) error {
	if err := checkWritable(ctx); err != nil {
		return err
	}
	return execOne(ctx, r.db,
		`UPDATE clients SET secret_hash = ?, updated_at = ? WHERE id = ?`,
		mapStringNull(secretHash), toMillis(time.Now()), id)
}

func (r *clientsRepo) UpdateClientScopes(ctx context.Context, id string, scopes []string) error {
	if err := checkWritable(ctx); err != nil {
		return err
	}
	return execOne(ctx, r.db,
		`UPDATE clients SET scopes = ?, updated_at = ? WHERE id = ?`,
		joinFields(scopes), toMillis(time.Now()), id)
}
